package tak

import "github.com/taklab/tiltak-go/internal/bitboard"

// EdgeMask is a 4-bit N/W/E/S flag recording which board edges a
// connected component touches (spec 3).
type EdgeMask uint8

const (
	EdgeNorth EdgeMask = 1 << iota
	EdgeWest
	EdgeEast
	EdgeSouth
)

// Wins reports whether a component with this edge mask completes a road
// (both N+S or both W+E).
func (e EdgeMask) Wins() bool {
	return e&(EdgeNorth|EdgeSouth) == (EdgeNorth|EdgeSouth) ||
		e&(EdgeWest|EdgeEast) == (EdgeWest|EdgeEast)
}

func ownEdgeMask(sq, size int) EdgeMask {
	var e EdgeMask
	rank := sq / size
	file := sq % size
	if rank == 0 {
		e |= EdgeNorth
	}
	if rank == size-1 {
		e |= EdgeSouth
	}
	if file == 0 {
		e |= EdgeWest
	}
	if file == size-1 {
		e |= EdgeEast
	}
	return e
}

// GroupData holds per-position derived tables, rebuilt lazily on request
// and never cached across moves (spec 3).
type GroupData struct {
	size int

	// groupID[sq] is the connected-component id of the road piece on sq,
	// or -1 if sq holds no road piece.
	groupID [64]int16
	// groupSize[id] and groupEdges[id] are indexed by component id.
	groupSize  []int
	groupEdges []EdgeMask

	Flats           [2]bitboard.Bitboard
	Walls           [2]bitboard.Bitboard
	Caps            [2]bitboard.Bitboard
	RoadPieces      [2]bitboard.Bitboard
	BlockingPieces  [2]bitboard.Bitboard // walls + caps
	CriticalSquares [2]bitboard.Bitboard
}

// ComputeGroupData rebuilds all derived tables for pos. Callers may cache
// the result per node but must invalidate it on every mutation (spec 9).
func ComputeGroupData(pos *Position) *GroupData {
	size := pos.Size
	gd := &GroupData{size: size}
	for i := range gd.groupID {
		gd.groupID[i] = -1
	}

	for sq := 0; sq < size*size; sq++ {
		top, ok := pos.Stacks[sq].Top()
		if !ok {
			continue
		}
		c := top.Color()
		switch top.Role() {
		case Flat:
			gd.Flats[c] = gd.Flats[c].Set(sq)
			gd.RoadPieces[c] = gd.RoadPieces[c].Set(sq)
		case Wall:
			gd.Walls[c] = gd.Walls[c].Set(sq)
			gd.BlockingPieces[c] = gd.BlockingPieces[c].Set(sq)
		case Cap:
			gd.Caps[c] = gd.Caps[c].Set(sq)
			gd.RoadPieces[c] = gd.RoadPieces[c].Set(sq)
			gd.BlockingPieces[c] = gd.BlockingPieces[c].Set(sq)
		}
	}

	for c := 0; c < 2; c++ {
		gd.floodFill(Color(c))
	}

	for sq := 0; sq < size*size; sq++ {
		if !pos.Stacks[sq].IsEmpty() {
			if top, _ := pos.Stacks[sq].Top(); top.Role() != Wall {
				continue
			}
		}
		for c := 0; c < 2; c++ {
			if gd.wouldCompleteRoad(pos, sq, Color(c)) {
				gd.CriticalSquares[c] = gd.CriticalSquares[c].Set(sq)
			}
		}
	}

	return gd
}

func (gd *GroupData) floodFill(c Color) {
	size := gd.size
	seen := bitboard.Empty
	roadPieces := gd.RoadPieces[c]
	for bb := roadPieces; bb != 0; {
		start := bb.PopLSB()
		if seen.IsSet(start) {
			continue
		}
		id := int16(len(gd.groupSize))
		var edges EdgeMask
		count := 0
		stack := []int{start}
		seen = seen.Set(start)
		for len(stack) > 0 {
			sq := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			gd.groupID[sq] = id
			count++
			edges |= ownEdgeMask(sq, size)
			rank, file := sq/size, sq%size
			neighbors := make([]int, 0, 4)
			if rank > 0 {
				neighbors = append(neighbors, sq-size)
			}
			if rank < size-1 {
				neighbors = append(neighbors, sq+size)
			}
			if file > 0 {
				neighbors = append(neighbors, sq-1)
			}
			if file < size-1 {
				neighbors = append(neighbors, sq+1)
			}
			for _, nb := range neighbors {
				if roadPieces.IsSet(nb) && !seen.IsSet(nb) {
					seen = seen.Set(nb)
					stack = append(stack, nb)
				}
			}
		}
		gd.groupSize = append(gd.groupSize, count)
		gd.groupEdges = append(gd.groupEdges, edges)
	}
}

// wouldCompleteRoad reports whether placing a road piece of colour c on
// sq (currently empty or wall-topped) would complete a road for c: the
// square's own edge contribution, merged with every same-colour
// neighbouring component's edges, wins.
func (gd *GroupData) wouldCompleteRoad(pos *Position, sq int, c Color) bool {
	size := gd.size
	merged := ownEdgeMask(sq, size)
	rank, file := sq/size, sq%size
	seenGroups := map[int16]bool{}
	check := func(nb int) {
		if gd.RoadPieces[c].IsSet(nb) {
			id := gd.groupID[nb]
			if id >= 0 && !seenGroups[id] {
				seenGroups[id] = true
				merged |= gd.groupEdges[id]
			}
		}
	}
	if rank > 0 {
		check(sq - size)
	}
	if rank < size-1 {
		check(sq + size)
	}
	if file > 0 {
		check(sq - 1)
	}
	if file < size-1 {
		check(sq + 1)
	}
	return merged.Wins()
}

// GroupInfo returns the component size and edge mask for the road piece
// on sq, as spec 3's amount_in_group table.
func (gd *GroupData) GroupInfo(sq int) (size int, edges EdgeMask, ok bool) {
	id := gd.groupID[sq]
	if id < 0 {
		return 0, 0, false
	}
	return gd.groupSize[id], gd.groupEdges[id], true
}

// NumGroups returns how many connected road-piece components colour c has.
func (gd *GroupData) NumGroups(c Color) int {
	n := 0
	for i, edges := range gd.groupEdges {
		_ = edges
		if gd.componentColor(i) == c {
			n++
		}
	}
	return n
}

func (gd *GroupData) componentColor(id int) Color {
	for sq, g := range gd.groupID {
		if int(g) == id {
			if gd.Flats[White].IsSet(sq) || gd.Caps[White].IsSet(sq) {
				return White
			}
			return Black
		}
	}
	return White
}
