package eval

import "github.com/taklab/tiltak-go/internal/tak"

// capThreatCounts counts, among squares adjacent to a critical square for
// colour c, how many carry our cap vs. the enemy's cap.
func capThreatCounts(pos *tak.Position, gd *tak.GroupData, c tak.Color) (ours, enemy float32) {
	size := pos.Size
	for sq := 0; sq < size*size; sq++ {
		if !gd.CriticalSquares[c].IsSet(sq) {
			continue
		}
		for _, nb := range orthogonalNeighbours(sq, size) {
			st := pos.Stacks[nb]
			if st.IsEmpty() {
				continue
			}
			top, _ := st.Top()
			if top.Role() != tak.Cap {
				continue
			}
			if top.Color() == c {
				ours++
			} else {
				enemy++
			}
		}
	}
	return
}

// neighbourhoodCounts sums, over every own stack of height>=2, the
// height-weighted count of adjacent flat/wall/cap squares of our colour.
func neighbourhoodCounts(pos *tak.Position, c tak.Color) (flat, wall, cap float32) {
	size := pos.Size
	for sq := 0; sq < size*size; sq++ {
		st := pos.Stacks[sq]
		if st.IsEmpty() || st.Height() < 2 {
			continue
		}
		top, _ := st.Top()
		if top.Color() != c {
			continue
		}
		for _, nb := range orthogonalNeighbours(sq, size) {
			nst := pos.Stacks[nb]
			if nst.IsEmpty() {
				continue
			}
			ntop, _ := nst.Top()
			if ntop.Color() != c {
				continue
			}
			weight := float32(st.Height())
			switch ntop.Role() {
			case tak.Flat:
				flat += weight
			case tak.Wall:
				wall += weight
			case tak.Cap:
				cap += weight
			}
		}
	}
	return
}

func linesOccupied(gd *tak.GroupData, c tak.Color, size int) (ranks, files int) {
	rankSeen := make([]bool, size)
	fileSeen := make([]bool, size)
	for sq := 0; sq < size*size; sq++ {
		if !gd.RoadPieces[c].IsSet(sq) {
			continue
		}
		rankSeen[sq/size] = true
		fileSeen[sq%size] = true
	}
	for _, v := range rankSeen {
		if v {
			ranks++
		}
	}
	for _, v := range fileSeen {
		if v {
			files++
		}
	}
	return
}

// perLineControl classifies each rank and file as empty (no road piece
// of ours), blocked (contains an enemy wall or cap), or guarded (we hold
// a road piece in the two squares nearest either edge of the line).
func perLineControl(pos *tak.Position, gd *tak.GroupData, c tak.Color, size int) (empty, blocked, guarded int) {
	classify := func(squares []int) (e, b, g bool) {
		e = true
		for i, sq := range squares {
			if gd.RoadPieces[c].IsSet(sq) {
				e = false
				if i < 2 || i >= len(squares)-2 {
					g = true
				}
			}
			if gd.BlockingPieces[c.Other()].IsSet(sq) {
				b = true
			}
		}
		return
	}
	for rank := 0; rank < size; rank++ {
		squares := make([]int, size)
		for file := 0; file < size; file++ {
			squares[file] = rank*size + file
		}
		e, b, g := classify(squares)
		if e {
			empty++
		}
		if b {
			blocked++
		}
		if g {
			guarded++
		}
	}
	for file := 0; file < size; file++ {
		squares := make([]int, size)
		for rank := 0; rank < size; rank++ {
			squares[rank] = rank*size + file
		}
		e, b, g := classify(squares)
		if e {
			empty++
		}
		if b {
			blocked++
		}
		if g {
			guarded++
		}
	}
	return
}

// capActivity reports, for our cap (if any), whether it is sidelined
// (blocked toward the centre on all free neighbours), fully isolated (no
// enemy flat neighbour at all), or semi-isolated (exactly one enemy flat
// neighbour).
func capActivity(pos *tak.Position, c tak.Color) (sidelined, fullyIso, semiIso float32) {
	size := pos.Size
	center := float64(size-1) / 2
	for sq := 0; sq < size*size; sq++ {
		st := pos.Stacks[sq]
		if st.IsEmpty() {
			continue
		}
		top, _ := st.Top()
		if top.Role() != tak.Cap || top.Color() != c {
			continue
		}
		rank, file := sq/size, sq%size
		distNow := chebyshev(float64(rank), float64(file), center, center)
		enemyFlatNeighbours := 0
		towardCenterBlocked := true
		for _, nb := range orthogonalNeighbours(sq, size) {
			nst := pos.Stacks[nb]
			if !nst.IsEmpty() {
				ntop, _ := nst.Top()
				if ntop.Color() != c && ntop.Role() == tak.Flat {
					enemyFlatNeighbours++
				}
			}
			nr, nf := nb/size, nb%size
			if chebyshev(float64(nr), float64(nf), center, center) < distNow && nst.IsEmpty() {
				towardCenterBlocked = false
			}
		}
		if towardCenterBlocked {
			sidelined++
		}
		switch enemyFlatNeighbours {
		case 0:
			fullyIso++
		case 1:
			semiIso++
		}
	}
	return
}

func chebyshev(r1, f1, r2, f2 float64) float64 {
	dr := r1 - r2
	if dr < 0 {
		dr = -dr
	}
	df := f1 - f2
	if df < 0 {
		df = -df
	}
	if dr > df {
		return dr
	}
	return df
}

// winningSpread fills the two winning-spread slots with cheap proxies:
// now is 1 when colour c already has a completed road, and oneMove is 1
// when c has any critical square (a placement there completes a road).
// No spreads are generated or examined.
func winningSpread(pos *tak.Position, gd *tak.GroupData, c tak.Color) (now, oneMove float32) {
	size := pos.Size
	if roadAlreadyWins(gd, c) {
		now = 1
	}
	for sq := 0; sq < size*size; sq++ {
		if gd.CriticalSquares[c].IsSet(sq) {
			oneMove = 1
			break
		}
	}
	return
}

func roadAlreadyWins(gd *tak.GroupData, c tak.Color) bool {
	for sq := 0; sq < 64; sq++ {
		if size, edges, ok := gd.GroupInfo(sq); ok && size > 0 && edges.Wins() {
			if gd.RoadPieces[c].IsSet(sq) {
				return true
			}
		}
	}
	return false
}

// flatWinCountdown gives cheap proxies for the four flat-count countdown
// features: do we already have a decisive flat lead with reserves about
// to run out, and symmetric features for the opponent.
func flatWinCountdown(pos *tak.Position, gd *tak.GroupData, c tak.Color) (winThisPly, winInTwo, oppNextPly, oppInThree float32) {
	whiteFlats := gd.Flats[tak.White].PopCount()
	blackFlats := gd.Flats[tak.Black].PopCount()
	ourFlats, theirFlats := whiteFlats, blackFlats
	ourReservesLeft, ourCapsLeft := pos.Reserves(c)
	theirReservesLeft, theirCapsLeft := pos.Reserves(c.Other())
	if c == tak.Black {
		ourFlats, theirFlats = blackFlats, whiteFlats
	}
	lead := ourFlats - theirFlats
	if c == tak.Black {
		lead += pos.Komi
	} else {
		lead -= pos.Komi
	}

	if ourReservesLeft+ourCapsLeft <= 1 && lead > 0 {
		winThisPly = 1
	}
	if ourReservesLeft+ourCapsLeft <= 2 && lead > 0 {
		winInTwo = 1
	}
	if theirReservesLeft+theirCapsLeft <= 1 && lead < 0 {
		oppNextPly = 1
	}
	if theirReservesLeft+theirCapsLeft <= 3 && lead < 0 {
		oppInThree = 1
	}
	return
}

func orthogonalNeighbours(sq, size int) []int {
	rank, file := sq/size, sq%size
	out := make([]int, 0, 4)
	if rank > 0 {
		out = append(out, sq-size)
	}
	if rank < size-1 {
		out = append(out, sq+size)
	}
	if file > 0 {
		out = append(out, sq-1)
	}
	if file < size-1 {
		out = append(out, sq+1)
	}
	return out
}
