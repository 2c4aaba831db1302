package tak

import "github.com/taklab/tiltak-go/internal/square"

// GenerateMoves appends every legal move for pos's side to move onto out
// and returns the extended slice (spec 4.3).
func GenerateMoves(pos *Position, out []Move) []Move {
	size := pos.Size
	side := pos.SideToMove

	if pos.HalfMovesPlayed < 2 {
		// Tak opening rule: only flat placements on empty squares.
		for sq := 0; sq < size*size; sq++ {
			if pos.Stacks[sq].IsEmpty() {
				out = append(out, PlaceMove(Flat, square.Square(sq)))
			}
		}
		return out
	}

	flats, caps := pos.Reserves(side)
	for sq := 0; sq < size*size; sq++ {
		st := pos.Stacks[sq]
		if st.IsEmpty() {
			if flats > 0 {
				out = append(out, PlaceMove(Flat, square.Square(sq)))
				out = append(out, PlaceMove(Wall, square.Square(sq)))
			}
			if caps > 0 {
				out = append(out, PlaceMove(Cap, square.Square(sq)))
			}
			continue
		}
		top, _ := st.Top()
		if top.Color() != side {
			continue
		}
		for _, dir := range square.AllDirections {
			out = generateSpreads(pos, square.Square(sq), dir, out)
		}
	}
	return out
}

func generateSpreads(pos *Position, origin square.Square, dir square.Direction, out []Move) []Move {
	size := pos.Size
	st := pos.Stacks[origin]
	height := st.Height()
	top, _ := st.Top()
	isCap := top.Role() == Cap

	maxCarry := size
	if height < maxCarry {
		maxCarry = height
	}
	for c0 := 1; c0 <= maxCarry; c0++ {
		out = walkSpread(pos, origin, dir, isCap, []int{c0}, origin, out)
	}
	return out
}

// walkSpread extends a stack spread in progress. carries is the
// descending sequence of "still carried" amounts accumulated so far;
// cur is the square the carrier currently occupies (the last square
// whose legality has already been accepted).
func walkSpread(pos *Position, origin square.Square, dir square.Direction, isCap bool, carries []int, cur square.Square, out []Move) []Move {
	size := pos.Size
	next, ok := cur.Neighbor(dir, size)
	if !ok {
		return out
	}

	var destTop Piece
	hasTop := false
	if t, found := pos.Stacks[next].Top(); found {
		destTop = t
		hasTop = true
	}
	if hasTop && destTop.Role() == Cap {
		return out // no carrier may enter a Cap square
	}
	blockedByWall := hasTop && destTop.Role() == Wall
	if blockedByWall && !isCap {
		return out // non-cap carrier may not enter a Wall square
	}

	remaining := carries[len(carries)-1]

	if blockedByWall {
		// Cap carrier crush: legal only as the terminal step, dropping
		// exactly one piece.
		if remaining == 1 {
			out = append(out, SpreadMove(origin, dir, NewStackMovement(carries)))
		}
		return out
	}

	for cont := 0; cont < remaining; cont++ {
		if cont == 0 {
			out = append(out, SpreadMove(origin, dir, NewStackMovement(carries)))
			continue
		}
		newCarries := append(append([]int{}, carries...), cont)
		out = walkSpread(pos, origin, dir, isCap, newCarries, next, out)
	}
	return out
}

// MoveIsLegal validates a candidate move against the legal-move set. For
// movements it regenerates the legal set for the origin square and
// checks membership (spec 4.3: "acceptable for correctness; search paths
// skip this").
func MoveIsLegal(pos *Position, mv Move) bool {
	for _, m := range GenerateMoves(pos, nil) {
		if m == mv {
			return true
		}
	}
	return false
}
