package tak

// Board symmetry and colour-swap transforms, used to exercise the
// testable properties that game_result and static_eval are invariant
// (modulo colour) under the board's dihedral symmetries (spec 8, 12).

type transformFunc func(rank, file, size int) (int, int)

func identityTransform(rank, file, size int) (int, int)  { return rank, file }
func rotate90(rank, file, size int) (int, int)            { return file, size - 1 - rank }
func rotate180(rank, file, size int) (int, int)           { return size - 1 - rank, size - 1 - file }
func rotate270(rank, file, size int) (int, int)           { return size - 1 - file, rank }
func mirrorH(rank, file, size int) (int, int)             { return rank, size - 1 - file }
func mirrorV(rank, file, size int) (int, int)             { return size - 1 - rank, file }
func mirrorDiag(rank, file, size int) (int, int)          { return file, rank }
func mirrorAntiDiag(rank, file, size int) (int, int)      { return size - 1 - file, size - 1 - rank }

var dihedralTransforms = [8]transformFunc{
	identityTransform, rotate90, rotate180, rotate270,
	mirrorH, mirrorV, mirrorDiag, mirrorAntiDiag,
}

// Symmetries returns the 8 board symmetries of pos (the dihedral group
// of the square), including pos itself (identity) as the first element.
// Move history and hash history don't survive a board relabeling and
// are left empty on the results.
func Symmetries(pos *Position) [8]*Position {
	var out [8]*Position
	for i, t := range dihedralTransforms {
		out[i] = transformBoard(pos, t)
	}
	return out
}

func transformBoard(pos *Position, t transformFunc) *Position {
	size := pos.Size
	np := &Position{
		Size:            size,
		SideToMove:      pos.SideToMove,
		WhiteReserves:   pos.WhiteReserves,
		BlackReserves:   pos.BlackReserves,
		WhiteCaps:       pos.WhiteCaps,
		BlackCaps:       pos.BlackCaps,
		HalfMovesPlayed: pos.HalfMovesPlayed,
		Komi:            pos.Komi,
	}
	for sq := 0; sq < size*size; sq++ {
		rank, file := sq/size, sq%size
		nr, nf := t(rank, file, size)
		np.Stacks[nr*size+nf] = pos.Stacks[sq]
	}
	np.Hash = np.recomputeHash()
	return np
}

// FlipColors returns a copy of pos with every piece's colour swapped and
// side to move flipped (spec 8: static_eval(flip_colors(P)) == -static_eval(P)).
// Komi is negated along with colour: it is a Black-relative bonus, so
// swapping which colour is which flips its sign too.
func FlipColors(pos *Position) *Position {
	size := pos.Size
	np := &Position{
		Size:            size,
		SideToMove:      pos.SideToMove.Other(),
		WhiteReserves:   pos.BlackReserves,
		BlackReserves:   pos.WhiteReserves,
		WhiteCaps:       pos.BlackCaps,
		BlackCaps:       pos.WhiteCaps,
		HalfMovesPlayed: pos.HalfMovesPlayed,
		Komi:            -pos.Komi,
	}
	for sq := 0; sq < size*size; sq++ {
		st := pos.Stacks[sq]
		var flipped Stack
		for i := 0; i < st.Height(); i++ {
			p := st.Get(i)
			flipped.Push(NewPiece(p.Role(), p.Color().Other()))
		}
		np.Stacks[sq] = flipped
	}
	np.Hash = np.recomputeHash()
	return np
}
