// Package bitboard implements a 64-bit set of board squares, with
// rank/file masking for boards up to 8x8.
package bitboard

import "math/bits"

// Bitboard represents a set of squares where each bit corresponds to a
// square index. Only the lower size*size bits are meaningful for a board
// of the given size.
type Bitboard uint64

// Empty and Full are the degenerate bitboards.
const (
	Empty Bitboard = 0
	Full  Bitboard = 0xFFFFFFFFFFFFFFFF
)

// SquareBB returns a bitboard with only the given square set.
func SquareBB(sq int) Bitboard {
	return 1 << uint(sq)
}

// Set returns b with sq set.
func (b Bitboard) Set(sq int) Bitboard {
	return b | SquareBB(sq)
}

// Clear returns b with sq cleared.
func (b Bitboard) Clear(sq int) Bitboard {
	return b &^ SquareBB(sq)
}

// IsSet reports whether sq is set in b.
func (b Bitboard) IsSet(sq int) bool {
	return b&SquareBB(sq) != 0
}

// Toggle flips the bit at sq.
func (b Bitboard) Toggle(sq int) Bitboard {
	return b ^ SquareBB(sq)
}

// PopCount returns the number of set bits.
func (b Bitboard) PopCount() int {
	return bits.OnesCount64(uint64(b))
}

// LSB returns the index of the lowest set bit, or -1 if b is empty.
func (b Bitboard) LSB() int {
	if b == 0 {
		return -1
	}
	return bits.TrailingZeros64(uint64(b))
}

// PopLSB clears and returns the lowest set bit's index, or -1 if b is empty.
func (b *Bitboard) PopLSB() int {
	sq := b.LSB()
	if sq < 0 {
		return -1
	}
	*b &^= SquareBB(sq)
	return sq
}

// Squares returns the set bit indices in ascending order.
func (b Bitboard) Squares() []int {
	out := make([]int, 0, b.PopCount())
	for bb := b; bb != 0; {
		out = append(out, bb.PopLSB())
	}
	return out
}

// RankMask returns the mask of every square whose rank (row index, 0-based
// from the top as in TPS) equals rank, for a board of the given size.
func RankMask(rank, size int) Bitboard {
	var m Bitboard
	for file := 0; file < size; file++ {
		m = m.Set(rank*size + file)
	}
	return m
}

// FileMask returns the mask of every square whose file equals file, for a
// board of the given size.
func FileMask(file, size int) Bitboard {
	var m Bitboard
	for rank := 0; rank < size; rank++ {
		m = m.Set(rank*size + file)
	}
	return m
}

// BoardMask returns the mask of all squares in play for a board of the
// given size.
func BoardMask(size int) Bitboard {
	return (Bitboard(1)<<uint(size*size) - 1)
}

// LinesForSquare returns the two masks {rank-of-sq, file-of-sq} for a board
// of the given size.
func LinesForSquare(sq, size int) (rankMask, fileMask Bitboard) {
	rank := sq / size
	file := sq % size
	return RankMask(rank, size), FileMask(file, size)
}
