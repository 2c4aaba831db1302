package tak

// Stack represents one square's column: up to 64 pieces, packed as a
// bitboard of colours plus an explicit top role and height (spec 4.2).
// Only the top piece may be a Wall or a Cap; every piece below it is
// always a Flat, so the bitboard need only track colour.
type Stack struct {
	bitboard uint64 // bit i = colour of the i-th piece from bottom (0=white,1=black)
	height   uint8
	topRole  Role // role of the top piece; meaningless when height == 0
}

// Height returns the number of pieces in the stack.
func (s Stack) Height() int {
	return int(s.height)
}

// IsEmpty reports whether the stack has no pieces.
func (s Stack) IsEmpty() bool {
	return s.height == 0
}

// Top returns the top piece, or (NoPiece, false) if the stack is empty.
func (s Stack) Top() (Piece, bool) {
	if s.height == 0 {
		return NoPiece, false
	}
	return s.Get(int(s.height) - 1), true
}

// TopColor returns the colour of the top piece; callers must check
// IsEmpty first.
func (s Stack) TopColor() Color {
	return Color((s.bitboard >> (s.height - 1)) & 1)
}

// Get returns the i-th piece from the bottom (0-indexed). Every piece is
// a Flat of the encoded colour except the top one, which carries the
// tracked role.
func (s Stack) Get(i int) Piece {
	color := Color((s.bitboard >> uint(i)) & 1)
	if i == int(s.height)-1 {
		return NewPiece(s.topRole, color)
	}
	return NewPiece(Flat, color)
}

// Push adds p to the top of the stack. Pushing a Wall or Cap implicitly
// flattens whatever was previously on top, since only the top piece's
// role is ever tracked.
func (s *Stack) Push(p Piece) {
	if p.Color() == Black {
		s.bitboard |= 1 << s.height
	} else {
		s.bitboard &^= 1 << s.height
	}
	s.height++
	s.topRole = p.Role()
}

// Pop removes and returns the top piece. Ok is false on an empty stack.
func (s *Stack) Pop() (Piece, bool) {
	if s.height == 0 {
		return NoPiece, false
	}
	top := s.Get(int(s.height) - 1)
	s.height--
	s.bitboard &^= 1 << s.height // keep bits above height zero
	s.topRole = Flat
	return top, true
}

// ColorCounts returns the number of flats of each colour in the stack,
// excluding the top piece when it is a Wall or Cap (those don't count
// toward flat totals).
func (s Stack) ColorCounts() (white, black int) {
	for i := 0; i < int(s.height); i++ {
		p := s.Get(i)
		if p.Role() != Flat {
			continue
		}
		if p.Color() == White {
			white++
		} else {
			black++
		}
	}
	return
}
