package tak

import (
	"math/bits"

	"github.com/taklab/tiltak-go/internal/square"
)

// Move is a compact 16-bit packed move (spec 3, 4.3, 9): either a
// placement or a stack spread. The implementer's note in spec 9 is
// deliberate: Move stays a POD, never promoted to a sum type at rest.
type Move uint16

// PlaceMove builds a placement move.
func PlaceMove(role Role, sq square.Square) Move {
	return Move(sq) | Move(role)<<6
}

// SpreadMove builds a stack-spread move.
func SpreadMove(origin square.Square, dir square.Direction, sm StackMovement) Move {
	return Move(origin) | Move(dir)<<6 | Move(sm)<<8
}

// IsPlacement reports whether m is a placement (high 8 bits zero).
func (m Move) IsPlacement() bool {
	return m>>8 == 0
}

// Origin returns the square a move starts from: the placed square for a
// placement, the stack's origin square for a spread.
func (m Move) Origin() square.Square {
	return square.Square(m & 0x3F)
}

// PlaceRole returns the role placed; only meaningful when IsPlacement.
func (m Move) PlaceRole() Role {
	return Role((m >> 6) & 0x3)
}

// Direction returns the spread direction; only meaningful when !IsPlacement.
func (m Move) Direction() square.Direction {
	return square.Direction((m >> 6) & 0x3)
}

// Movement returns the packed stack movement; only meaningful when
// !IsPlacement.
func (m Move) Movement() StackMovement {
	return StackMovement(m >> 8)
}

// StackMovement is a bit-packed sequence of "pieces-to-take" counts
// (spec 3). Because the sequence is strictly decreasing with values in
// [1, 8], it is exactly the set of distinct values it contains: bit i
// set means the value i+1 occurs in the sequence. Decoding from the
// highest set bit down reconstructs the descending sequence losslessly,
// including the implicit terminating 0 (no bit set below the lowest
// carried value).
type StackMovement uint8

// NewStackMovement builds a StackMovement from the sequence of "still
// carried" amounts (spec 3), excluding the terminating 0. carries must
// be strictly decreasing with every entry in [1, 8].
func NewStackMovement(carries []int) StackMovement {
	var sm StackMovement
	for _, c := range carries {
		sm |= 1 << uint(c-1)
	}
	return sm
}

// Carries returns the descending sequence of carried-amount entries; the
// first entry is the initial carry taken from the origin square.
func (sm StackMovement) Carries() []int {
	out := make([]int, 0, 8)
	for b := 7; b >= 0; b-- {
		if sm&(1<<uint(b)) != 0 {
			out = append(out, b+1)
		}
	}
	return out
}

// InitialCarry returns the number of pieces taken from the origin square.
func (sm StackMovement) InitialCarry() int {
	if sm == 0 {
		return 0
	}
	return bits.Len8(uint8(sm))
}

// Drops returns the per-square drop counts along the path, in path order:
// Drops()[i] is how many pieces are left behind at the i-th stepped-to
// square.
func (sm StackMovement) Drops() []int {
	carries := sm.Carries()
	drops := make([]int, len(carries))
	for i, c := range carries {
		next := 0
		if i+1 < len(carries) {
			next = carries[i+1]
		}
		drops[i] = c - next
	}
	return drops
}

// NumSquares returns how many squares beyond the origin are stepped onto.
func (sm StackMovement) NumSquares() int {
	return bits.OnesCount8(uint8(sm))
}
