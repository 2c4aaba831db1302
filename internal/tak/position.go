package tak

import (
	"fmt"

	"github.com/taklab/tiltak-go/internal/square"
)

// startingReserves gives the standard flat/cap counts per board size.
var startingReserves = map[int][2]int{
	3: {10, 0},
	4: {15, 0},
	5: {21, 1},
	6: {30, 1},
	7: {40, 2},
	8: {50, 2},
}

// MinKomi and MaxKomi bound the signed half-flat komi value (spec 3).
const (
	MinKomi = -10
	MaxKomi = 10
)

// Position is the full board state: stacks, side to move, reserves, move
// history, Zobrist hash and hash history (spec 3).
type Position struct {
	Size int

	Stacks [64]Stack

	SideToMove Color

	WhiteReserves int
	BlackReserves int
	WhiteCaps     int
	BlackCaps     int

	HalfMovesPlayed int
	MoveHistory     []Move

	// Komi is a signed count of half-flats awarded to Black for flat
	// counting; valid values are in [MinKomi, MaxKomi].
	Komi int

	Hash        uint64
	HashHistory []uint64
}

// NewPosition constructs the empty starting position for the given board
// size and komi.
func NewPosition(size, komi int) (*Position, error) {
	reserves, ok := startingReserves[size]
	if !ok {
		return nil, fmt.Errorf("tak: unsupported board size %d", size)
	}
	if komi < MinKomi || komi > MaxKomi {
		return nil, fmt.Errorf("tak: komi %d out of range [%d, %d]", komi, MinKomi, MaxKomi)
	}
	p := &Position{
		Size:          size,
		SideToMove:    White,
		WhiteReserves: reserves[0],
		BlackReserves: reserves[0],
		WhiteCaps:     reserves[1],
		BlackCaps:     reserves[1],
		Komi:          komi,
	}
	p.Hash = p.recomputeHash()
	return p, nil
}

// Clone returns a deep, independent copy of p.
func (p *Position) Clone() *Position {
	np := *p
	np.MoveHistory = append([]Move(nil), p.MoveHistory...)
	np.HashHistory = append([]uint64(nil), p.HashHistory...)
	return &np
}

// Reserves returns the reserve flats and caps remaining for c.
func (p *Position) Reserves(c Color) (flats, caps int) {
	if c == White {
		return p.WhiteReserves, p.WhiteCaps
	}
	return p.BlackReserves, p.BlackCaps
}

func (p *Position) setReserves(c Color, flats, caps int) {
	if c == White {
		p.WhiteReserves, p.WhiteCaps = flats, caps
	} else {
		p.BlackReserves, p.BlackCaps = flats, caps
	}
}

// Ply returns the current 0-indexed ply count (number of moves played).
func (p *Position) Ply() int {
	return p.HalfMovesPlayed
}

// recomputeHash derives the Zobrist hash from scratch: the XOR of every
// square's contribution plus the side-to-move key if Black is to move.
func (p *Position) recomputeHash() uint64 {
	var h uint64
	for sq := 0; sq < p.Size*p.Size; sq++ {
		h ^= squareHash(sq, p.Stacks[sq])
	}
	if p.SideToMove == Black {
		h ^= sideToMoveHash()
	}
	return h
}

// ZobristHashFromScratch exposes recomputeHash for the spec 8 consistency
// property: p.Hash == p.ZobristHashFromScratch() at all times.
func (p *Position) ZobristHashFromScratch() uint64 {
	return p.recomputeHash()
}

// ReverseMove is the cookie returned by DoMove, consumed by UndoMove. It
// records exactly enough to replay the mutation backwards, including the
// pre-move hash history (placements clear it, so it cannot be
// reconstructed from the post-move state alone).
type ReverseMove struct {
	isPlacement bool

	// Placement fields.
	placedSquare square.Square
	placedRole   Role
	placedColor  Color

	// Movement fields.
	origin       square.Square
	direction    square.Direction
	movement     StackMovement
	flattensWall bool

	prevHashHistory []uint64
}

// DoMove applies m to p in place and returns a cookie that undoes it.
func (p *Position) DoMove(m Move) ReverseMove {
	size := p.Size
	mover := p.SideToMove
	preHash := p.Hash // pre-move hash; a position's own hash is never in its own history
	placingColor := mover
	// Tak opening rule: on plies 0 and 1 the placed piece belongs to the
	// opponent (spec 4.3/4.4).
	if p.HalfMovesPlayed < 2 {
		placingColor = mover.Other()
	}

	rev := ReverseMove{prevHashHistory: p.HashHistory}

	if m.IsPlacement() {
		sq := m.Origin()
		h := squareHash(int(sq), p.Stacks[sq])
		p.Stacks[sq].Push(NewPiece(m.PlaceRole(), placingColor))
		h ^= squareHash(int(sq), p.Stacks[sq])
		p.Hash ^= h

		flats, caps := p.Reserves(placingColor)
		if m.PlaceRole() == Cap {
			caps--
		} else {
			flats--
		}
		p.setReserves(placingColor, flats, caps)

		rev.isPlacement = true
		rev.placedSquare = sq
		rev.placedRole = m.PlaceRole()
		rev.placedColor = placingColor

		p.HashHistory = nil // placements are irreversible
	} else {
		origin := m.Origin()
		dir := m.Direction()
		movement := m.Movement()
		drops := movement.Drops()
		carry := movement.InitialCarry()

		hOrigin := squareHash(int(origin), p.Stacks[origin])
		var scratch [8]Piece
		for i := 0; i < carry; i++ {
			piece, _ := p.Stacks[origin].Pop()
			scratch[i] = piece // scratch[0] = former top (origin's own top)
		}
		p.Hash ^= hOrigin ^ squareHash(int(origin), p.Stacks[origin])

		cur := origin
		flattened := false
		carried := carry
		for _, drop := range drops {
			next, ok := cur.Neighbor(dir, size)
			if !ok {
				panic("tak: spread stepped off board")
			}
			cur = next
			hDest := squareHash(int(cur), p.Stacks[cur])
			if top, hasTop := p.Stacks[cur].Top(); hasTop && top.Role() == Wall {
				flattened = true
			}
			start := carried - drop
			// Push bottom-of-held-group first (highest scratch index) so
			// that relative order within the carried stack is preserved.
			for j := carried - 1; j >= start; j-- {
				p.Stacks[cur].Push(scratch[j])
			}
			carried = start
			p.Hash ^= hDest ^ squareHash(int(cur), p.Stacks[cur])
		}

		rev.isPlacement = false
		rev.origin = origin
		rev.direction = dir
		rev.movement = movement
		rev.flattensWall = flattened
	}

	p.Hash ^= sideToMoveHash()
	p.MoveHistory = append(p.MoveHistory, m)
	p.HalfMovesPlayed++
	p.SideToMove = mover.Other()

	if !rev.isPlacement {
		p.HashHistory = append(p.HashHistory, preHash)
	}

	return rev
}

// UndoMove reverses the mutation recorded by rev, restoring p to the
// state it had before the corresponding DoMove call.
func (p *Position) UndoMove(m Move, rev ReverseMove) {
	size := p.Size
	p.HalfMovesPlayed--
	p.SideToMove = p.SideToMove.Other()
	p.MoveHistory = p.MoveHistory[:len(p.MoveHistory)-1]
	p.HashHistory = rev.prevHashHistory

	if rev.isPlacement {
		p.Stacks[rev.placedSquare].Pop()
		flats, caps := p.Reserves(rev.placedColor)
		if rev.placedRole == Cap {
			caps++
		} else {
			flats++
		}
		p.setReserves(rev.placedColor, flats, caps)
	} else {
		drops := rev.movement.Drops()

		// Walk the path forward to find every destination square in order.
		dests := make([]square.Square, 0, len(drops))
		cur := rev.origin
		for range drops {
			next, _ := cur.Neighbor(rev.direction, size)
			cur = next
			dests = append(dests, cur)
		}

		// Pop destinations in reverse path order, pushing back onto origin.
		var held [8]Piece
		heldCount := 0
		for i := len(dests) - 1; i >= 0; i-- {
			sq := dests[i]
			for j := 0; j < drops[i]; j++ {
				piece, _ := p.Stacks[sq].Pop()
				held[heldCount] = piece
				heldCount++
			}
			if i == len(dests)-1 && rev.flattensWall {
				// The crushed wall's flat remains on top; restore it to
				// Wall now that the capstone's pieces have been lifted off.
				if top, ok := p.Stacks[sq].Top(); ok && top.Role() == Flat {
					p.Stacks[sq].Pop()
					p.Stacks[sq].Push(NewPiece(Wall, top.Color()))
				}
			}
		}
		// held was filled by popping destinations from last to first and,
		// within each destination, top-first; pushing it back in reverse
		// accumulation order restores the original top-to-bottom carry.
		for i := heldCount - 1; i >= 0; i-- {
			p.Stacks[rev.origin].Push(held[i])
		}
	}

	p.Hash = p.recomputeHash()
}
