package tak

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseTPS parses a Tak Positional System string into a Position (spec 6).
// TPS never encodes komi or move history beyond the move number, so komi
// must be supplied by the caller.
func ParseTPS(s string, komi int) (*Position, error) {
	fields := strings.Fields(s)
	if len(fields) != 3 {
		return nil, fmt.Errorf("tak: TPS %q: expected 3 fields, got %d", s, len(fields))
	}
	rows := strings.Split(fields[0], "/")
	size := len(rows)
	if _, ok := startingReserves[size]; !ok {
		return nil, fmt.Errorf("tak: TPS %q: unsupported board size %d", s, size)
	}

	pos := &Position{Size: size, Komi: komi}
	for rank, row := range rows {
		cells := strings.Split(row, ",")
		file := 0
		for _, cell := range cells {
			if file >= size {
				return nil, fmt.Errorf("tak: TPS %q: row %d has too many cells", s, rank)
			}
			if cell == "" {
				return nil, fmt.Errorf("tak: TPS %q: empty cell in row %d", s, rank)
			}
			if cell[0] == 'x' {
				n := 1
				if len(cell) > 1 {
					v, err := strconv.Atoi(cell[1:])
					if err != nil {
						return nil, fmt.Errorf("tak: TPS %q: bad empty-run %q: %w", s, cell, err)
					}
					n = v
				}
				file += n
				continue
			}
			stackDigits := cell
			role := Flat
			if last := cell[len(cell)-1]; last == 'S' || last == 'C' {
				stackDigits = cell[:len(cell)-1]
				if last == 'S' {
					role = Wall
				} else {
					role = Cap
				}
			}
			sq := rank*size + file
			for i := 0; i < len(stackDigits); i++ {
				d := stackDigits[i]
				var c Color
				switch d {
				case '1':
					c = White
				case '2':
					c = Black
				default:
					return nil, fmt.Errorf("tak: TPS %q: bad stack digit %q in %q", s, string(d), cell)
				}
				pieceRole := Flat
				if i == len(stackDigits)-1 {
					pieceRole = role
				}
				pos.Stacks[sq].Push(NewPiece(pieceRole, c))
			}
			file++
		}
		if file != size {
			return nil, fmt.Errorf("tak: TPS %q: row %d has %d cells, want %d", s, rank, file, size)
		}
	}

	switch fields[1] {
	case "1":
		pos.SideToMove = White
	case "2":
		pos.SideToMove = Black
	default:
		return nil, fmt.Errorf("tak: TPS %q: bad side-to-move %q", s, fields[1])
	}

	moveNumber, err := strconv.Atoi(fields[2])
	if err != nil || moveNumber < 1 {
		return nil, fmt.Errorf("tak: TPS %q: bad move number %q", s, fields[2])
	}
	pos.HalfMovesPlayed = 2 * (moveNumber - 1)
	if pos.SideToMove == Black {
		pos.HalfMovesPlayed++
	}

	reserves := startingReserves[size]
	whiteFlats, whiteCaps := reserves[0], reserves[1]
	blackFlats, blackCaps := reserves[0], reserves[1]
	for sq := 0; sq < size*size; sq++ {
		st := pos.Stacks[sq]
		for i := 0; i < st.Height(); i++ {
			p := st.Get(i)
			if p.Role() == Cap {
				if p.Color() == White {
					whiteCaps--
				} else {
					blackCaps--
				}
			} else {
				if p.Color() == White {
					whiteFlats--
				} else {
					blackFlats--
				}
			}
		}
	}
	if whiteFlats < 0 || whiteCaps < 0 || blackFlats < 0 || blackCaps < 0 {
		return nil, fmt.Errorf("tak: TPS %q: piece count exceeds reserves", s)
	}
	pos.WhiteReserves, pos.WhiteCaps = whiteFlats, whiteCaps
	pos.BlackReserves, pos.BlackCaps = blackFlats, blackCaps

	pos.Hash = pos.recomputeHash()
	return pos, nil
}

// FormatTPS renders pos as a TPS string (spec 6).
func FormatTPS(pos *Position) string {
	size := pos.Size
	var rows []string
	for rank := 0; rank < size; rank++ {
		var cells []string
		emptyRun := 0
		flush := func() {
			if emptyRun > 0 {
				if emptyRun == 1 {
					cells = append(cells, "x")
				} else {
					cells = append(cells, "x"+strconv.Itoa(emptyRun))
				}
				emptyRun = 0
			}
		}
		for file := 0; file < size; file++ {
			sq := rank*size + file
			st := pos.Stacks[sq]
			if st.IsEmpty() {
				emptyRun++
				continue
			}
			flush()
			var b strings.Builder
			for i := 0; i < st.Height(); i++ {
				p := st.Get(i)
				if p.Color() == White {
					b.WriteByte('1')
				} else {
					b.WriteByte('2')
				}
			}
			top, _ := st.Top()
			switch top.Role() {
			case Wall:
				b.WriteByte('S')
			case Cap:
				b.WriteByte('C')
			}
			cells = append(cells, b.String())
		}
		flush()
		rows = append(rows, strings.Join(cells, ","))
	}

	side := "1"
	if pos.SideToMove == Black {
		side = "2"
	}
	moveNumber := pos.HalfMovesPlayed/2 + 1
	return fmt.Sprintf("%s %s %d", strings.Join(rows, "/"), side, moveNumber)
}
