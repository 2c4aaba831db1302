package tak

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/taklab/tiltak-go/internal/square"
)

// FormatPlaytak renders m in Playtak's wire notation (spec 6, 12):
// "P <SQUARE> [W|C]" for a placement, "M <FROM> <TO> <drop>...<last_drop>"
// for a movement.
func FormatPlaytak(m Move, size int) string {
	if m.IsPlacement() {
		sq := strings.ToUpper(m.Origin().String(size))
		switch m.PlaceRole() {
		case Wall:
			return "P " + sq + " W"
		case Cap:
			return "P " + sq + " C"
		default:
			return "P " + sq
		}
	}

	origin := m.Origin()
	dir := m.Direction()
	drops := m.Movement().Drops()
	cur := origin
	for range drops {
		next, _ := cur.Neighbor(dir, size)
		cur = next
	}
	var b strings.Builder
	b.WriteString("M ")
	b.WriteString(strings.ToUpper(origin.String(size)))
	b.WriteByte(' ')
	b.WriteString(strings.ToUpper(cur.String(size)))
	for _, d := range drops {
		b.WriteByte(' ')
		b.WriteString(strconv.Itoa(d))
	}
	return b.String()
}

// ParsePlaytak parses Playtak wire notation into a Move (spec 6, 12).
func ParsePlaytak(s string, size int) (Move, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0, fmt.Errorf("tak: Playtak %q: empty", s)
	}
	switch strings.ToUpper(fields[0]) {
	case "P":
		if len(fields) < 2 {
			return 0, fmt.Errorf("tak: Playtak %q: missing square", s)
		}
		sq, err := square.Parse(strings.ToLower(fields[1]), size)
		if err != nil {
			return 0, fmt.Errorf("tak: Playtak %q: %w", s, err)
		}
		role := Flat
		if len(fields) >= 3 {
			switch strings.ToUpper(fields[2]) {
			case "W":
				role = Wall
			case "C":
				role = Cap
			default:
				return 0, fmt.Errorf("tak: Playtak %q: bad role %q", s, fields[2])
			}
		}
		return PlaceMove(role, sq), nil
	case "M":
		if len(fields) < 4 {
			return 0, fmt.Errorf("tak: Playtak %q: movement needs from, to and drops", s)
		}
		from, err := square.Parse(strings.ToLower(fields[1]), size)
		if err != nil {
			return 0, fmt.Errorf("tak: Playtak %q: %w", s, err)
		}
		to, err := square.Parse(strings.ToLower(fields[2]), size)
		if err != nil {
			return 0, fmt.Errorf("tak: Playtak %q: %w", s, err)
		}
		dir, ok := directionBetween(from, to, size)
		if !ok {
			return 0, fmt.Errorf("tak: Playtak %q: %s and %s are not aligned", s, fields[1], fields[2])
		}
		drops := make([]int, 0, len(fields)-3)
		for _, f := range fields[3:] {
			n, err := strconv.Atoi(f)
			if err != nil || n < 1 {
				return 0, fmt.Errorf("tak: Playtak %q: bad drop %q", s, f)
			}
			drops = append(drops, n)
		}
		carries := make([]int, len(drops))
		suffix := 0
		for i := len(drops) - 1; i >= 0; i-- {
			suffix += drops[i]
			carries[i] = suffix
		}
		return SpreadMove(from, dir, NewStackMovement(carries)), nil
	default:
		return 0, fmt.Errorf("tak: Playtak %q: unknown command %q", s, fields[0])
	}
}

// directionBetween reports the single-step direction that, repeated,
// walks from 'from' to 'to' on a board of the given size.
func directionBetween(from, to square.Square, size int) (square.Direction, bool) {
	fr, ff := from.Rank(size), from.File(size)
	tr, tf := to.Rank(size), to.File(size)
	switch {
	case ff == tf && tr < fr:
		return square.North, true
	case ff == tf && tr > fr:
		return square.South, true
	case fr == tr && tf < ff:
		return square.West, true
	case fr == tr && tf > ff:
		return square.East, true
	default:
		return 0, false
	}
}
