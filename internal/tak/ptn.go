package tak

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/taklab/tiltak-go/internal/square"
)

// FormatPTN renders m as PTN move text (spec 6). size is needed to
// render the square in file+rank form.
func FormatPTN(m Move, size int) string {
	if m.IsPlacement() {
		sq := m.Origin().String(size)
		switch m.PlaceRole() {
		case Wall:
			return "S" + sq
		case Cap:
			return "C" + sq
		default:
			return sq
		}
	}

	sm := m.Movement()
	carries := sm.Carries()
	drops := sm.Drops()
	var b strings.Builder
	if carries[0] != 1 {
		b.WriteString(strconv.Itoa(carries[0]))
	}
	b.WriteString(m.Origin().String(size))
	b.WriteByte(m.Direction().PTN())
	// Every drop but the last is written explicitly; the final drop is
	// implicit (it's whatever remains).
	for i := 0; i < len(drops)-1; i++ {
		b.WriteString(strconv.Itoa(drops[i]))
	}
	return b.String()
}

// FormatPTNCrush renders m as PTN move text, appending a trailing '*'
// when wasCrush is true (spec 6: "Trailing * denotes a crushing spread").
func FormatPTNCrush(m Move, size int, wasCrush bool) string {
	s := FormatPTN(m, size)
	if !m.IsPlacement() && wasCrush {
		s += "*"
	}
	return s
}

// ParsePTN parses PTN move text into a Move (spec 6).
func ParsePTN(s string, size int) (Move, error) {
	orig := s
	s = strings.TrimSuffix(s, "*")
	if s == "" {
		return 0, fmt.Errorf("tak: PTN %q: empty", orig)
	}

	// Placement: optional role prefix, then a square.
	switch s[0] {
	case 'S':
		sq, err := square.Parse(s[1:], size)
		if err != nil {
			return 0, fmt.Errorf("tak: PTN %q: %w", orig, err)
		}
		return PlaceMove(Wall, sq), nil
	case 'C':
		sq, err := square.Parse(s[1:], size)
		if err != nil {
			return 0, fmt.Errorf("tak: PTN %q: %w", orig, err)
		}
		return PlaceMove(Cap, sq), nil
	}
	if len(s) == 2 && s[0] >= 'a' && s[0] <= 'h' {
		sq, err := square.Parse(s, size)
		if err != nil {
			return 0, fmt.Errorf("tak: PTN %q: %w", orig, err)
		}
		return PlaceMove(Flat, sq), nil
	}

	// Movement: [N]<square><dir>[drops...]
	i := 0
	carry := 1
	if s[i] >= '1' && s[i] <= '8' {
		carry = int(s[i] - '0')
		i++
	}
	if i+2 > len(s) {
		return 0, fmt.Errorf("tak: PTN %q: truncated", orig)
	}
	sq, err := square.Parse(s[i:i+2], size)
	if err != nil {
		return 0, fmt.Errorf("tak: PTN %q: %w", orig, err)
	}
	i += 2
	if i >= len(s) {
		return 0, fmt.Errorf("tak: PTN %q: missing direction", orig)
	}
	dir, ok := square.ParsePTN(s[i])
	if !ok {
		return 0, fmt.Errorf("tak: PTN %q: bad direction %q", orig, string(s[i]))
	}
	i++

	var explicitDrops []int
	for ; i < len(s); i++ {
		if s[i] < '1' || s[i] > '8' {
			return 0, fmt.Errorf("tak: PTN %q: bad drop digit %q", orig, string(s[i]))
		}
		explicitDrops = append(explicitDrops, int(s[i]-'0'))
	}

	sum := 0
	for _, d := range explicitDrops {
		sum += d
	}
	finalDrop := carry - sum
	if finalDrop < 1 {
		return 0, fmt.Errorf("tak: PTN %q: drops exceed carry", orig)
	}
	allDrops := append(explicitDrops, finalDrop)

	// carries[i] is the amount still carried on arrival at the i-th
	// square: the sum of every drop from i onward.
	carries := make([]int, len(allDrops))
	suffix := 0
	for i := len(allDrops) - 1; i >= 0; i-- {
		suffix += allDrops[i]
		carries[i] = suffix
	}

	return SpreadMove(sq, dir, NewStackMovement(carries)), nil
}
