package tak

import "testing"

// perft counts leaf nodes at the given depth, the standard way to verify
// move generation correctness.
func perft(pos *Position, depth int) int64 {
	if depth == 0 {
		return 1
	}
	moves := GenerateMoves(pos, nil)
	if depth == 1 {
		return int64(len(moves))
	}
	var nodes int64
	for _, m := range moves {
		rev := pos.DoMove(m)
		nodes += perft(pos, depth-1)
		pos.UndoMove(m, rev)
	}
	return nodes
}

func TestPerft5x5StartingPosition(t *testing.T) {
	pos, err := NewPosition(5, 0)
	if err != nil {
		t.Fatalf("NewPosition: %v", err)
	}

	tests := []struct {
		depth    int
		expected int64
	}{
		{1, 25},
		{2, 600},
		{3, 43320},
		// depth 4 takes longer; enable for thorough verification.
		// {4, 2999784},
	}
	for _, tc := range tests {
		t.Run("", func(t *testing.T) {
			got := perft(pos, tc.depth)
			if got != tc.expected {
				t.Errorf("perft(%d) = %d, want %d", tc.depth, got, tc.expected)
			}
		})
	}
}
