package tei

import (
	"strings"
	"testing"

	"github.com/taklab/tiltak-go/internal/mcts"
	"github.com/taklab/tiltak-go/internal/square"
	"github.com/taklab/tiltak-go/internal/tak"
)

func TestHandleSetOptionHalfKomi(t *testing.T) {
	te := New()
	te.handleSetOption(strings.Fields("name HalfKomi value 4"))
	if te.options.HalfKomi != 4 {
		t.Fatalf("HalfKomi = %d, want 4", te.options.HalfKomi)
	}
	if te.pos.Komi != 4 {
		t.Fatalf("position Komi = %d, want 4 after resetPosition", te.pos.Komi)
	}
}

func TestHandleSetOptionRejectsUnsupportedHalfKomi(t *testing.T) {
	te := New()
	te.handleSetOption(strings.Fields("name HalfKomi value 2"))
	if te.options.HalfKomi != 0 {
		t.Fatalf("HalfKomi = %d, want unchanged 0 for an unsupported value", te.options.HalfKomi)
	}
}

func TestHandleSetOptionMultiPVBounds(t *testing.T) {
	te := New()
	te.handleSetOption(strings.Fields("name MultiPV value 17"))
	if te.options.MultiPV != 1 {
		t.Fatalf("MultiPV = %d, want unchanged 1 after an out-of-range value", te.options.MultiPV)
	}
	te.handleSetOption(strings.Fields("name MultiPV value 4"))
	if te.options.MultiPV != 4 {
		t.Fatalf("MultiPV = %d, want 4", te.options.MultiPV)
	}
}

func TestHandleNewGameChangesSize(t *testing.T) {
	te := New()
	te.handleNewGame([]string{"6"})
	if te.size != 6 {
		t.Fatalf("size = %d, want 6", te.size)
	}
	if te.pos.Size != 6 {
		t.Fatalf("pos.Size = %d, want 6", te.pos.Size)
	}
}

func TestHandlePositionStartposWithMoves(t *testing.T) {
	te := New()
	te.handlePosition(strings.Fields("startpos moves a1 e5 c3"))
	if te.pos.Ply() != 3 {
		t.Fatalf("Ply() = %d, want 3 after 3 placements", te.pos.Ply())
	}
}

func TestHandlePositionTPS(t *testing.T) {
	te := New()
	tps := "x5/x5/x5/x5/x5 1 1"
	te.handlePosition(strings.Fields("tps " + tps))
	if te.pos.SideToMove != tak.White {
		t.Fatalf("SideToMove = %v, want White for move 1", te.pos.SideToMove)
	}
}

func TestFormatInfoFieldsAndPV(t *testing.T) {
	te := New()
	sq, err := square.Parse("a1", 5)
	if err != nil {
		t.Fatalf("square.Parse: %v", err)
	}
	info := mcts.Info{
		NodesVisited: 1000,
		WinProb:      0.75,
		PV:           []tak.Move{tak.PlaceMove(tak.Flat, sq)},
		ArenaPercent: 12.5,
	}
	line := te.formatInfo(info, 0)
	if !strings.HasPrefix(line, "info depth") {
		t.Fatalf("formatInfo = %q, want it to start with \"info depth\"", line)
	}
	if !strings.Contains(line, "score cp 50") {
		t.Fatalf("formatInfo = %q, want \"score cp 50\" for WinProb 0.75", line)
	}
	if !strings.Contains(line, "pv a1") {
		t.Fatalf("formatInfo = %q, want the PV move rendered", line)
	}
}

func TestFormatInfoMultiPVPrefix(t *testing.T) {
	te := New()
	line := te.formatInfo(mcts.Info{WinProb: 0.5}, 2)
	if !strings.HasPrefix(line, "info multipv 2 ") {
		t.Fatalf("formatInfo with rank 2 = %q, want a leading \"info multipv 2 \"", line)
	}
}

func TestRankByVisitsDescendingWithTieBreak(t *testing.T) {
	children := []mcts.RootChild{
		{Move: 1, Visits: 5, MeanValue: 0.4},
		{Move: 2, Visits: 10, MeanValue: 0.1},
		{Move: 3, Visits: 10, MeanValue: 0.9},
	}
	ranked := rankByVisits(children)
	if ranked[0].Move != 3 || ranked[1].Move != 2 || ranked[2].Move != 1 {
		t.Fatalf("rankByVisits order = %+v, want [3 2 1]", ranked)
	}
}

func TestIsPowerOfTwo(t *testing.T) {
	for _, n := range []uint64{1, 2, 4, 1024} {
		if !isPowerOfTwo(n) {
			t.Fatalf("isPowerOfTwo(%d) = false, want true", n)
		}
	}
	for _, n := range []uint64{0, 3, 6, 1023} {
		if isPowerOfTwo(n) {
			t.Fatalf("isPowerOfTwo(%d) = true, want false", n)
		}
	}
}

