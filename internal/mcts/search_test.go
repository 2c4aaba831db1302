package mcts

import (
	"math/rand"
	"testing"
	"time"

	"github.com/taklab/tiltak-go/internal/tak"
)

func testWeights(t *testing.T, size, komi int) *Weights {
	t.Helper()
	w, err := LoadWeights(size, komi)
	if err != nil {
		t.Fatalf("LoadWeights: %v", err)
	}
	return w
}

func deterministicSettings() Settings {
	s := DefaultSettings()
	s.Rand = rand.New(rand.NewSource(42))
	return s
}

func TestMCTSReturnsLegalMove(t *testing.T) {
	pos, err := tak.NewPosition(5, 0)
	if err != nil {
		t.Fatalf("NewPosition: %v", err)
	}
	w := testWeights(t, 5, 0)

	result, err := MCTS(pos, 40, 4<<20, w, deterministicSettings())
	if err != nil {
		t.Fatalf("MCTS: %v", err)
	}
	if result.WinProb < 0 || result.WinProb > 1 {
		t.Fatalf("WinProb = %v, out of [0,1]", result.WinProb)
	}

	legal := tak.GenerateMoves(pos, nil)
	found := false
	for _, m := range legal {
		if m == result.Move {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("MCTS returned a move not in GenerateMoves: %v", result.Move)
	}
}

func TestMCTSMinimumTwoSelects(t *testing.T) {
	pos, err := tak.NewPosition(5, 0)
	if err != nil {
		t.Fatalf("NewPosition: %v", err)
	}
	w := testWeights(t, 5, 0)

	result, err := MCTS(pos, 0, 4<<20, w, deterministicSettings())
	if err != nil {
		t.Fatalf("MCTS: %v", err)
	}
	if result.NodesVisited < 2 {
		t.Fatalf("NodesVisited = %d, want >= 2 (warm-up floor)", result.NodesVisited)
	}
}

func TestMCTSTrainingFractionsSumToOne(t *testing.T) {
	pos, err := tak.NewPosition(5, 0)
	if err != nil {
		t.Fatalf("NewPosition: %v", err)
	}
	w := testWeights(t, 5, 0)

	targets, err := MCTSTraining(pos, 40, 4<<20, w, deterministicSettings())
	if err != nil {
		t.Fatalf("MCTSTraining: %v", err)
	}
	if len(targets) == 0 {
		t.Fatal("no training targets returned")
	}
	var sum float64
	for _, tg := range targets {
		if tg.Fraction < 0 || tg.Fraction > 1 {
			t.Fatalf("fraction out of [0,1]: %v", tg.Fraction)
		}
		sum += tg.Fraction
	}
	if sum < 0.999 || sum > 1.001 {
		t.Fatalf("sum(fractions) = %v, want ~1.0", sum)
	}
}

type neverStop struct{}

func (neverStop) Stopped() bool { return false }

func TestPlayMoveTimeReturnsWithinBudget(t *testing.T) {
	pos, err := tak.NewPosition(5, 0)
	if err != nil {
		t.Fatalf("NewPosition: %v", err)
	}
	w := testWeights(t, 5, 0)

	start := time.Now()
	budget := 50 * time.Millisecond
	result, err := PlayMoveTime(pos, budget, 4<<20, w, deterministicSettings(), neverStop{})
	if err != nil {
		t.Fatalf("PlayMoveTime: %v", err)
	}
	if elapsed := time.Since(start); elapsed > budget+500*time.Millisecond {
		t.Fatalf("PlayMoveTime took %v, want close to the %v budget", elapsed, budget)
	}
	legal := tak.GenerateMoves(pos, nil)
	found := false
	for _, m := range legal {
		if m == result.Move {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("PlayMoveTime returned a move not in GenerateMoves: %v", result.Move)
	}
}

func TestSearcherOOMReportsBestSoFar(t *testing.T) {
	pos, err := tak.NewPosition(5, 0)
	if err != nil {
		t.Fatalf("NewPosition: %v", err)
	}
	w := testWeights(t, 5, 0)

	// A tiny arena forces OOM after very few selects; MCTS must still
	// return a legal move rather than propagate the error.
	result, err := MCTS(pos, 10000, 4096, w, deterministicSettings())
	if err != nil {
		t.Fatalf("MCTS with a tiny arena: %v", err)
	}
	legal := tak.GenerateMoves(pos, nil)
	found := false
	for _, m := range legal {
		if m == result.Move {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("MCTS (OOM path) returned a move not in GenerateMoves: %v", result.Move)
	}
}
