package eval

import (
	"math"
	"testing"

	"github.com/taklab/tiltak-go/internal/tak"
)

// Priors must produce a strictly positive, NaN-free distribution over
// legal moves that sums to ~1.0 (spec 8).
func TestPriorsSumToOneAndFinite(t *testing.T) {
	pos := newTestPosition(t, 5, 0)
	playOpeningMoves(t, pos, []string{"a1", "e5", "c3"})

	weights, err := LoadPolicyWeights(pos.Size)
	if err != nil {
		t.Fatalf("LoadPolicyWeights: %v", err)
	}

	moves := tak.GenerateMoves(pos, nil)
	if len(moves) == 0 {
		t.Fatal("no legal moves generated")
	}
	gd := tak.ComputeGroupData(pos)
	priors := Priors(pos, gd, moves, weights)

	if len(priors) != len(moves) {
		t.Fatalf("len(priors) = %d, want %d", len(priors), len(moves))
	}

	var sum float64
	for i, p := range priors {
		if p <= 0 {
			t.Fatalf("prior[%d] = %v, want strictly positive", i, p)
		}
		if math.IsNaN(float64(p)) || math.IsInf(float64(p), 0) {
			t.Fatalf("prior[%d] = %v, not finite", i, p)
		}
		sum += float64(p)
	}
	if math.Abs(sum-1) > 1e-3 {
		t.Fatalf("sum(priors) = %v, want ~1.0", sum)
	}
}

func TestPriorsSingleMoveIsOne(t *testing.T) {
	pos := newTestPosition(t, 5, 0)
	moves := tak.GenerateMoves(pos, nil)
	weights, err := LoadPolicyWeights(pos.Size)
	if err != nil {
		t.Fatalf("LoadPolicyWeights: %v", err)
	}
	gd := tak.ComputeGroupData(pos)
	priors := Priors(pos, gd, moves[:1], weights)
	if len(priors) != 1 {
		t.Fatalf("len(priors) = %d, want 1", len(priors))
	}
	if math.Abs(float64(priors[0]-1)) > 1e-6 {
		t.Fatalf("priors[0] = %v, want 1.0", priors[0])
	}
}

func TestPriorsEmptyMoveList(t *testing.T) {
	pos := newTestPosition(t, 5, 0)
	weights, _ := LoadPolicyWeights(pos.Size)
	gd := tak.ComputeGroupData(pos)
	priors := Priors(pos, gd, nil, weights)
	if priors != nil {
		t.Fatalf("Priors(nil moves) = %v, want nil", priors)
	}
}

// flatCountDifferential must equal the actual signed change in
// (own flats - opponent flats) produced by placing a flat (spec 4.7, 8).
func TestFlatCountDifferentialMatchesActualDelta(t *testing.T) {
	pos := newTestPosition(t, 5, 0)
	playOpeningMoves(t, pos, []string{"a1", "e5"})

	moves := tak.GenerateMoves(pos, nil)
	mover := pos.SideToMove
	for _, m := range moves {
		if !m.IsPlacement() || m.PlaceRole() != tak.Flat {
			continue
		}
		wBefore, bBefore := flatCounts(pos)
		before := wBefore - bBefore

		clone := pos.Clone()
		clone.DoMove(m)
		wAfter, bAfter := flatCounts(clone)
		after := wAfter - bAfter

		want := after - before
		if mover == tak.Black {
			want = -want
		}
		got := flatCountDifferential(pos, m)
		if got != want {
			t.Fatalf("flatCountDifferential(%v) = %d, want %d", m, got, want)
		}
		// A lone flat placement onto an empty square always raises the
		// mover's own flat count by exactly one net of komi accounting.
		if want != 1 {
			t.Fatalf("placing a flat onto an empty square should move the differential by exactly 1, got %d", want)
		}
	}
}

func TestNumPolicyFeaturesIndependentOfSize(t *testing.T) {
	if NumPolicyFeatures(5) != NumPolicyFeatures(6) {
		t.Fatalf("NumPolicyFeatures should not depend on board size in this implementation")
	}
	if NumPolicyFeatures(5) != policyFeatureCount {
		t.Fatalf("NumPolicyFeatures(5) = %d, want %d", NumPolicyFeatures(5), policyFeatureCount)
	}
}
