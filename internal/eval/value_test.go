package eval

import (
	"math"
	"testing"

	"github.com/taklab/tiltak-go/internal/tak"
)

func newTestPosition(t *testing.T, size, komi int) *tak.Position {
	t.Helper()
	pos, err := tak.NewPosition(size, komi)
	if err != nil {
		t.Fatalf("NewPosition: %v", err)
	}
	return pos
}

func playOpeningMoves(t *testing.T, pos *tak.Position, moves []string) {
	t.Helper()
	for _, s := range moves {
		m, err := tak.ParsePTN(s, pos.Size)
		if err != nil {
			t.Fatalf("ParsePTN(%q): %v", s, err)
		}
		pos.DoMove(m)
	}
}

// Value must be antisymmetric under a colour flip (spec 8):
// static_eval(flip_colors(P)) == -static_eval(P).
func TestValueAntisymmetricUnderColorFlip(t *testing.T) {
	pos := newTestPosition(t, 5, 0)
	playOpeningMoves(t, pos, []string{"a1", "e5", "c3", "Sc2", "Cb3"})

	weights, err := LoadValueWeights(pos.Size, pos.Komi)
	if err != nil {
		t.Fatalf("LoadValueWeights: %v", err)
	}

	gd := tak.ComputeGroupData(pos)
	v := Value(pos, gd, weights)

	flipped := tak.FlipColors(pos)
	fgd := tak.ComputeGroupData(flipped)
	fv := Value(flipped, fgd, weights)

	if math.Abs(float64(v+fv)) > 1e-3 {
		t.Fatalf("value not antisymmetric: Value(P)=%v Value(flip(P))=%v, want sum ~0", v, fv)
	}
}

// Same antisymmetry property, but with a nonzero komi (spec 6/9: komi=4
// is the other committed parameter set), exercising FlipColors' komi
// negation — invisible at komi=0, where the komi term vanishes.
func TestValueAntisymmetricUnderColorFlipKomi4(t *testing.T) {
	pos := newTestPosition(t, 5, 4)
	playOpeningMoves(t, pos, []string{"a1", "e5", "c3", "Sc2", "Cb3"})

	weights, err := LoadValueWeights(pos.Size, pos.Komi)
	if err != nil {
		t.Fatalf("LoadValueWeights: %v", err)
	}

	gd := tak.ComputeGroupData(pos)
	v := Value(pos, gd, weights)

	flipped := tak.FlipColors(pos)
	fgd := tak.ComputeGroupData(flipped)
	fv := Value(flipped, fgd, weights)

	if math.Abs(float64(v+fv)) > 1e-3 {
		t.Fatalf("value not antisymmetric at komi=4: Value(P)=%v Value(flip(P))=%v, want sum ~0", v, fv)
	}
}

func TestValueStartingPositionIsZero(t *testing.T) {
	pos := newTestPosition(t, 5, 0)
	weights, err := LoadValueWeights(pos.Size, pos.Komi)
	if err != nil {
		t.Fatalf("LoadValueWeights: %v", err)
	}
	gd := tak.ComputeGroupData(pos)
	v := Value(pos, gd, weights)
	if v != 0 {
		t.Fatalf("empty-board value = %v, want 0 (both colours' features are identically zero)", v)
	}
}

func TestSigmoidMonotonicAndBounded(t *testing.T) {
	prev := float32(-1)
	for _, v := range []float32{-800, -400, -100, 0, 100, 400, 800} {
		s := Sigmoid(v)
		if s < 0 || s > 1 {
			t.Fatalf("Sigmoid(%v) = %v, out of [0,1]", v, s)
		}
		if s <= prev {
			t.Fatalf("Sigmoid not monotonic at %v: got %v after %v", v, s, prev)
		}
		prev = s
	}
	if s := Sigmoid(0); math.Abs(float64(s-0.5)) > 1e-6 {
		t.Fatalf("Sigmoid(0) = %v, want 0.5", s)
	}
}

func TestLoadValueWeightsRejectsUnsupportedKomi(t *testing.T) {
	if _, err := LoadValueWeights(5, 1); err != ErrUnsupportedKomi {
		t.Fatalf("LoadValueWeights(5, 1) error = %v, want ErrUnsupportedKomi", err)
	}
}

func TestLoadWeightsDeterministic(t *testing.T) {
	a, err := LoadValueWeights(5, 0)
	if err != nil {
		t.Fatalf("LoadValueWeights: %v", err)
	}
	b, err := LoadValueWeights(5, 0)
	if err != nil {
		t.Fatalf("LoadValueWeights: %v", err)
	}
	if len(a) != len(b) {
		t.Fatalf("length mismatch: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("non-deterministic weight at %d: %v vs %v", i, a[i], b[i])
		}
		if math.IsNaN(float64(a[i])) || math.IsInf(float64(a[i]), 0) {
			t.Fatalf("weight at %d is not finite: %v", i, a[i])
		}
	}
}
