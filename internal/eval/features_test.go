package eval

import (
	"testing"

	"github.com/taklab/tiltak-go/internal/tak"
)

func TestRingBucketsCornerEdgeCenter(t *testing.T) {
	const size = 5
	if r := ring(0, size); r != 0 { // a5 corner
		t.Fatalf("ring(corner) = %d, want 0", r)
	}
	if r := ring(2, size); r != 0 { // c5, an edge square two steps from the corner
		t.Fatalf("ring(edge) = %d, want 0", r)
	}
	center := 2*size + 2 // c3, board centre on 5x5
	if r := ring(center, size); r != numRings-1 {
		t.Fatalf("ring(centre) = %d, want %d", r, numRings-1)
	}
}

func TestPhaseWeightsSumToOne(t *testing.T) {
	pos := newTestPosition(t, 5, 0)
	op, mid, end := phaseWeights(pos)
	sum := op + mid + end
	if sum < 0.999 || sum > 1.001 {
		t.Fatalf("phase weights sum to %v, want ~1", sum)
	}
	if op != 1 || mid != 0 || end != 0 {
		t.Fatalf("fresh position should be pure opening phase, got (%v, %v, %v)", op, mid, end)
	}
}

func TestNumValueFeaturesMatchesBuildFeaturesLength(t *testing.T) {
	pos := newTestPosition(t, 5, 0)
	gd := tak.ComputeGroupData(pos)
	f := BuildFeatures(pos, gd, tak.White)
	if len(f) != NumValueFeatures(pos.Size) {
		t.Fatalf("len(BuildFeatures) = %d, want %d", len(f), NumValueFeatures(pos.Size))
	}
}

func TestLeadBucketOrdering(t *testing.T) {
	prev := -1
	for _, lead := range []int{-5, -3, -1, 0, 1, 2, 4} {
		b := leadBucket(lead)
		if b < prev {
			t.Fatalf("leadBucket(%d) = %d, not monotonic after previous bucket %d", lead, b, prev)
		}
		prev = b
	}
	if leadBucket(0) != 2 {
		t.Fatalf("leadBucket(0) = %d, want the middle bucket 2", leadBucket(0))
	}
}
