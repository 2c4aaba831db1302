package mcts

import "testing"

func TestCPUCTIncreasesWithVisits(t *testing.T) {
	a := cpuct(0, DefaultCPUCTInit, DefaultCPUCTBase)
	b := cpuct(10000, DefaultCPUCTInit, DefaultCPUCTBase)
	if !(b > a) {
		t.Fatalf("cpuct(10000) = %v, want > cpuct(0) = %v", b, a)
	}
	if a < DefaultCPUCTInit {
		t.Fatalf("cpuct(0) = %v, want >= cpuct_init %v", a, DefaultCPUCTInit)
	}
}

func TestSelectChildPrefersHigherPrior(t *testing.T) {
	means := []float32{0, 0}
	visits := []uint32{0, 0}
	priors := []float32{0.1, 0.9}
	i := selectChild(means, visits, priors, 1, DefaultCPUCTInit, DefaultCPUCTBase, nil)
	if i != 1 {
		t.Fatalf("selectChild = %d, want 1 (higher prior, equal visits/value)", i)
	}
}

func TestSelectChildHonoursExclusion(t *testing.T) {
	means := []float32{0, 0}
	visits := []uint32{0, 0}
	priors := []float32{0.1, 0.9}
	i := selectChild(means, visits, priors, 1, DefaultCPUCTInit, DefaultCPUCTBase, map[int]bool{1: true})
	if i != 0 {
		t.Fatalf("selectChild with child 1 excluded = %d, want 0", i)
	}
}

func TestSelectChildPrefersHigherValueAtEqualPrior(t *testing.T) {
	means := []float32{0.2, 0.8}
	visits := []uint32{5, 5}
	priors := []float32{0.5, 0.5}
	i := selectChild(means, visits, priors, 10, DefaultCPUCTInit, DefaultCPUCTBase, nil)
	// Lower Q (mean action value, this node's perspective) means (1-Q) is
	// larger, so the child with the lower recorded mean action value
	// scores higher exploitation-wise here; this simply pins down that
	// puctScore is monotonically decreasing in q.
	if i != 0 {
		t.Fatalf("selectChild = %d, want 0 (lower q => higher (1-q) term)", i)
	}
}

func TestSelectChildAllExcludedReturnsNegativeOne(t *testing.T) {
	means := []float32{0, 0}
	visits := []uint32{0, 0}
	priors := []float32{0.5, 0.5}
	i := selectChild(means, visits, priors, 1, DefaultCPUCTInit, DefaultCPUCTBase, map[int]bool{0: true, 1: true})
	if i != -1 {
		t.Fatalf("selectChild with everything excluded = %d, want -1", i)
	}
}
