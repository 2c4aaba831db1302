package mcts

import "math"

// Default PUCT constants (spec 4.9).
const (
	DefaultCPUCTInit = 1.2
	DefaultCPUCTBase = 3500.0
)

// cpuct returns the dynamic exploration constant for a node with N total
// visits (spec 4.9): cpuct = cpuct_init + ln((1+N+cpuct_base)/cpuct_base).
func cpuct(n uint32, cpuctInit, cpuctBase float64) float64 {
	return cpuctInit + math.Log((1+float64(n)+cpuctBase)/cpuctBase)
}

// puctScore is the exploration score for a child with prior p, visits n
// and mean action value q (from the side-to-move's view at the parent),
// under parent visits parentN (spec 4.9):
//
//	score = (1 - Q) + cpuct * P * sqrt(N) / (1 + n)
func puctScore(q float64, p float32, n uint32, parentN uint32, c float64) float64 {
	return (1 - q) + c*float64(p)*math.Sqrt(float64(parentN))/(1+float64(n))
}

// selectChild returns the index, within a node's Bridge arrays, of the
// child with the highest PUCT score. excluded, if non-nil, blacklists
// move indices (spec 4.9: "Excluded moves at the root... effectively
// blacklisting them"). Returns -1 if every child is excluded.
func selectChild(means []float32, visits []uint32, priors []float32, parentN uint32, cpuctInit, cpuctBase float64, excluded map[int]bool) int {
	c := cpuct(parentN, cpuctInit, cpuctBase)
	best := -1
	bestScore := math.Inf(-1)
	for i := range means {
		if excluded != nil && excluded[i] {
			continue
		}
		q := float64(means[i])
		s := puctScore(q, priors[i], visits[i], parentN, c)
		if s > bestScore {
			bestScore = s
			best = i
		}
	}
	return best
}
