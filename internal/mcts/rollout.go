package mcts

import (
	"math"
	"math/rand"

	"github.com/taklab/tiltak-go/internal/eval"
	"github.com/taklab/tiltak-go/internal/tak"
)

// Weights bundles the value/policy parameter vectors for one (size,
// komi) pair, loaded once per search (spec 5: "the static parameter
// tables... are read-only and process-wide").
type Weights struct {
	Value  []float32
	Policy []float32
}

// LoadWeights loads the committed value and policy parameter sets for
// the given board size and half-komi.
func LoadWeights(size, komi int) (*Weights, error) {
	v, err := eval.LoadValueWeights(size, komi)
	if err != nil {
		return nil, err
	}
	p, err := eval.LoadPolicyWeights(size)
	if err != nil {
		return nil, err
	}
	return &Weights{Value: v, Policy: p}, nil
}

// staticValue evaluates pos from its side-to-move's perspective via the
// linear value evaluator (spec 4.9: "return sigmoid(value_eval/400) from
// the side-to-move's perspective").
func staticValue(pos *tak.Position, w *Weights) float64 {
	gd := tak.ComputeGroupData(pos)
	raw := eval.Value(pos, gd, w.Value)
	if pos.SideToMove == tak.Black {
		raw = -raw
	}
	return float64(eval.Sigmoid(raw))
}

// leafValue produces the value used to create a freshly-reached leaf
// node: pure static evaluation at rollout depth 0 (the default), or a
// policy-sampled random playout of the configured depth otherwise (spec
// 4.9: "run a rollout of configurable depth... At depth > 0, generate
// moves with policy priors, sample one with a configurable
// temperature, recurse to depth-1").
func leafValue(pos *tak.Position, w *Weights, depth int, temperature float64, rng *rand.Rand) float64 {
	if depth <= 0 {
		return staticValue(pos, w)
	}
	gd := tak.ComputeGroupData(pos)
	result := tak.EvaluateResult(pos, gd)
	if result.IsOver() {
		return terminalValue(result, pos.SideToMove)
	}
	moves := tak.GenerateMoves(pos, nil)
	if len(moves) == 0 {
		return staticValue(pos, w)
	}
	priors := eval.Priors(pos, gd, moves, w.Policy)
	i := sampleMoveIndex(rng, priors, temperature)

	child := pos.Clone()
	child.DoMove(moves[i])
	// The child is one ply further, so the value it returns is from its
	// own (opposite) side-to-move's perspective; flip it back.
	return 1 - leafValue(child, w, depth-1, temperature, rng)
}

// sampleMoveIndex samples an index from priors raised to 1/temperature
// and renormalised. temperature <= 0 behaves as a hard argmax.
func sampleMoveIndex(rng *rand.Rand, priors []float32, temperature float64) int {
	if temperature <= 0 {
		best := 0
		for i := 1; i < len(priors); i++ {
			if priors[i] > priors[best] {
				best = i
			}
		}
		return best
	}
	weights := make([]float64, len(priors))
	var sum float64
	for i, p := range priors {
		v := math.Pow(float64(p), 1/temperature)
		weights[i] = v
		sum += v
	}
	if sum <= 0 {
		return rng.Intn(len(priors))
	}
	r := rng.Float64() * sum
	var acc float64
	for i, w := range weights {
		acc += w
		if r <= acc {
			return i
		}
	}
	return len(priors) - 1
}
