package mcts

import (
	"math"
	"math/rand"
)

// DefaultDirichletAlpha and DefaultDirichletWeight are the self-play
// root-noise defaults (spec 4.9: "alpha default ~0.25... mixed in... with
// weight 0.25"). Match play disables noise by passing weight 0.
const (
	DefaultDirichletAlpha  = 0.25
	DefaultDirichletWeight = 0.25
)

// sampleGamma draws a Gamma(shape, 1) sample via the Marsaglia-Tsang
// method, the standard rejection-sampling construction used where no
// distribution library is available (the example pack carries none).
func sampleGamma(rng *rand.Rand, shape float64) float64 {
	if shape < 1 {
		u := rng.Float64()
		return sampleGamma(rng, shape+1) * math.Pow(u, 1/shape)
	}
	d := shape - 1.0/3.0
	c := 1 / math.Sqrt(9*d)
	for {
		var x, v float64
		for {
			x = rng.NormFloat64()
			v = 1 + c*x
			if v > 0 {
				break
			}
		}
		v = v * v * v
		u := rng.Float64()
		if u < 1-0.0331*x*x*x*x {
			return d * v
		}
		if math.Log(u) < 0.5*x*x+d*(1-v+math.Log(v)) {
			return d * v
		}
	}
}

// sampleDirichlet draws one sample from Dirichlet(alpha, ..., alpha) of
// dimension n, via n independent Gamma(alpha,1) draws normalised to sum
// to 1.
func sampleDirichlet(rng *rand.Rand, n int, alpha float64) []float64 {
	if n == 0 {
		return nil
	}
	out := make([]float64, n)
	var sum float64
	for i := range out {
		g := sampleGamma(rng, alpha)
		out[i] = g
		sum += g
	}
	if sum <= 0 {
		uniform := 1.0 / float64(n)
		for i := range out {
			out[i] = uniform
		}
		return out
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

// mixDirichletNoise mixes Dirichlet(alpha) noise into priors in place
// with the given weight (spec 4.9). weight <= 0 is a no-op (match play).
func mixDirichletNoise(rng *rand.Rand, priors []float32, alpha, weight float64) {
	if weight <= 0 || len(priors) == 0 {
		return
	}
	noise := sampleDirichlet(rng, len(priors), alpha)
	for i := range priors {
		priors[i] = float32((1-weight)*float64(priors[i]) + weight*noise[i])
	}
}
