package eval

import (
	"math"

	"github.com/taklab/tiltak-go/internal/tak"
)

// Value computes a centipawn-style score for pos from White's
// perspective (spec 4.6): features are built separately for each
// colour and the score is the White dot product minus the Black one,
// against a single shared, colour-symmetric weight vector.
func Value(pos *tak.Position, gd *tak.GroupData, weights []float32) float32 {
	white := BuildFeatures(pos, gd, tak.White)
	black := BuildFeatures(pos, gd, tak.Black)
	var score float32
	n := len(weights)
	if len(white) < n {
		n = len(white)
	}
	for i := 0; i < n; i++ {
		score += weights[i] * (white[i] - black[i])
	}
	return score
}

// Sigmoid maps a centipawn-style value to a [0,1] win probability from
// the side-to-move's perspective (spec 4.9: "sigmoid(value_eval/400)").
func Sigmoid(value float32) float32 {
	return float32(1 / (1 + math.Exp(float64(-value/400))))
}
