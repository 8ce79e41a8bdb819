package postprocess

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// MitigateReadout applies a confusion-matrix inverse to a raw probability
// vector q (spec.md §4.7: "mitigated probability vector is M^-1 . q with
// negative entries clipped to 0 and renormalised"). confusion is the d x d
// SPAM confusion matrix from BuildConfusionMatrix/spam.go, d = len(q).
func MitigateReadout(confusion *mat.Dense, q []float64) ([]float64, error) {
	r, c := confusion.Dims()
	if r != c || r != len(q) {
		return nil, fmt.Errorf("postprocess: confusion matrix dims %dx%d do not match distribution length %d", r, c, len(q))
	}

	var inv mat.Dense
	if err := inv.Inverse(confusion); err != nil {
		return nil, fmt.Errorf("postprocess: confusion matrix not invertible: %w", err)
	}

	qVec := mat.NewVecDense(len(q), q)
	var mitigated mat.VecDense
	mitigated.MulVec(&inv, qVec)

	out := make([]float64, len(q))
	var sum float64
	for i := 0; i < len(q); i++ {
		v := mitigated.AtVec(i)
		if v < 0 {
			v = 0
		}
		out[i] = v
		sum += v
	}
	if sum > 0 {
		for i := range out {
			out[i] /= sum
		}
	}
	return out, nil
}
