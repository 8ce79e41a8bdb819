package postprocess

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// FoldingLevels are the gate-folding noise-scale factors Richardson
// extrapolation samples at, per spec.md §4.7.
var FoldingLevels = []int{1, 3, 5}

// RichardsonExtrapolate fits a degree-th order polynomial through
// (level, value) pairs — one <Z> measurement taken at each gate-folding
// level — and returns the fitted value at noise scale 0 (the zero-noise
// limit). len(levels) must be > degree.
func RichardsonExtrapolate(levels []int, values []float64, degree int) (float64, error) {
	if len(levels) != len(values) {
		return 0, fmt.Errorf("postprocess: levels and values length mismatch (%d vs %d)", len(levels), len(values))
	}
	if len(levels) <= degree {
		return 0, fmt.Errorf("postprocess: need more than %d samples to fit a degree-%d polynomial, got %d", degree, degree, len(levels))
	}

	n := len(levels)
	vander := mat.NewDense(n, degree+1, nil)
	for i, l := range levels {
		x := 1.0
		for j := 0; j <= degree; j++ {
			vander.Set(i, j, x)
			x *= float64(l)
		}
	}
	y := mat.NewDense(n, 1, append([]float64(nil), values...))

	var coeffs mat.Dense
	if err := coeffs.Solve(vander, y); err != nil {
		return 0, fmt.Errorf("postprocess: polynomial fit failed: %w", err)
	}

	// Evaluate the fitted polynomial at noise scale 0: only the constant
	// (intercept) term survives.
	return coeffs.At(0, 0), nil
}
