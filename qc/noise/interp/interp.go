// Package interp fits and evaluates per-parameter noise interpolators:
// given a handful of (angle, measured-rate) samples from characterising
// a gate at different rotation angles, predict the rate at an
// unmeasured angle so the pass pipeline can attach a noise channel to
// any gate instance, not just the ones that were actually benchmarked.
package interp

import (
	"fmt"
	"math"
	"sort"

	"github.com/kegliz/qplay/qc/sdkerr"
	"gonum.org/v1/gonum/mat"
)

// Sample is one measured (x, y) pair, e.g. (rotation angle, damping rate).
type Sample struct {
	X, Y float64
}

// Model predicts y at an arbitrary x from a fitted sample set.
type Model interface {
	// Predict returns the interpolated/extrapolated value at x. err is
	// a *sdkerr.SDKError of kind NumericWarning (not a hard failure)
	// when x falls outside the convex hull of the fitted samples.
	Predict(x float64) (y float64, err error)
}

func sortedX(samples []Sample) []Sample {
	out := append([]Sample(nil), samples...)
	sort.Slice(out, func(i, j int) bool { return out[i].X < out[j].X })
	return out
}

func hullWarning(x float64, samples []Sample) error {
	if len(samples) == 0 {
		return nil
	}
	lo, hi := samples[0].X, samples[len(samples)-1].X
	if x < lo || x > hi {
		return sdkerr.Newf(sdkerr.NumericWarning, "qc/noise/interp",
			"x=%g is outside the fitted convex hull [%g, %g]; extrapolating", x, lo, hi)
	}
	return nil
}

// average ----------------------------------------------------------------

type averageModel struct {
	mean    float64
	samples []Sample
}

// Average returns a model that predicts the sample mean for any x
// (the cheapest possible interpolator, used when only one sample angle
// was ever characterised); x outside the samples' range is flagged via
// NumericWarning.
func Average(samples []Sample) Model {
	var sum float64
	for _, s := range samples {
		sum += s.Y
	}
	mean := 0.0
	if len(samples) > 0 {
		mean = sum / float64(len(samples))
	}
	return &averageModel{mean: mean, samples: sortedX(samples)}
}

func (m *averageModel) Predict(x float64) (float64, error) { return m.mean, hullWarning(x, m.samples) }

// linear -------------------------------------------------------------------

type linearModel struct{ samples []Sample }

// Linear returns a piecewise-linear interpolator over the sorted
// samples, extrapolating via the nearest edge segment's slope outside
// the hull (flagged via NumericWarning).
func Linear(samples []Sample) Model {
	return &linearModel{samples: sortedX(samples)}
}

func (m *linearModel) Predict(x float64) (float64, error) {
	s := m.samples
	if len(s) == 0 {
		return 0, fmt.Errorf("qc/noise/interp: no samples")
	}
	if len(s) == 1 {
		return s[0].Y, hullWarning(x, s)
	}
	warn := hullWarning(x, s)

	// find bracketing segment (or nearest edge segment if extrapolating)
	i := sort.Search(len(s), func(i int) bool { return s[i].X >= x })
	if i == 0 {
		i = 1
	}
	if i >= len(s) {
		i = len(s) - 1
	}
	x0, y0 := s[i-1].X, s[i-1].Y
	x1, y1 := s[i].X, s[i].Y
	if x1 == x0 {
		return y0, warn
	}
	t := (x - x0) / (x1 - x0)
	return y0 + t*(y1-y0), warn
}

// polynomial -----------------------------------------------------------------

type polyModel struct {
	coeffs []float64 // ascending power order
	lo, hi float64
}

// Polynomial fits a degree-d least-squares polynomial through samples
// using a Vandermonde design matrix solved via gonum's QR solver.
func Polynomial(samples []Sample, degree int) (Model, error) {
	n := len(samples)
	if n == 0 {
		return nil, fmt.Errorf("qc/noise/interp: no samples")
	}
	if degree >= n {
		degree = n - 1
	}
	s := sortedX(samples)

	a := mat.NewDense(n, degree+1, nil)
	b := mat.NewVecDense(n, nil)
	for i, sample := range s {
		x := 1.0
		for k := 0; k <= degree; k++ {
			a.Set(i, k, x)
			x *= sample.X
		}
		b.SetVec(i, sample.Y)
	}

	var qr mat.QR
	qr.Factorize(a)
	var x mat.VecDense
	if err := qr.SolveVecTo(&x, false, b); err != nil {
		return nil, fmt.Errorf("qc/noise/interp: polynomial fit: %w", err)
	}

	coeffs := make([]float64, degree+1)
	for i := range coeffs {
		coeffs[i] = x.AtVec(i)
	}
	return &polyModel{coeffs: coeffs, lo: s[0].X, hi: s[len(s)-1].X}, nil
}

func (m *polyModel) Predict(x float64) (float64, error) {
	var warn error
	if x < m.lo || x > m.hi {
		warn = sdkerr.Newf(sdkerr.NumericWarning, "qc/noise/interp",
			"x=%g is outside the fitted convex hull [%g, %g]; extrapolating", x, m.lo, m.hi)
	}
	y, xp := 0.0, 1.0
	for _, c := range m.coeffs {
		y += c * xp
		xp *= x
	}
	return y, warn
}

// exponential ----------------------------------------------------------------

type expModel struct {
	a, k, lo, hi float64
}

// Exponential fits y = a*exp(k*x) via a log-linear least-squares pass
// (requires strictly positive y samples).
func Exponential(samples []Sample) (Model, error) {
	s := sortedX(samples)
	n := len(s)
	if n < 2 {
		return nil, fmt.Errorf("qc/noise/interp: exponential fit needs >=2 samples")
	}
	logSamples := make([]Sample, n)
	for i, smp := range s {
		if smp.Y <= 0 {
			return nil, fmt.Errorf("qc/noise/interp: exponential fit requires y>0, got %g", smp.Y)
		}
		logSamples[i] = Sample{X: smp.X, Y: math.Log(smp.Y)}
	}
	lin, err := Polynomial(logSamples, 1)
	if err != nil {
		return nil, err
	}
	pm := lin.(*polyModel)
	k := 0.0
	if len(pm.coeffs) > 1 {
		k = pm.coeffs[1]
	}
	a := math.Exp(pm.coeffs[0])
	return &expModel{a: a, k: k, lo: s[0].X, hi: s[n-1].X}, nil
}

func (m *expModel) Predict(x float64) (float64, error) {
	var warn error
	if x < m.lo || x > m.hi {
		warn = sdkerr.Newf(sdkerr.NumericWarning, "qc/noise/interp",
			"x=%g is outside the fitted convex hull [%g, %g]; extrapolating", x, m.lo, m.hi)
	}
	return m.a * math.Exp(m.k*x), warn
}
