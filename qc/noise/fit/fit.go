// Package fit implements a Levenberg-Marquardt least-squares solver used
// to extract per-qubit noise-channel parameters (damping/dephasing
// rates) from a measured process matrix: given a parametric channel
// model and a target matrix from process tomography, find the
// parameters whose predicted matrix best matches what was measured.
package fit

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Model maps a parameter vector to a predicted residual-comparable
// vector (e.g. the flattened real/imag entries of a predicted process
// matrix) of the same length as the fit target.
type Model func(params []float64) []float64

// Options configures the solver's stopping criteria and damping.
type Options struct {
	MaxIterations int
	XTol          float64 // relative parameter-step tolerance
	FTol          float64 // relative cost-reduction tolerance
	GTol          float64 // gradient-norm tolerance
	InitialLambda float64
}

// DefaultOptions returns the default tolerances and iteration cap with
// an initial damping factor of 1e-2. Solve runs a single pass, dividing
// the damping factor by 10 after each accepted step and multiplying it
// by 10 after each rejected one.
func DefaultOptions() Options {
	return Options{
		MaxIterations: 200,
		XTol:          1e-10,
		FTol:          1e-10,
		GTol:          1e-10,
		InitialLambda: 1e-2,
	}
}

// Result is the solver's outcome.
type Result struct {
	Params     []float64
	Iterations int
	Cost       float64 // 0.5 * sum(residual^2)
	Converged  bool
}

// Solve runs Levenberg-Marquardt (Gauss-Newton normal equations with the
// diagonal of J^T J scaled by (1+lambda), numeric Jacobian via central
// finite differences) to fit model against target starting from initial.
func Solve(model Model, target, initial []float64, opts Options) (Result, error) {
	n := len(initial)
	m := len(target)
	if m == 0 || n == 0 {
		return Result{}, fmt.Errorf("qc/noise/fit: empty target or parameter vector")
	}

	params := append([]float64(nil), initial...)
	lambda := opts.InitialLambda
	if lambda <= 0 {
		lambda = 1e-2
	}

	residual := func(p []float64) []float64 {
		pred := model(p)
		r := make([]float64, m)
		for i := range r {
			r[i] = pred[i] - target[i]
		}
		return r
	}
	cost := func(r []float64) float64 {
		var s float64
		for _, v := range r {
			s += v * v
		}
		return 0.5 * s
	}

	r := residual(params)
	c := cost(r)

	for iter := 0; iter < opts.MaxIterations; iter++ {
		j := jacobian(model, params, m)

		jt := mat.DenseCopyOf(j.T())
		jtj := mat.NewDense(n, n, nil)
		jtj.Mul(jt, j)

		jtr := mat.NewVecDense(n, nil)
		rVec := mat.NewVecDense(m, r)
		jtr.MulVec(jt, rVec)

		var gradNorm float64
		for i := 0; i < n; i++ {
			gradNorm += jtr.AtVec(i) * jtr.AtVec(i)
		}
		if math.Sqrt(gradNorm) < opts.GTol {
			return Result{Params: params, Iterations: iter, Cost: c, Converged: true}, nil
		}

		damped := mat.NewDense(n, n, nil)
		damped.Copy(jtj)
		for i := 0; i < n; i++ {
			damped.Set(i, i, damped.At(i, i)*(1+lambda))
		}

		var delta mat.VecDense
		if err := delta.SolveVec(damped, jtr); err != nil {
			lambda *= 10
			continue
		}

		candidate := make([]float64, n)
		var step float64
		for i := range candidate {
			d := delta.AtVec(i)
			candidate[i] = params[i] - d
			step += d * d
		}

		newR := residual(candidate)
		newC := cost(newR)

		if newC < c {
			improvement := (c - newC) / math.Max(c, 1e-300)
			params, r, c = candidate, newR, newC
			lambda = math.Max(lambda/10, 1e-12)
			if improvement < opts.FTol || math.Sqrt(step) < opts.XTol {
				return Result{Params: params, Iterations: iter + 1, Cost: c, Converged: true}, nil
			}
		} else {
			lambda *= 10
			if lambda > 1e12 {
				return Result{Params: params, Iterations: iter + 1, Cost: c, Converged: false}, nil
			}
		}
	}
	return Result{Params: params, Iterations: opts.MaxIterations, Cost: c, Converged: false}, nil
}

// jacobian computes the m x n numeric Jacobian of model's residual
// contribution via central finite differences.
func jacobian(model Model, params []float64, m int) *mat.Dense {
	n := len(params)
	j := mat.NewDense(m, n, nil)
	const h = 1e-6
	for col := 0; col < n; col++ {
		plus := append([]float64(nil), params...)
		minus := append([]float64(nil), params...)
		plus[col] += h
		minus[col] -= h
		fp := model(plus)
		fm := model(minus)
		for row := 0; row < m; row++ {
			j.Set(row, col, (fp[row]-fm[row])/(2*h))
		}
	}
	return j
}
