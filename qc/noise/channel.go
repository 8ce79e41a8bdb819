// Package noise implements the channel algebra for n-qubit quantum
// noise processes: Kraus operators, the Choi matrix, the superoperator,
// and the process (chi) matrix, plus conversions between them and a
// small library of channel factories (amplitude/phase damping,
// depolarizing, generalized amplitude damping, custom Kraus sets).
//
// Every representation is a dense complex matrix of dimension d=2^n;
// this package targets the 1- and 2-qubit channels the pass pipeline
// and backend registry attach to gates, not arbitrary n.
package noise

import "fmt"

// Matrix is a dense complex matrix stored row-major: Matrix[row][col].
type Matrix [][]complex128

// Channel is a completely-positive trace-preserving map represented as
// a set of Kraus operators, each a d x d Matrix with sum K_i^dagger K_i = I.
type Channel struct {
	Dim   int // d = 2^n
	Kraus []Matrix
}

func newMatrix(d int) Matrix {
	m := make(Matrix, d)
	for i := range m {
		m[i] = make([]complex128, d)
	}
	return m
}

func identity(d int) Matrix {
	m := newMatrix(d)
	for i := 0; i < d; i++ {
		m[i][i] = 1
	}
	return m
}

func (m Matrix) dim() int { return len(m) }

func matMul(a, b Matrix) Matrix {
	n := a.dim()
	out := newMatrix(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			var s complex128
			for k := 0; k < n; k++ {
				s += a[i][k] * b[k][j]
			}
			out[i][j] = s
		}
	}
	return out
}

func dagger(a Matrix) Matrix {
	n := a.dim()
	out := newMatrix(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			out[j][i] = complex(real(a[i][j]), -imag(a[i][j]))
		}
	}
	return out
}

func scale(a Matrix, s complex128) Matrix {
	n := a.dim()
	out := newMatrix(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			out[i][j] = a[i][j] * s
		}
	}
	return out
}

func add(a, b Matrix) Matrix {
	n := a.dim()
	out := newMatrix(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			out[i][j] = a[i][j] + b[i][j]
		}
	}
	return out
}

// Validate checks that the Kraus set satisfies the completeness
// relation sum K^dagger K = I within tol.
func (c Channel) Validate(tol float64) error {
	if len(c.Kraus) == 0 {
		return fmt.Errorf("noise: channel has no Kraus operators")
	}
	sum := newMatrix(c.Dim)
	for _, k := range c.Kraus {
		if k.dim() != c.Dim {
			return fmt.Errorf("noise: Kraus operator dimension mismatch: got %d want %d", k.dim(), c.Dim)
		}
		sum = add(sum, matMul(dagger(k), k))
	}
	for i := 0; i < c.Dim; i++ {
		for j := 0; j < c.Dim; j++ {
			want := complex(0, 0)
			if i == j {
				want = 1
			}
			d := sum[i][j] - want
			if real(d)*real(d)+imag(d)*imag(d) > tol*tol {
				return fmt.Errorf("noise: Kraus completeness relation violated at (%d,%d): got %v", i, j, sum[i][j])
			}
		}
	}
	return nil
}

// Identity returns the noiseless (identity) channel on n qubits.
func Identity(n int) Channel {
	d := 1 << n
	return Channel{Dim: d, Kraus: []Matrix{identity(d)}}
}
