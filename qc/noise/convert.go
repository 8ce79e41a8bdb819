package noise

import (
	"fmt"
	"math"
)

// vec stacks the columns of m (column-major) into a length-d^2 vector:
// vec[c*d+r] = m[r][c]. This fixes the Kraus<->Choi vec convention the
// distilled spec left ambiguous; see DESIGN.md.
func vec(m Matrix) []complex128 {
	d := m.dim()
	out := make([]complex128, d*d)
	for r := 0; r < d; r++ {
		for c := 0; c < d; c++ {
			out[c*d+r] = m[r][c]
		}
	}
	return out
}

// unvec is the inverse of vec: rebuilds a d x d matrix from a length-d^2
// column-major-stacked vector.
func unvec(v []complex128, d int) Matrix {
	m := newMatrix(d)
	for r := 0; r < d; r++ {
		for c := 0; c < d; c++ {
			m[r][c] = v[c*d+r]
		}
	}
	return m
}

// KrausToChoi builds the Choi matrix J(E) = sum_i vec(K_i) vec(K_i)^dagger.
func KrausToChoi(c Channel) Matrix {
	d2 := c.Dim * c.Dim
	choi := newMatrix(d2)
	for _, k := range c.Kraus {
		v := vec(k)
		for i := 0; i < d2; i++ {
			for j := 0; j < d2; j++ {
				choi[i][j] += v[i] * complex(real(v[j]), -imag(v[j]))
			}
		}
	}
	return choi
}

// ChoiToKraus decomposes a Choi matrix into Kraus operators via Hermitian
// eigendecomposition: J = sum_k lambda_k |v_k><v_k|, K_k = sqrt(lambda_k) unvec(v_k).
// Eigenvalues below tol (taken as numerical noise from a non-PSD input)
// are dropped.
func ChoiToKraus(choi Matrix, dim int, tol float64) (Channel, error) {
	if choi.dim() != dim*dim {
		return Channel{}, fmt.Errorf("noise: choi matrix dimension %d does not match dim^2=%d", choi.dim(), dim*dim)
	}
	eigvals, eigvecs, err := hermitianEigen(choi)
	if err != nil {
		return Channel{}, fmt.Errorf("noise: eigendecomposition: %w", err)
	}
	var kraus []Matrix
	for k, lambda := range eigvals {
		if lambda < tol {
			continue
		}
		scaleFactor := complex(math.Sqrt(lambda), 0)
		v := make([]complex128, len(eigvecs[k]))
		for i, x := range eigvecs[k] {
			v[i] = x * scaleFactor
		}
		kraus = append(kraus, unvec(v, dim))
	}
	if len(kraus) == 0 {
		kraus = []Matrix{newMatrix(dim)}
	}
	return Channel{Dim: dim, Kraus: kraus}, nil
}

// ChoiToSuperoperator reshuffles a d^2 x d^2 Choi matrix into the
// superoperator acting on vectorised density matrices: the index map
// (i,j,k,l) -> (i,k,j,l), where the Choi matrix is indexed by
// (row=i*d+k, col=j*d+l) and the superoperator by (row=i*d+j, col=k*d+l).
func ChoiToSuperoperator(choi Matrix, dim int) Matrix {
	d2 := dim * dim
	sup := newMatrix(d2)
	for i := 0; i < dim; i++ {
		for j := 0; j < dim; j++ {
			for k := 0; k < dim; k++ {
				for l := 0; l < dim; l++ {
					sup[i*dim+j][k*dim+l] = choi[i*dim+k][j*dim+l]
				}
			}
		}
	}
	return sup
}

// SuperoperatorToChoi is the inverse reshuffle of ChoiToSuperoperator.
func SuperoperatorToChoi(sup Matrix, dim int) Matrix {
	d2 := dim * dim
	choi := newMatrix(d2)
	for i := 0; i < dim; i++ {
		for j := 0; j < dim; j++ {
			for k := 0; k < dim; k++ {
				for l := 0; l < dim; l++ {
					choi[i*dim+k][j*dim+l] = sup[i*dim+j][k*dim+l]
				}
			}
		}
	}
	return choi
}
