package noise

import "sync"

// pauliBasisCache memoises the per-n Pauli change-of-basis matrix T
// (columns are vec(P_k) for the n-qubit Pauli strings), since building
// it involves a 4^n-way Kronecker expansion that's worth sharing across
// calls — "constructed once per n and cached" per the noise model's
// design note.
var pauliBasisCache sync.Map // n (int) -> Matrix

var singleQubitPaulis = [4]Matrix{
	{{1, 0}, {0, 1}},                    // I
	{{0, 1}, {1, 0}},                    // X
	{{0, -1i}, {1i, 0}},                 // Y
	{{1, 0}, {0, -1}},                   // Z
}

func kron(a, b Matrix) Matrix {
	ra, ca := a.dim(), a.dim()
	rb, cb := b.dim(), b.dim()
	out := newMatrix(ra * rb)
	for i := 0; i < ra; i++ {
		for j := 0; j < ca; j++ {
			for k := 0; k < rb; k++ {
				for l := 0; l < cb; l++ {
					out[i*rb+k][j*cb+l] = a[i][j] * b[k][l]
				}
			}
		}
	}
	return out
}

// nQubitPaulis returns the 4^n n-qubit Pauli strings, in lexicographic
// order of their single-qubit-Pauli-index digits (most significant
// qubit first).
func nQubitPaulis(n int) []Matrix {
	paulis := []Matrix{singleQubitPaulis[0], singleQubitPaulis[1], singleQubitPaulis[2], singleQubitPaulis[3]}
	if n == 1 {
		return paulis
	}
	prev := nQubitPaulis(n - 1)
	out := make([]Matrix, 0, len(prev)*4)
	for _, p := range prev {
		for _, q := range paulis {
			out = append(out, kron(p, q))
		}
	}
	return out
}

// pauliBasisMatrix returns the cached d^2 x d^2 matrix T whose k-th
// column is vec(P_k) for the n-qubit Pauli string P_k, where d=2^n.
func pauliBasisMatrix(n int) Matrix {
	if cached, ok := pauliBasisCache.Load(n); ok {
		return cached.(Matrix)
	}
	d := 1 << n
	d2 := d * d
	paulis := nQubitPaulis(n)
	t := newMatrix(d2)
	for k, p := range paulis {
		col := vec(p)
		for row := 0; row < d2; row++ {
			t[row][k] = col[row]
		}
	}
	pauliBasisCache.Store(n, t)
	return t
}

// ProcessToChoi converts an n-qubit process (chi) matrix to its Choi
// representation: Choi = T * chi * T^dagger.
func ProcessToChoi(chi Matrix, n int) Matrix {
	t := pauliBasisMatrix(n)
	return matMul(matMul(t, chi), dagger(t))
}

// ChoiToProcess is the inverse of ProcessToChoi: chi = (1/d^2) T^dagger * Choi * T,
// using the Pauli strings' Hilbert-Schmidt orthogonality (T^dagger T = d*I).
func ChoiToProcess(choi Matrix, n int) Matrix {
	t := pauliBasisMatrix(n)
	d := float64(int(1) << n)
	raw := matMul(matMul(dagger(t), choi), t)
	return scale(raw, complex(1/(d*d), 0))
}
