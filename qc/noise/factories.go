package noise

import "math"

// AmplitudeDamping returns the single-qubit amplitude-damping channel
// with decay probability gamma (energy relaxation, T1).
func AmplitudeDamping(gamma float64) Channel {
	k0 := Matrix{{1, 0}, {0, complex(math.Sqrt(1-gamma), 0)}}
	k1 := Matrix{{0, complex(math.Sqrt(gamma), 0)}, {0, 0}}
	return Channel{Dim: 2, Kraus: []Matrix{k0, k1}}
}

// PhaseDamping returns the single-qubit pure-dephasing channel with
// dephasing probability lambda (T2-type decoherence, no energy loss).
func PhaseDamping(lambda float64) Channel {
	k0 := Matrix{{1, 0}, {0, complex(math.Sqrt(1-lambda), 0)}}
	k1 := Matrix{{0, 0}, {0, complex(math.Sqrt(lambda), 0)}}
	return Channel{Dim: 2, Kraus: []Matrix{k0, k1}}
}

// GeneralizedAmplitudeDamping models amplitude damping towards a
// thermal state parameterised by excitation probability p, at rate
// gamma (the "generalized" extension of AmplitudeDamping to T!=0 baths).
func GeneralizedAmplitudeDamping(gamma, p float64) Channel {
	sg := math.Sqrt(gamma)
	s1mg := math.Sqrt(1 - gamma)
	sp := math.Sqrt(p)
	s1mp := math.Sqrt(1 - p)

	k0 := Matrix{{complex(sp, 0), 0}, {0, complex(sp*s1mg, 0)}}
	k1 := Matrix{{0, complex(sp*sg, 0)}, {0, 0}}
	k2 := Matrix{{complex(s1mp*s1mg, 0), 0}, {0, complex(s1mp, 0)}}
	k3 := Matrix{{0, 0}, {complex(s1mp*sg, 0), 0}}
	return Channel{Dim: 2, Kraus: []Matrix{k0, k1, k2, k3}}
}

// Depolarizing1Q returns the symmetric single-qubit depolarizing
// channel: with probability p the state is replaced by the maximally
// mixed state (uniformly over X, Y, Z errors).
func Depolarizing1Q(p float64) Channel {
	i := identity(2)
	x := singleQubitPaulis[1]
	y := singleQubitPaulis[2]
	z := singleQubitPaulis[3]

	s0 := complex(math.Sqrt(1-3*p/4), 0)
	s := complex(math.Sqrt(p/4), 0)
	return Channel{Dim: 2, Kraus: []Matrix{
		scale(i, s0), scale(x, s), scale(y, s), scale(z, s),
	}}
}

// Depolarizing2Q returns the symmetric two-qubit depolarizing channel:
// with probability p the state is replaced by the maximally mixed
// state over all 16 2-qubit Pauli errors (identity weight
// 1-15p/16, each of the 15 non-identity Paulis weight p/16).
func Depolarizing2Q(p float64) Channel {
	paulis := nQubitPaulis(2) // 16 Kronecker products, index 0 is I⊗I
	n := float64(len(paulis))
	s0 := complex(math.Sqrt(1-(n-1)*p/n), 0)
	s := complex(math.Sqrt(p/n), 0)

	kraus := make([]Matrix, 0, len(paulis))
	kraus = append(kraus, scale(paulis[0], s0))
	for _, p := range paulis[1:] {
		kraus = append(kraus, scale(p, s))
	}
	return Channel{Dim: 4, Kraus: kraus}
}

// CustomKraus wraps a caller-supplied Kraus set as a Channel, validating
// the completeness relation against tol.
func CustomKraus(dim int, ops []Matrix, tol float64) (Channel, error) {
	c := Channel{Dim: dim, Kraus: ops}
	if err := c.Validate(tol); err != nil {
		return Channel{}, err
	}
	return c, nil
}

// ProcessFidelity computes the average-gate-equivalent process fidelity
// between a channel E and the ideal channel Ideal, defined via their
// Choi matrices as F = Tr(Choi(E) Choi(Ideal)) / d^2.
func ProcessFidelity(e, ideal Channel) float64 {
	ce := KrausToChoi(e)
	ci := KrausToChoi(ideal)
	var tr complex128
	n := ce.dim()
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			tr += ce[i][j] * ci[j][i]
		}
	}
	return real(tr) / float64(e.Dim*e.Dim)
}
