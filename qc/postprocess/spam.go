package postprocess

import "gonum.org/v1/gonum/mat"

// PreparedCounts is one SPAM circuit's measured outcome: preparedState is
// the basis state index (0..2^n-1) the circuit prepared by applying X to
// every "1" bit of preparedState before measuring; counts maps measured
// basis state index -> shot count.
type PreparedCounts struct {
	PreparedState int
	Counts        map[int]int
}

// BuildConfusionMatrix assembles the d x d (d = 2^numQubits) SPAM confusion
// matrix from measured counts of all d basis-state preparations, grounded in
// original_source's SPAMBenchmark::calculate_confusion_matrix: column
// preparedState holds the normalised distribution of measured outcomes when
// that basis state was prepared, so M . p_ideal approximates the measured
// distribution and M^-1 inverts that distortion (see MitigateReadout).
func BuildConfusionMatrix(numQubits int, prepared []PreparedCounts) (*mat.Dense, error) {
	d := 1 << uint(numQubits)
	m := mat.NewDense(d, d, nil)
	for _, pc := range prepared {
		if pc.PreparedState < 0 || pc.PreparedState >= d {
			continue
		}
		var shots int
		for _, c := range pc.Counts {
			shots += c
		}
		if shots == 0 {
			continue
		}
		for outcome, c := range pc.Counts {
			if outcome < 0 || outcome >= d {
				continue
			}
			m.Set(outcome, pc.PreparedState, float64(c)/float64(shots))
		}
	}
	return m, nil
}

// PreparationBits returns the qubit indices that must be flipped (via X)
// before measurement to prepare basis state k, for k in [0, 2^numQubits).
func PreparationBits(k, numQubits int) []int {
	var bits []int
	for q := 0; q < numQubits; q++ {
		if (k>>uint(q))&1 == 1 {
			bits = append(bits, q)
		}
	}
	return bits
}
