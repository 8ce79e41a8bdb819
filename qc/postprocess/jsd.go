package postprocess

import (
	"math"

	"github.com/kegliz/qplay/qc/sdkerr"
)

// Complex is a JSON-friendly complex amplitude (sdk_cfg.json's
// output_amplitude array uses this shape rather than Go's native complex128,
// which encoding/json cannot marshal).
type Complex struct {
	R float64 `json:"r"`
	I float64 `json:"i"`
}

func (c Complex) abs2() float64 { return c.R*c.R + c.I*c.I }

// JensenShannonDivergence computes JSD(p||q) between the amplitude-derived
// distribution p_k = |a_k|^2 and the count-derived distribution
// q_k = c_k / sum(c), per spec.md §4.7. amplitudes and counts must be
// indexed identically (basis state k -> amplitudes[k] / counts[k]).
func JensenShannonDivergence(amplitudes []Complex, intCounts map[int]int) float64 {
	n := len(amplitudes)
	p := make([]float64, n)
	var pSum float64
	for k, a := range amplitudes {
		p[k] = a.abs2()
		pSum += p[k]
	}
	if pSum > 0 {
		for k := range p {
			p[k] /= pSum
		}
	}

	q := make([]float64, n)
	var qSum float64
	for k, c := range intCounts {
		if k < n {
			q[k] = float64(c)
			qSum += float64(c)
		}
	}
	if qSum > 0 {
		for k := range q {
			q[k] /= qSum
		}
	}

	m := make([]float64, n)
	for k := range m {
		m[k] = 0.5 * (p[k] + q[k])
	}
	return 0.5*klDivergence(p, m) + 0.5*klDivergence(q, m)
}

func klDivergence(p, m []float64) float64 {
	var sum float64
	for k := range p {
		if p[k] <= 0 || m[k] <= 0 {
			continue
		}
		sum += p[k] * math.Log(p[k]/m[k])
	}
	return sum
}

// ErrThresholdExceeded signals JSD() found the divergence above the
// configured jenshan_threshold; the CLI maps this to a nonzero exit code
// per spec.md §4's exit-code table.
type ErrThresholdExceeded struct {
	Divergence float64
	Threshold  float64
}

func (e *ErrThresholdExceeded) Error() string {
	return "jensen-shannon divergence exceeds threshold"
}

// CheckJSD computes the divergence and returns an *sdkerr.SDKError wrapping
// ErrThresholdExceeded (kind NumericWarning) when it exceeds threshold.
func CheckJSD(amplitudes []Complex, intCounts map[int]int, threshold float64) (float64, error) {
	d := JensenShannonDivergence(amplitudes, intCounts)
	if d > threshold {
		return d, sdkerr.New(sdkerr.NumericWarning, &ErrThresholdExceeded{Divergence: d, Threshold: threshold}, "qc/postprocess")
	}
	return d, nil
}
