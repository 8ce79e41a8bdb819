// Package macro is a plugin registry of composite-gate factories (QFT,
// QPE, amplitude amplification, ripple-carry adders, comparators, ...).
// Each factory lowers directly onto a dag.DAGBuilder using only
// AddGate/AddMeasure, so a macro is just another caller of the DAG
// construction API — never a special case inside the DAG itself.
package macro

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/kegliz/qplay/qc/dag"
)

// Target is the DAG-construction surface a macro needs. qc/dag.DAG
// (via DAGBuilder) satisfies this directly.
type Target = dag.DAGBuilder

// Factory builds a composite gate onto t, acting on qubits, parameterised
// by params (free variables resolved by the caller before invocation).
type Factory func(t Target, qubits []int, params map[string]float64) error

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register installs a macro factory under name, overwriting any
// previous registration (mirrors qc/simulator's RunnerRegistry pattern).
func Register(name string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[name] = f
}

// MustRegister panics if name is already registered; used from init().
func MustRegister(name string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	if _, exists := factories[name]; exists {
		panic(fmt.Sprintf("macro: %q already registered", name))
	}
	factories[name] = f
}

// Apply looks up name and runs it against t.
func Apply(name string, t Target, qubits []int, params map[string]float64) error {
	mu.RLock()
	f, ok := factories[name]
	mu.RUnlock()
	if !ok {
		return fmt.Errorf("macro: unknown macro %q", name)
	}
	return f(t, qubits, params)
}

// List returns the registered macro names, sorted.
func List() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(factories))
	for n := range factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func init() {
	MustRegister("qft", qftFactory)
	MustRegister("iqft", iqftFactory)
	MustRegister("qpe", qpeFactory)
	MustRegister("grover_diffuser", groverDiffuserFactory)
	MustRegister("ripple_adder", rippleAdderFactory)
	MustRegister("equality", equalityFactory)
	MustRegister("comparator", comparatorFactory)
	MustRegister("amplitude_estimation", amplitudeEstimationFactory)
	MustRegister("exponential_search", exponentialSearchFactory)
	MustRegister("multi_controlled_u", multiControlledUFactory)
	MustRegister("encoding", encodingFactory)
	MustRegister("multiply", multiplicationFactory)
	MustRegister("subtract", subtractionFactory)
	MustRegister("division", divisionFactory)
	MustRegister("controlled", controlledFactory)
}

// twoPi is used by the phase-rotation angle formula in qft/iqft/qpe.
const twoPi = 2 * math.Pi
