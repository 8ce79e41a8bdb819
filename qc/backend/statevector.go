package backend

import (
	"fmt"

	"github.com/kegliz/qplay/qc/circuit"
	"github.com/kegliz/qplay/qc/simulator"
	_ "github.com/kegliz/qplay/qc/simulator/itsu" // self-registers the "itsu" OneShotRunner
	_ "github.com/kegliz/qplay/qc/simulator/qsim" // self-registers the "qsim" OneShotRunner
)

// statevectorBackend runs circuits exactly via a qc/simulator.Simulator
// backed by a named OneShotRunner (default: itsu's statevector
// simulator).
type statevectorBackend struct {
	name       string
	runnerName string
	workers    int
	properties map[string]string
}

func newStatevectorBackend() Backend {
	return &statevectorBackend{name: "statevector", runnerName: "itsu"}
}

func newQsimBackend() Backend {
	return &statevectorBackend{name: "qsim", runnerName: "qsim"}
}

func (b *statevectorBackend) Name() string           { return b.name }
func (b *statevectorBackend) IsRemote() bool          { return false }
func (b *statevectorBackend) Connectivity() [][2]int  { return nil } // all-to-all
func (b *statevectorBackend) Properties() map[string]string {
	if b.properties == nil {
		return map[string]string{"vendor": "qplay", "kind": "statevector", "runner": b.runnerName}
	}
	return b.properties
}

func (b *statevectorBackend) Initialise(cfg Config) error {
	if w, ok := cfg["workers"].(int); ok {
		b.workers = w
	}
	if r, ok := cfg["runner"].(string); ok && r != "" {
		b.runnerName = r
	}
	return nil
}

func (b *statevectorBackend) Execute(c circuit.Circuit, shots int) (Counts, error) {
	runner, err := simulator.CreateRunner(b.runnerName)
	if err != nil {
		return nil, fmt.Errorf("backend %s: %w", b.name, err)
	}
	sim := simulator.NewSimulator(simulator.SimulatorOptions{
		Shots:   shots,
		Workers: b.workers,
		Runner:  runner,
	})
	raw, err := sim.Run(c)
	if err != nil {
		return nil, err
	}
	return Counts(raw), nil
}

func (b *statevectorBackend) NativeCode(c circuit.Circuit) (string, error) {
	return "", fmt.Errorf("backend %s: no native wire format, use qc/format for a textual dialect", b.name)
}

func init() {
	MustRegister("statevector", newStatevectorBackend)
	MustRegister("qsim", newQsimBackend)
}
