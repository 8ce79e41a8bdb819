// Command cli is the SDK's thin command-line front-end (spec.md §6:
// "CLI surface (thin, not the core)"). It parses the documented flag
// surface, loads sdk_cfg.json with CLI flags overriding file values,
// lowers the named input circuit file through the selected format
// parser, runs it through a session.Table cell, and reports results.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"

	"github.com/kegliz/qplay/internal/config"
	"github.com/kegliz/qplay/internal/logger"
	"github.com/kegliz/qplay/qc/backend"
	"github.com/kegliz/qplay/qc/dag"
	"github.com/kegliz/qplay/qc/format/openqasm"
	"github.com/kegliz/qplay/qc/format/quil"
	"github.com/kegliz/qplay/qc/gate"
	"github.com/kegliz/qplay/qc/pass"
	"github.com/kegliz/qplay/qc/postprocess"
	"github.com/kegliz/qplay/qc/sdkerr"
	"github.com/kegliz/qplay/qc/session"
)

const (
	exitOK               = 0
	exitArgError         = 1
	exitMissingInputFile = 10
	exitThresholdFailure = 2
)

type cliFlags struct {
	acc              string
	noise            bool
	numQubits        int
	shots            int
	threshold        float64
	random           int
	noPlacement      bool
	optimise         bool
	noSim            bool
	xasm             bool
	quil1            bool
	svdCutoff        float64
	maxBondDimension int
	cfgPath          string
	verbose          bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr *os.File) int {
	fs := flag.NewFlagSet("qplay", flag.ContinueOnError)
	fs.SetOutput(stderr)

	f := cliFlags{}
	fs.StringVar(&f.acc, "acc", "", "select backend, e.g. --acc=statevector (default: config default_backend)")
	fs.BoolVar(&f.noise, "noise", false, "enable the noise model")
	fs.BoolVar(&f.noise, "n", false, "enable the noise model (shorthand)")
	fs.IntVar(&f.numQubits, "q", 0, "number of qubits (0: infer from circuit)")
	fs.IntVar(&f.shots, "s", 0, "number of shots (0: use config default)")
	fs.Float64Var(&f.threshold, "threshold", 0.05, "Jensen-Shannon divergence threshold")
	fs.IntVar(&f.random, "random", 0, "sample a random circuit of this depth instead of reading a file")
	fs.BoolVar(&f.noPlacement, "noplacement", false, "disable placement mapping")
	fs.BoolVar(&f.optimise, "optimise", false, "enable the circuit optimiser")
	fs.BoolVar(&f.noSim, "nosim", false, "skip simulation (transform/place only)")
	fs.BoolVar(&f.xasm, "xasm", false, "interpret input as XASM, default is OpenQASM")
	fs.BoolVar(&f.xasm, "x", false, "interpret input as XASM (shorthand)")
	fs.BoolVar(&f.quil1, "quil1", false, "interpret input as Quil 1.0")
	fs.Float64Var(&f.svdCutoff, "svd-cutoff", 1.0e-8, "SVD cutoff for the mps backend")
	fs.IntVar(&f.maxBondDimension, "max-bond-dimension", 256, "maximum bond dimension for the mps backend")
	fs.StringVar(&f.cfgPath, "config", "sdk_cfg.json", "path to the SDK configuration file")
	fs.BoolVar(&f.verbose, "v", false, "display additional placement and optimisation info")
	fs.BoolVar(&f.verbose, "verbose", false, "display additional placement and optimisation info")

	if err := fs.Parse(args); err != nil {
		return exitArgError
	}

	cfg, err := config.Load(f.cfgPath)
	if err != nil {
		// A missing or unreadable config file is not fatal: fall back to
		// built-in defaults, matching the original CLI's "file is
		// optional" behavior.
		cfg = config.Default()
	}
	applyFlagOverrides(cfg, f)

	if f.xasm {
		// XASM's wire format splits gates and measurements into separate
		// lists (qc/format/xasm.Parse's signature); it has no single-blob
		// textual form to read from a file the way OpenQASM/Quil do, so
		// it is reachable only via qc/format/xasm directly (e.g. from
		// qc/backend's remote path), not from this file-based CLI.
		fmt.Fprintln(stderr, "qplay: --xasm input is not supported from a file; use qc/format/xasm.Parse programmatically")
		return exitArgError
	}

	var d *dag.DAG
	positional := fs.Args()
	if f.random != 0 {
		// --random=N samples and analyses a random circuit of depth N
		// instead of reading an input file (original_source's qbsdkcli.cpp
		// arg_random_circ/depth_rndcct handling).
		numQubits := f.numQubits
		if numQubits <= 0 {
			numQubits = 4
		}
		d = buildRandomCircuit(numQubits, f.random)
	} else {
		if len(positional) < 1 {
			fmt.Fprintln(stderr, "qplay: missing input circuit file")
			return exitMissingInputFile
		}
		data, err := os.ReadFile(positional[0])
		if err != nil {
			fmt.Fprintf(stderr, "qplay: input file not found: %s\n", positional[0])
			return exitMissingInputFile
		}
		parsed, err := parseSource(string(data), f)
		if err != nil {
			fmt.Fprintf(stderr, "qplay: %v\n", err)
			return exitArgError
		}
		d = parsed
	}

	if f.verbose {
		fmt.Fprintf(stdout, "* Set n_qubits: %d\n", d.Qubits())
		fmt.Fprintf(stdout, "* Set shots: %d\n", cfg.Shots)
		fmt.Fprintf(stdout, "* Set SVD cutoff: %g\n", f.svdCutoff)
		fmt.Fprintf(stdout, "* Set maximum bond dimension: %d\n", f.maxBondDimension)
		fmt.Fprintf(stdout, "* Set accelerator: %s\n", cfg.DefaultBackend)
	}

	if f.noSim {
		return exitOK
	}

	log := logger.NewLogger(logger.LoggerOptions{Debug: cfg.Debug})
	backendCfg := backendConfig(cfg, f)

	if !contains(backend.List(), cfg.DefaultBackend) {
		fmt.Fprintf(stderr, "qplay: unknown backend %q\n", cfg.DefaultBackend)
		return exitArgError
	}
	factory := func() backend.Backend {
		b, err := backend.Create(cfg.DefaultBackend)
		if err != nil {
			return nil
		}
		return b
	}
	pool, err := backend.NewPool(factory, 1, backendCfg)
	if err != nil {
		fmt.Fprintf(stderr, "qplay: %v\n", err)
		return exitArgError
	}

	tbl := session.NewTable(log)
	tbl.RegisterPool(cfg.DefaultBackend, pool)

	var passes []pass.Pass
	if f.optimise {
		passes = append(passes,
			pass.RedundancyRemoval{AngleTol: pass.DefaultAngleTol},
			pass.TwoQubitSquash{},
			pass.Peephole{},
			pass.InitialStateSimplify{},
		)
	}

	// Placement requires a device topology this CLI has no flag to
	// supply (spec.md's CLI surface is "thin, not the core" and doesn't
	// name a --topology flag); --noplacement is honored as a no-op since
	// placement is already off by default here. A session constructed
	// programmatically (qc/session directly) can set RunConfig.Topology
	// and session.PlacementSWAP/PlacementNoiseAware.
	placementMode := session.PlacementNone
	_ = f.noPlacement

	amplitudes := make([]postprocess.Complex, len(cfg.OutputAmplitude))
	for i, a := range cfg.OutputAmplitude {
		amplitudes[i] = postprocess.Complex{R: a.R, I: a.I}
	}

	tbl.Set(0, 0, session.RunConfig{
		NumQubits:        d.Qubits(),
		Shots:            cfg.Shots,
		Backend:          cfg.DefaultBackend,
		BackendConfig:    backendCfg,
		Placement:        placementMode,
		Passes:           passes,
		Source:           d,
		OutputAmplitudes: amplitudes,
		JenshanThreshold: f.threshold,
	})

	if err := tbl.RunAt(0, 0); err != nil {
		if kind, ok := sdkerr.KindOf(err); ok && kind == sdkerr.NumericWarning {
			fmt.Fprintf(stderr, "qplay: %v\n", err)
			return exitThresholdFailure
		}
		fmt.Fprintf(stderr, "qplay: %v\n", err)
		return exitArgError
	}

	cell, _ := tbl.Get(0, 0)
	pretty(stdout, map[string]int(cell.Result.RawCounts), cfg.Shots)
	return exitOK
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// randomCircuitGates is the fixed single-qubit gate vocabulary --random
// draws from; the CNOT layer is added separately by buildRandomCircuit.
var randomCircuitGates = []string{"H", "X", "Y", "Z", "S", "T", "RX", "RY", "RZ"}

// buildRandomCircuit samples a depth-level random circuit over numQubits
// qubits: each level applies one randomly chosen single-qubit gate per
// qubit, then a layer of CNOTs between adjacent qubit pairs with 50%
// probability each, finishing with a measurement of every qubit.
func buildRandomCircuit(numQubits, depth int) *dag.DAG {
	d := dag.New(numQubits, numQubits)
	rng := rand.New(rand.NewSource(1))

	for level := 0; level < depth; level++ {
		for q := 0; q < numQubits; q++ {
			name := randomCircuitGates[rng.Intn(len(randomCircuitGates))]
			g := randomGate(name, rng)
			_ = d.AddGate(g, []int{q})
		}
		for q := 0; q+1 < numQubits; q += 2 {
			if rng.Intn(2) == 0 {
				_ = d.AddGate(gate.CNOT(), []int{q, q + 1})
			}
		}
	}
	for q := 0; q < numQubits; q++ {
		_ = d.AddMeasure(q, q)
	}
	return d
}

func randomGate(name string, rng *rand.Rand) gate.Gate {
	switch name {
	case "RX":
		return gate.Rx(gate.Concrete(rng.Float64() * 2 * 3.141592653589793))
	case "RY":
		return gate.Ry(gate.Concrete(rng.Float64() * 2 * 3.141592653589793))
	case "RZ":
		return gate.Rz(gate.Concrete(rng.Float64() * 2 * 3.141592653589793))
	default:
		g, err := gate.Factory(name)
		if err != nil {
			return gate.Identity()
		}
		return g
	}
}

func parseSource(source string, f cliFlags) (*dag.DAG, error) {
	if f.quil1 {
		return quil.Parse(source)
	}
	return openqasm.Parse(source)
}

func applyFlagOverrides(cfg *config.Config, f cliFlags) {
	if f.acc != "" {
		cfg.Set("default_backend", f.acc)
	}
	if f.shots > 0 {
		cfg.Set("shots", f.shots)
	}
	if f.noise {
		cfg.Set("noise_preset", "light")
	}
}

func backendConfig(cfg *config.Config, f cliFlags) backend.Config {
	return backend.Config{
		"noise_preset":       cfg.NoisePreset,
		"svd_cutoff":         f.svdCutoff,
		"max_bond_dimension": f.maxBondDimension,
		"endpoint":           cfg.RemoteBaseURL,
		"polling_interval_s": float64(cfg.RemotePollMS) / 1000.0,
	}
}

// pretty prints a sorted histogram of raw backend counts, matching the
// teacher's original demo CLI's output convention.
func pretty(out *os.File, hist map[string]int, shots int) {
	keys := make([]string, 0, len(hist))
	for k := range hist {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, state := range keys {
		count := hist[state]
		probability := float64(count) / float64(shots)
		fmt.Fprintf(out, "State |%s>: %d counts (%.2f%%)\n", state, count, probability*100)
	}
}
