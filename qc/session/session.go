// Package session implements the 2-D experiment table (spec.md §3 "Session
// state", §4.6 dispatcher): a grid of cells, each owning a run configuration
// and, after execution, a result record. The table dispatches cell runs over
// a bounded backend.Pool and serialises result-table writes behind a single
// mutex, per spec.md §5's concurrency model.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kegliz/qplay/internal/logger"
	"github.com/kegliz/qplay/qc/backend"
	"github.com/kegliz/qplay/qc/circuit"
	"github.com/kegliz/qplay/qc/dag"
	"github.com/kegliz/qplay/qc/pass"
	"github.com/kegliz/qplay/qc/pass/placement"
	"github.com/kegliz/qplay/qc/postprocess"
	"github.com/kegliz/qplay/qc/sdkerr"
	"gonum.org/v1/gonum/mat"
)

// Placement selects the placement pass a cell runs, per spec.md §3.
type Placement int

const (
	PlacementNone Placement = iota
	PlacementSWAP
	PlacementNoiseAware
)

// ErrorMitigation selects the post-processing mitigation a cell applies,
// per spec.md §3.
type ErrorMitigation int

const (
	MitigationNone ErrorMitigation = iota
	MitigationROError
	MitigationRichExtrap
	MitigationAssignmentKernel
)

// CellState is a cell's lifecycle stage.
type CellState int

const (
	StatePending CellState = iota
	StateRunning
	StateSucceeded
	StateFailed
)

func (s CellState) String() string {
	switch s {
	case StatePending:
		return "Pending"
	case StateRunning:
		return "Running"
	case StateSucceeded:
		return "Succeeded"
	case StateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// RunConfig is the recognized set of per-cell run options from spec.md §3.
// Remote-backend-only fields (over_request_factor, safe_shot_limit, ...) are
// folded into BackendConfig, which is handed verbatim to the selected
// backend.Initialise — qc/backend's remote/density-matrix implementations
// already read exactly those keys.
type RunConfig struct {
	NumQubits int
	Shots     int
	Backend   string
	BackendConfig backend.Config

	Placement Placement
	Topology  *placement.Topology
	Device    *placement.Device

	Passes []pass.Pass

	Seed *uint64

	// Source is the circuit to run, already lowered to a validated DAG by
	// the caller (qc/builder or a qc/format parser).
	Source *dag.DAG

	OutputAmplitudes []postprocess.Complex
	ErrorMitigation  ErrorMitigation
	JenshanThreshold float64
	ConfusionMatrix  *mat.Dense
}

// Result is a cell's post-run record, per spec.md §3.
type Result struct {
	RawCounts              backend.Counts
	IntCounts              map[int]int
	Overflowed             []string
	ZExpectationValues     []float64
	TranspiledCircuit      circuit.Circuit
	NativeCode             string
	Timing                 time.Duration
	JSD                    float64
	MitigatedProbabilities []float64
	Err                    error
}

// Cell is one (experimentRow, conditionCol) entry.
type Cell struct {
	ID     string
	Config RunConfig
	Result Result
	State  CellState
}

// Table is the session's 2-D result table.
type Table struct {
	log   *logger.Logger
	mu    sync.RWMutex
	cells map[[2]int]*Cell
	pools map[string]*backend.Pool
}

// NewTable creates an empty session table.
func NewTable(log *logger.Logger) *Table {
	return &Table{
		log:   log,
		cells: make(map[[2]int]*Cell),
		pools: make(map[string]*backend.Pool),
	}
}

// RegisterPool makes a bounded backend pool available to cells whose
// RunConfig.Backend equals name. The session owns the pool for its lifetime.
func (t *Table) RegisterPool(name string, p *backend.Pool) {
	t.mu.Lock()
	t.pools[name] = p
	t.mu.Unlock()
}

// Set assigns a RunConfig to (row, col), creating the cell on first
// assignment, per spec.md §3's "a cell is created on first assignment".
func (t *Table) Set(row, col int, cfg RunConfig) *Cell {
	t.mu.Lock()
	defer t.mu.Unlock()
	key := [2]int{row, col}
	c, ok := t.cells[key]
	if !ok {
		c = &Cell{ID: uuid.New().String()}
		t.cells[key] = c
	}
	c.Config = cfg
	c.State = StatePending
	return c
}

// Get returns the cell at (row, col). Readers that observe a cell before its
// run completes see its default-constructed Result, per spec.md §5.
func (t *Table) Get(row, col int) (*Cell, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	c, ok := t.cells[[2]int{row, col}]
	return c, ok
}

// RunAt synchronously executes the cell at (row, col): transform, placement,
// execution, and post-processing, strictly sequential within the cell per
// spec.md §5.
func (t *Table) RunAt(row, col int) error {
	t.mu.RLock()
	c, ok := t.cells[[2]int{row, col}]
	t.mu.RUnlock()
	if !ok {
		return sdkerr.Newf(sdkerr.ValidationError, "qc/session", "no cell at (%d, %d)", row, col)
	}
	return t.run(c)
}

// Run executes every cell in the table, sequentially within each cell and
// without cross-cell ordering guarantees, per spec.md §5.
func (t *Table) Run() []error {
	t.mu.RLock()
	cells := make([]*Cell, 0, len(t.cells))
	for _, c := range t.cells {
		cells = append(cells, c)
	}
	t.mu.RUnlock()

	errs := make([]error, len(cells))
	for i, c := range cells {
		errs[i] = t.run(c)
	}
	return errs
}

// Handle is returned by RunAsync; the caller synchronises via Wait.
type Handle struct {
	done chan struct{}
	err  error
}

// Wait blocks until the asynchronous run completes and returns its error.
func (h *Handle) Wait() error {
	<-h.done
	return h.err
}

// RunAsync dispatches the cell at (row, col) and returns immediately, per
// spec.md §5's "run_async returns immediately; the caller synchronises via
// the returned handle."
func (t *Table) RunAsync(row, col int) *Handle {
	h := &Handle{done: make(chan struct{})}
	go func() {
		h.err = t.RunAt(row, col)
		close(h.done)
	}()
	return h
}

func (t *Table) run(c *Cell) error {
	t.mu.Lock()
	c.State = StateRunning
	t.mu.Unlock()

	start := time.Now()
	res, err := t.execute(c.Config)
	res.Timing = time.Since(start)
	if err != nil {
		res.Err = err
	}

	t.mu.Lock()
	c.Result = res
	if err != nil {
		c.State = StateFailed
	} else {
		c.State = StateSucceeded
	}
	t.mu.Unlock()

	return err
}

func (t *Table) execute(cfg RunConfig) (Result, error) {
	var res Result

	if cfg.Source == nil {
		return res, sdkerr.New(sdkerr.ValidationError, fmt.Errorf("RunConfig.Source is nil"), "qc/session")
	}

	d := cfg.Source
	if len(cfg.Passes) > 0 {
		out, err := pass.NewPipeline(cfg.Passes...).Apply(d)
		if err != nil {
			return res, sdkerr.New(sdkerr.CompileError, err, "qc/session")
		}
		d = out
	}

	switch cfg.Placement {
	case PlacementSWAP:
		if cfg.Topology == nil {
			return res, sdkerr.New(sdkerr.PlacementError, fmt.Errorf("swap placement requested without a topology"), "qc/session")
		}
		routed, _, err := placement.Route(d, cfg.Topology)
		if err != nil {
			return res, sdkerr.New(sdkerr.PlacementError, err, "qc/session")
		}
		d = routed
	case PlacementNoiseAware:
		if cfg.Device == nil {
			return res, sdkerr.New(sdkerr.PlacementError, fmt.Errorf("noise-aware placement requested without a device"), "qc/session")
		}
		routed, _, err := placement.RouteNoiseAware(d, cfg.Device)
		if err != nil {
			return res, sdkerr.New(sdkerr.PlacementError, err, "qc/session")
		}
		d = routed
	}

	c := circuit.FromDAG(d)
	res.TranspiledCircuit = c

	t.mu.RLock()
	pool, ok := t.pools[cfg.Backend]
	t.mu.RUnlock()
	if !ok {
		return res, sdkerr.Newf(sdkerr.BackendUnavailable, "qc/session", "no pool registered for backend %q", cfg.Backend)
	}

	b, token := pool.Acquire()
	defer pool.Release(token)

	if code, err := b.NativeCode(c); err == nil {
		res.NativeCode = code
	}

	t.log.Debug().Str("backend", cfg.Backend).Int("shots", cfg.Shots).Msg("executing cell")
	raw, err := b.Execute(c, cfg.Shots)
	if err != nil {
		return res, err
	}
	res.RawCounts = raw

	intCounts, overflowed := postprocess.BitstringCounts(raw, false)
	res.IntCounts = intCounts
	res.Overflowed = overflowed
	res.ZExpectationValues = postprocess.ZExpectation(intCounts, c.Qubits())

	if len(cfg.OutputAmplitudes) > 0 {
		d, jsdErr := postprocess.CheckJSD(cfg.OutputAmplitudes, intCounts, cfg.JenshanThreshold)
		res.JSD = d
		if jsdErr != nil {
			return res, jsdErr
		}
	}

	if cfg.ErrorMitigation == MitigationROError && cfg.ConfusionMatrix != nil {
		shots := 0
		for _, v := range intCounts {
			shots += v
		}
		dim, _ := cfg.ConfusionMatrix.Dims()
		q := make([]float64, dim)
		if shots > 0 {
			for k, v := range intCounts {
				if k < dim {
					q[k] = float64(v) / float64(shots)
				}
			}
		}
		mitigated, err := postprocess.MitigateReadout(cfg.ConfusionMatrix, q)
		if err != nil {
			return res, sdkerr.New(sdkerr.NumericWarning, err, "qc/session")
		}
		res.MitigatedProbabilities = mitigated
	}

	return res, nil
}
