package backend

import (
	"context"
	"fmt"

	"github.com/kegliz/qplay/qc/circuit"
	"github.com/kegliz/qplay/qc/dag"
	"github.com/kegliz/qplay/qc/format/xasm"
	"github.com/kegliz/qplay/qc/remote"
)

// remoteBackend wraps qc/remote's submit/poll/accumulate protocol
// behind the Backend interface. "braket" and "hardware" both use this
// implementation; they differ only in the database entry used to
// configure it (see backends.yaml), matching spec.md's description of
// braket as a "remote-shaped stub" (same wire protocol, different
// endpoint/limits).
type remoteBackend struct {
	name   string
	opts   remote.Options
	client *remote.Client
}

func newBraketBackend() Backend   { return &remoteBackend{name: "braket"} }
func newHardwareBackend() Backend { return &remoteBackend{name: "hardware"} }

func (b *remoteBackend) Name() string           { return b.name }
func (b *remoteBackend) IsRemote() bool         { return true }
func (b *remoteBackend) Connectivity() [][2]int { return nil } // no connectivity data; backends.yaml entries carry none

func (b *remoteBackend) Properties() map[string]string {
	return map[string]string{
		"vendor": "qplay", "kind": "remote", "endpoint": b.opts.Endpoint, "hwbackend": b.opts.HWBackend,
	}
}

// Initialise accepts the keys a RemoteBackendEntry (backends.yaml) or
// a RunConfig's remote fields would supply: endpoint, post_path,
// hwbackend, over_request_factor, safe_shot_limit, recursive_request,
// resample, resample_threshold_pct, retries_post, retries_get,
// polling_interval_s, polling_attempts.
func (b *remoteBackend) Initialise(cfg Config) error {
	opts := remote.Options{}
	str := func(k string) string { s, _ := cfg[k].(string); return s }
	f64 := func(k string) float64 { v, _ := cfg[k].(float64); return v }
	i := func(k string) int { v, _ := cfg[k].(int); return v }
	bl := func(k string) bool { v, _ := cfg[k].(bool); return v }

	opts.Endpoint = str("endpoint")
	opts.PostPath = str("post_path")
	opts.HWBackend = str("hwbackend")
	if opts.PostPath == "" {
		opts.PostPath = "/circuit"
	}
	opts.OverRequestFactor = f64("over_request_factor")
	opts.SafeShotLimit = i("safe_shot_limit")
	opts.RecursiveRequest = bl("recursive_request")
	opts.Resample = bl("resample")
	opts.ResampleThresholdPct = f64("resample_threshold_pct")
	opts.RetriesPost = i("retries_post")
	opts.RetriesGet = i("retries_get")
	opts.PollingIntervalS = f64("polling_interval_s")
	opts.PollingAttempts = i("polling_attempts")

	if opts.Endpoint == "" {
		return fmt.Errorf("backend %s: missing endpoint", b.name)
	}

	b.opts = opts
	b.client = remote.NewClient(opts)
	return nil
}

func (b *remoteBackend) Execute(c circuit.Circuit, shots int) (Counts, error) {
	if b.client == nil {
		return nil, fmt.Errorf("backend %s: not initialised", b.name)
	}
	d := circuitToDAG(c)
	lines, measures, err := xasm.Write(d)
	if err != nil {
		return nil, fmt.Errorf("backend %s: %w", b.name, err)
	}
	init := make([]int, c.Qubits())

	res, err := b.client.Run(context.Background(), lines, measures, init, shots)
	if err != nil {
		return nil, err
	}
	return Counts(res.Counts), nil
}

func (b *remoteBackend) NativeCode(c circuit.Circuit) (string, error) {
	d := circuitToDAG(c)
	lines, _, err := xasm.Write(d)
	if err != nil {
		return "", err
	}
	out := ""
	for _, l := range lines {
		out += l + "\n"
	}
	return out, nil
}

// circuitToDAG replays a circuit.Circuit's operations into a fresh
// dag.DAG, since qc/remote and qc/format operate at the DAG level.
func circuitToDAG(c circuit.Circuit) *dag.DAG {
	d := dag.New(c.Qubits(), c.Clbits())
	for _, op := range c.Operations() {
		if op.Cbit >= 0 {
			_ = d.AddMeasure(op.Qubits[0], op.Cbit)
			continue
		}
		_ = d.AddGate(op.G, op.Qubits)
	}
	_ = d.Validate()
	return d
}

func init() {
	MustRegister("braket", newBraketBackend)
	MustRegister("hardware", newHardwareBackend)
}
