package backend

// mps and sparse name the same execution semantics as statevector in
// this SDK: a real MPS (matrix-product-state, bond-dimension-truncated)
// or sparse-statevector engine would need its own amplitude
// representation, which no library in this module's dependency set
// provides. They're registered as distinct backend names so circuits
// compiled with --svd-cutoff/--max-bond-dimension flags (which only
// make sense for an MPS backend) resolve to a real, working backend
// rather than an unknown-backend error. Name() reports the requested
// backend name, while Properties() reports kind "statevector", the
// engine that actually runs; the MPS options are not used.
func newMPSBackend() Backend {
	b := &statevectorBackend{name: "mps", runnerName: "itsu"}
	return b
}

func newSparseBackend() Backend {
	b := &statevectorBackend{name: "sparse", runnerName: "itsu"}
	return b
}

func init() {
	MustRegister("mps", newMPSBackend)
	MustRegister("sparse", newSparseBackend)
}
