// Package placement maps a DAG's logical qubits onto a device's
// physical qubits, inserting SWAP chains so every two-qubit gate ends
// up acting on physically adjacent qubits.
package placement

import (
	"container/heap"
	"fmt"
	"math"
	"sort"

	"github.com/kegliz/qplay/qc/dag"
	"github.com/kegliz/qplay/qc/gate"
)

// Topology is an undirected physical-qubit adjacency graph.
type Topology struct {
	n     int
	edges map[int][]int
}

// NewTopology builds a Topology over n physical qubits connected by the
// given undirected edges.
func NewTopology(n int, edges [][2]int) (*Topology, error) {
	t := &Topology{n: n, edges: make(map[int][]int, n)}
	for _, e := range edges {
		a, b := e[0], e[1]
		if a < 0 || a >= n || b < 0 || b >= n {
			return nil, fmt.Errorf("placement: edge (%d,%d) out of range for %d qubits", a, b, n)
		}
		t.edges[a] = append(t.edges[a], b)
		t.edges[b] = append(t.edges[b], a)
	}
	for q := range t.edges {
		sort.Ints(t.edges[q])
	}
	return t, nil
}

// Qubits returns the number of physical qubits.
func (t *Topology) Qubits() int { return t.n }

// Neighbors returns the physical qubits adjacent to q, ascending.
func (t *Topology) Neighbors(q int) []int { return append([]int(nil), t.edges[q]...) }

// Adjacent reports whether a and b are directly connected.
func (t *Topology) Adjacent(a, b int) bool {
	for _, n := range t.edges[a] {
		if n == b {
			return true
		}
	}
	return false
}

// LinearChain builds the common 0-1-2-...-n-1 nearest-neighbour line.
func LinearChain(n int) *Topology {
	edges := make([][2]int, 0, n-1)
	for i := 0; i+1 < n; i++ {
		edges = append(edges, [2]int{i, i + 1})
	}
	t, _ := NewTopology(n, edges)
	return t
}

// Device augments a Topology with per-edge fidelities (in (0,1]) used by
// the noise-aware router.
type Device struct {
	Topo        *Topology
	EdgeFidelity map[[2]int]float64 // keyed by the smaller-index-first pair
}

func edgeKey(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

func (d *Device) fidelity(a, b int) float64 {
	if d.EdgeFidelity == nil {
		return 1
	}
	if f, ok := d.EdgeFidelity[edgeKey(a, b)]; ok {
		return f
	}
	return 1
}

// Placement is a logical<->physical qubit mapping.
type Placement struct {
	LogicalToPhysical []int
	PhysicalToLogical []int
}

// Identity returns the placement that maps logical qubit i to physical
// qubit i.
func Identity(n int) Placement {
	l2p := make([]int, n)
	p2l := make([]int, n)
	for i := range l2p {
		l2p[i] = i
		p2l[i] = i
	}
	return Placement{LogicalToPhysical: l2p, PhysicalToLogical: p2l}
}

func (p *Placement) swap(physA, physB int) {
	la, lb := p.PhysicalToLogical[physA], p.PhysicalToLogical[physB]
	p.PhysicalToLogical[physA], p.PhysicalToLogical[physB] = lb, la
	if la >= 0 {
		p.LogicalToPhysical[la] = physB
	}
	if lb >= 0 {
		p.LogicalToPhysical[lb] = physA
	}
}

// Route lays d's logical qubits onto topo's physical qubits and inserts
// SWAP chains (built from the unweighted shortest path, ties broken
// lexicographically by physical index) so every two-qubit gate acts on
// adjacent physical qubits. Measurements keep their original classical
// bit regardless of which physical qubit ends up carrying the logical
// one.
func Route(d *dag.DAG, topo *Topology) (*dag.DAG, Placement, error) {
	return route(d, topo, nil)
}

// RouteNoiseAware is Route, but SWAP-path choice minimises the sum of
// -log(edge fidelity) instead of hop count, so routes prefer a device's
// higher-fidelity connections; ties (equal cost) fall back to Route's
// lexicographic tie-break.
func RouteNoiseAware(d *dag.DAG, device *Device) (*dag.DAG, Placement, error) {
	return route(d, device.Topo, device)
}

func route(d *dag.DAG, topo *Topology, device *Device) (*dag.DAG, Placement, error) {
	if topo.Qubits() < d.Qubits() {
		return nil, Placement{}, fmt.Errorf("placement: topology has %d physical qubits, need %d", topo.Qubits(), d.Qubits())
	}
	out := dag.New(topo.Qubits(), d.Clbits())
	pl := Identity(topo.Qubits())

	emit2Q := func(g gate.Gate, logicalA, logicalB int) error {
		pa, pb := pl.LogicalToPhysical[logicalA], pl.LogicalToPhysical[logicalB]
		if !topo.Adjacent(pa, pb) {
			path := shortestPath(topo, device, pa, pb)
			for i := 0; i+1 < len(path)-1; i++ {
				pl.swap(path[i], path[i+1])
				if err := out.AddGate(gate.Swap(), []int{path[i], path[i+1]}); err != nil {
					return err
				}
			}
			pa, pb = pl.LogicalToPhysical[logicalA], pl.LogicalToPhysical[logicalB]
		}
		return out.AddGate(g, []int{pa, pb})
	}

	for _, n := range d.Operations() {
		if n.Cbit >= 0 {
			phys := pl.LogicalToPhysical[n.Qubits[0]]
			if err := out.AddMeasure(phys, n.Cbit); err != nil {
				return nil, Placement{}, err
			}
			continue
		}
		switch len(n.Qubits) {
		case 1:
			phys := pl.LogicalToPhysical[n.Qubits[0]]
			if err := out.AddGate(n.G, []int{phys}); err != nil {
				return nil, Placement{}, err
			}
		case 2:
			if err := emit2Q(n.G, n.Qubits[0], n.Qubits[1]); err != nil {
				return nil, Placement{}, err
			}
		default:
			return nil, Placement{}, fmt.Errorf("placement: gate %s spans %d qubits, routing only supports 1 and 2", n.G.Name(), len(n.Qubits))
		}
	}

	if err := out.Validate(); err != nil {
		return nil, Placement{}, err
	}
	return out, pl, nil
}

// shortestPath returns the physical-qubit path from src to dst
// inclusive. device == nil means unweighted (hop-count) routing via
// BFS; otherwise it's Dijkstra over -log(fidelity) edge weights. Either
// way, ties are broken by preferring the lexicographically smaller next
// hop.
func shortestPath(topo *Topology, device *Device, src, dst int) []int {
	n := topo.Qubits()
	dist := make([]float64, n)
	prev := make([]int, n)
	visited := make([]bool, n)
	for i := range dist {
		dist[i] = math.Inf(1)
		prev[i] = -1
	}
	dist[src] = 0

	pq := &pqueue{{node: src, dist: 0}}
	heap.Init(pq)
	for pq.Len() > 0 {
		cur := heap.Pop(pq).(pqitem)
		if visited[cur.node] {
			continue
		}
		visited[cur.node] = true
		if cur.node == dst {
			break
		}
		neighbors := topo.Neighbors(cur.node)
		sort.Ints(neighbors)
		for _, nb := range neighbors {
			w := 1.0
			if device != nil {
				w = -math.Log(device.fidelity(cur.node, nb))
			}
			nd := dist[cur.node] + w
			if nd < dist[nb]-1e-12 || (math.Abs(nd-dist[nb]) < 1e-12 && (prev[nb] == -1 || cur.node < prev[nb])) {
				dist[nb] = nd
				prev[nb] = cur.node
				heap.Push(pq, pqitem{node: nb, dist: nd})
			}
		}
	}

	if prev[dst] == -1 && src != dst {
		return nil
	}
	path := []int{dst}
	for cur := dst; cur != src; {
		cur = prev[cur]
		path = append(path, cur)
	}
	// reverse
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

type pqitem struct {
	node int
	dist float64
}

type pqueue []pqitem

func (q pqueue) Len() int            { return len(q) }
func (q pqueue) Less(i, j int) bool  { return q[i].dist < q[j].dist }
func (q pqueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *pqueue) Push(x interface{}) { *q = append(*q, x.(pqitem)) }
func (q *pqueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}
