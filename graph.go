package hnsw

import (
	"math/rand"

	"github.com/nnidx/hnsw/internal/heap"
)

// Graph is the multi-layer proximity graph: nodes indexed by vector id,
// with per-layer neighbor lists built by BuildHNSWGraph. Once built it is
// read-only — see spec §1's non-goals on dynamic mutation.
type Graph struct {
	nodes []*Node
	store VectorStore

	entryPoint int32
	maxLayer   int32

	M              int
	M0             int
	ML             float64
	EfConstruction int
}

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int { return len(g.nodes) }

// EntryPoint returns the id of the graph's current entry point.
func (g *Graph) EntryPoint() int32 { return g.entryPoint }

// MaxLayer returns the highest populated layer in the graph.
func (g *Graph) MaxLayer() int32 { return g.maxLayer }

// Node returns the node for the given vector id.
func (g *Graph) Node(id int32) *Node { return g.nodes[id] }

func (g *Graph) distTo(query Vector, id int32) (float32, error) {
	v, err := g.store.At(int(id))
	if err != nil {
		return 0, err
	}
	return Euclidean(query, v), nil
}

// mAtLayer returns the target degree bound for layer l: M0 at layer 0,
// M everywhere above.
func (g *Graph) mAtLayer(l int32) int {
	if l == 0 {
		return g.M0
	}
	return g.M
}

// BuildHNSWGraph builds a graph over every vector in store, inserting
// nodes 0..N-1 in order. Node 0 seeds the graph as its own entry point;
// nodes 1..N-1 are each inserted via a zoom-in descent followed by a beam
// search + bidirectional link at and below their sampled top layer.
//
// A faithful rewrite must insert every node 1..N-1, not stop after the
// first — the reference build routine's early exit is a known defect
// this spec deliberately does not reproduce.
func BuildHNSWGraph(store VectorStore, m, m0 int, ml float64, efConstruction int, rng *rand.Rand) (*Graph, error) {
	n := store.Len()
	if n <= 0 {
		return nil, newError(InvalidArgument, "vector store must be non-empty")
	}
	if m <= 0 || m0 <= 0 {
		return nil, newError(InvalidArgument, "M and M0 must be greater than 0")
	}
	if ml <= 0 {
		return nil, newError(InvalidArgument, "mL must be greater than 0")
	}
	if efConstruction <= 0 {
		return nil, newError(InvalidArgument, "efConstruction must be greater than 0")
	}

	sampler := NewSeededLayerSampler(ml, rng)

	g := &Graph{
		nodes:          make([]*Node, n),
		store:          store,
		M:              m,
		M0:             m0,
		ML:             ml,
		EfConstruction: efConstruction,
	}

	// Phase 1 — allocate and sample every node's top layer.
	for id := 0; id < n; id++ {
		topLayer := sampler.Sample()
		g.nodes[id] = newNode(int32(id), topLayer)

		if id == 0 {
			g.entryPoint = 0
			g.maxLayer = topLayer
			continue
		}
		if topLayer > g.maxLayer {
			g.maxLayer = topLayer
			g.entryPoint = int32(id)
		}
	}

	// Phase 2 — insert nodes 1..N-1. Node 0 is already seated from phase
	// 1 and has no edges to build.
	for id := int32(1); id < int32(n); id++ {
		if err := g.insert(id); err != nil {
			return nil, err
		}
	}

	return g, nil
}

// insert runs the zoom-in + beam-search-and-link procedure for node q
// against the already-built graph.
func (g *Graph) insert(q int32) error {
	node := g.nodes[q]
	qVec, err := g.store.At(int(q))
	if err != nil {
		return err
	}

	entry := g.entryPoint
	if entry == q {
		// q itself was recorded as the tallest-so-far entry point during
		// phase 1, but it has no edges yet — seed the descent from node 0
		// instead.
		entry = 0
	}

	// Zoom-in: layers maxLayer down to TopLayer+1, one greedy pass each.
	current := entry
	for l := g.maxLayer; l > node.TopLayer; l-- {
		next, err := g.greedyStep(current, l, qVec)
		if err != nil {
			return err
		}
		current = next
	}

	// Beam search + link: layers min(maxLayer, TopLayer) down to 0, capped
	// at the descent node's own top layer (node 0, when q is the phase-1
	// entry point, may not reach q's layers).
	top := node.TopLayer
	if g.maxLayer < top {
		top = g.maxLayer
	}
	if et := g.nodes[current].TopLayer; et < top {
		top = et
	}
	for l := top; l >= 0; l-- {
		selected, err := g.searchLayerForBuild(current, l, qVec)
		if err != nil {
			return err
		}
		if len(selected) == 0 {
			// The entry point is always a member of its own neighborhood
			// search, so this should be unreachable.
			return newError(OutOfMemory, "no candidates found during insertion")
		}

		for _, r := range selected {
			// Bidirectional linking, per spec §4.E: back-edges are added
			// without pruning, so a pre-existing node's degree may grow
			// past M/M0. No shrink heuristic is applied (§9 Open
			// Question #2's default).
			addNeighbor(node, int(l), r)
			addNeighbor(g.nodes[r], int(l), q)
		}

		current = selected[0]
	}

	if node.TopLayer > g.maxLayer {
		g.maxLayer = node.TopLayer
		g.entryPoint = q
	}

	return nil
}

// greedyStep performs one single-pass greedy 1-best scan of current's
// layer-l neighbors, returning the closest node found (current itself if
// nothing improves on it). Per Open Question #3, this does not re-scan
// after an improvement within the same layer call.
func (g *Graph) greedyStep(current int32, layer int32, target Vector) (int32, error) {
	best := current
	bestDist, err := g.distTo(target, current)
	if err != nil {
		return 0, err
	}

	node := g.nodes[current]
	if int(layer) >= len(node.Neighbors) {
		return best, nil
	}

	for _, nb := range node.Neighbors[layer] {
		d, err := g.distTo(target, nb)
		if err != nil {
			return 0, err
		}
		if d < bestDist {
			bestDist = d
			best = nb
		}
	}

	return best, nil
}

// searchLayerForBuild runs the build-time beam search described in spec
// §4.E: a frontier min-heap and a visited max-heap, both bounded by
// EfConstruction, seeded from entry, expanded until the frontier drains
// or the popped candidate is worse than the worst retained so far. It
// returns up to mAtLayer(layer) closest ids, deduped, closest first.
func (g *Graph) searchLayerForBuild(entry int32, layer int32, target Vector) ([]int32, error) {
	ef := g.EfConstruction
	frontier := heap.New(heap.Min, ef)
	visited := heap.New(heap.Max, ef)

	entryDist, err := g.distTo(target, entry)
	if err != nil {
		return nil, err
	}
	frontier.Insert(entry, entryDist)
	visited.Insert(entry, entryDist)

	seen := map[int32]bool{entry: true}

	for frontier.Len() > 0 {
		c := frontier.Pop()

		if visited.Len() >= ef && c.Dist > visited.Peek().Dist {
			break
		}

		node := g.nodes[c.ID]
		if int(layer) >= len(node.Neighbors) {
			continue
		}

		for _, nb := range node.Neighbors[layer] {
			if seen[nb] {
				continue
			}
			seen[nb] = true

			d, err := g.distTo(target, nb)
			if err != nil {
				return nil, err
			}

			if visited.Len() < ef || d < visited.Peek().Dist {
				frontier.Insert(nb, d)
				visited.Insert(nb, d)
			}
		}
	}

	// visited is a Max-mode retention queue; Sorted() pops largest-first,
	// so reverse it to get ascending (closest-first) order.
	closest := visited.Sorted()
	for i, j := 0, len(closest)-1; i < j; i, j = i+1, j-1 {
		closest[i], closest[j] = closest[j], closest[i]
	}

	mMax := g.mAtLayer(layer)
	if mMax > len(closest) {
		mMax = len(closest)
	}

	out := make([]int32, 0, mMax)
	dedup := make(map[int32]bool, mMax)
	for _, c := range closest {
		if len(out) >= mMax {
			break
		}
		if dedup[c.ID] {
			continue
		}
		dedup[c.ID] = true
		out = append(out, c.ID)
	}

	return out, nil
}
