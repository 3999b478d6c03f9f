package hnsw

// Analyzer reports structural statistics about a built Graph: how many
// layers it has, how many nodes populate each, and how connected each
// layer is. Useful for diagnosing degenerate builds and for the
// round-trip tests in §8.
type Analyzer struct {
	Graph *Graph
}

// Height returns 1 + the graph's max layer (the number of distinct
// layers, since every node participates in layer 0).
func (a *Analyzer) Height() int {
	if a.Graph == nil || a.Graph.Len() == 0 {
		return 0
	}
	return int(a.Graph.maxLayer) + 1
}

// Topography returns the number of nodes present at each layer, index 0
// first.
func (a *Analyzer) Topography() []int {
	height := a.Height()
	if height == 0 {
		return nil
	}
	counts := make([]int, height)
	for _, node := range a.Graph.nodes {
		for l := int32(0); l <= node.TopLayer; l++ {
			counts[l]++
		}
	}
	return counts
}

// Connectivity returns the average layer-l degree (neighbor count) across
// every node present at layer l, for each non-empty layer.
func (a *Analyzer) Connectivity() []float64 {
	height := a.Height()
	if height == 0 {
		return nil
	}

	sums := make([]float64, height)
	counts := make([]int, height)
	for _, node := range a.Graph.nodes {
		for l := int32(0); l <= node.TopLayer; l++ {
			sums[l] += float64(len(node.Neighbors[l]))
			counts[l]++
		}
	}

	out := make([]float64, 0, height)
	for l := 0; l < height; l++ {
		if counts[l] == 0 {
			continue
		}
		out = append(out, sums[l]/float64(counts[l]))
	}
	return out
}

// WeaklyConnectedAtLayerZero reports whether every node is reachable from
// node 0 by following layer-0 edges in either direction — the invariant
// spec §8 requires of any build with N >= 2.
func (a *Analyzer) WeaklyConnectedAtLayerZero() bool {
	n := a.Graph.Len()
	if n <= 1 {
		return true
	}

	adj := make([][]int32, n)
	for id, node := range a.Graph.nodes {
		for _, nb := range node.Neighbors[0] {
			adj[id] = append(adj[id], nb)
			adj[nb] = append(adj[nb], int32(id))
		}
	}

	visited := make([]bool, n)
	stack := []int32{0}
	visited[0] = true
	count := 1

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, nb := range adj[cur] {
			if !visited[nb] {
				visited[nb] = true
				count++
				stack = append(stack, nb)
			}
		}
	}

	return count == n
}
