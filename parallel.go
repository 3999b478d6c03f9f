package hnsw

import (
	"runtime"
	"sync"

	"github.com/nnidx/hnsw/internal/heap"
)

// parallelFanoutThreshold is the minimum number of unvisited neighbors a
// layer-0 expansion step must have before searchLayerParallel bothers to split
// their distance computations across goroutines; below it the overhead of
// spinning up workers outweighs the saving, mirroring the threshold
// coder/hnsw's Graph.ParallelSearch used for the same tradeoff.
const parallelFanoutThreshold = 64

// parallelHNSWKNN is BeamSearch's engine: identical descent and beam
// search to hnswKNN, except the layer-0 expansion step parallelizes its
// neighbor distance computations across goroutines when the fan-out is
// large. It does not change the search semantics of §4.F/§4.G — only the
// wall-clock cost of one expansion step — so results match the sequential
// path exactly.
func (g *Graph) parallelHNSWKNN(query Vector, k int, cfg SearchConfig) ([]int32, error) {
	if k <= 0 {
		return nil, newError(InvalidArgument, "k must be greater than 0")
	}

	ef := cfg.SearchWidth
	if ef <= 0 {
		ef = 4 * k
	}

	entry := g.entryPoint
	for l := g.maxLayer; l >= 1; l-- {
		ids, err := g.SearchLayer(entry, l, query, 1)
		if err != nil {
			return nil, err
		}
		if len(ids) > 0 {
			entry = ids[0]
		}
	}

	// Small graphs, or a low-dimensional query, don't benefit from
	// parallelizing the distance math — fall back to the sequential path.
	if g.Len() < 5000 || len(query.Data) < 64 {
		ids, err := g.SearchLayer(entry, 0, query, ef)
		if err != nil {
			return nil, err
		}
		if len(ids) > k {
			ids = ids[:k]
		}
		return ids, nil
	}

	ids, err := g.searchLayerParallel(entry, query, ef)
	if err != nil {
		return nil, err
	}
	if len(ids) > k {
		ids = ids[:k]
	}
	return ids, nil
}

type distResult struct {
	id   int32
	dist float32
}

// searchLayerParallel is SearchLayer specialized for layer 0, with the
// per-step neighbor distance computation fanned out across
// runtime.NumCPU() goroutines once a step has enough unvisited neighbors
// to make it worthwhile. Heap/bitset mutation stays single-threaded: only
// the distance math runs concurrently, and results are folded back in
// sequentially.
func (g *Graph) searchLayerParallel(entryID int32, target Vector, ef int) ([]int32, error) {
	frontier := heap.New(heap.Min, ef)
	top := heap.New(heap.Max, 2*ef)
	visited := newBitset(len(g.nodes))

	entryDist, err := g.distTo(target, entryID)
	if err != nil {
		return nil, err
	}
	frontier.Insert(entryID, entryDist)
	top.Insert(entryID, entryDist)
	visited.set(entryID)

	workers := runtime.NumCPU()
	if workers < 1 {
		workers = 1
	}

	for frontier.Len() > 0 {
		c := frontier.Pop()
		if top.Len() >= ef && c.Dist > top.Peek().Dist {
			break
		}

		node := g.nodes[c.ID]
		if len(node.Neighbors) == 0 {
			continue
		}

		var unvisited []int32
		for _, nb := range node.Neighbors[0] {
			if visited.get(nb) {
				continue
			}
			visited.set(nb)
			unvisited = append(unvisited, nb)
		}

		if len(unvisited) < parallelFanoutThreshold || len(unvisited) < workers {
			for _, nb := range unvisited {
				d, err := g.distTo(target, nb)
				if err != nil {
					return nil, err
				}
				if top.Len() < ef || d < top.Peek().Dist {
					frontier.Insert(nb, d)
					top.Insert(nb, d)
				}
			}
			continue
		}

		results := make([]distResult, len(unvisited))
		var wg sync.WaitGroup
		perWorker := (len(unvisited) + workers - 1) / workers
		for w := 0; w < workers; w++ {
			start := w * perWorker
			if start >= len(unvisited) {
				break
			}
			end := start + perWorker
			if end > len(unvisited) {
				end = len(unvisited)
			}
			wg.Add(1)
			go func(start, end int) {
				defer wg.Done()
				for i := start; i < end; i++ {
					// Neighbor ids always come from an already-built
					// graph over this same store, so At cannot fail here.
					v, _ := g.store.At(int(unvisited[i]))
					results[i] = distResult{id: unvisited[i], dist: Euclidean(target, v)}
				}
			}(start, end)
		}
		wg.Wait()

		for _, r := range results {
			if top.Len() < ef || r.dist < top.Peek().Dist {
				frontier.Insert(r.id, r.dist)
				top.Insert(r.id, r.dist)
			}
		}
	}

	sorted := top.Sorted()
	for i, j := 0, len(sorted)-1; i < j; i, j = i+1, j-1 {
		sorted[i], sorted[j] = sorted[j], sorted[i]
	}
	if len(sorted) > ef {
		sorted = sorted[:ef]
	}

	ids := make([]int32, len(sorted))
	for i, c := range sorted {
		ids[i] = c.ID
	}
	return ids, nil
}
