package hnsw

import "github.com/nnidx/hnsw/internal/heap"

// bitset is a dense, zero-initialized visited set — faster to reset and
// probe than a hashed map for the N-sized membership checks SearchLayer
// does on every expansion step (spec §4.F, §9).
type bitset struct {
	words []uint64
}

func newBitset(n int) *bitset {
	return &bitset{words: make([]uint64, (n+63)/64)}
}

func (b *bitset) get(i int32) bool {
	return b.words[i/64]&(1<<(uint(i)%64)) != 0
}

func (b *bitset) set(i int32) {
	b.words[i/64] |= 1 << (uint(i) % 64)
}

// SearchLayer runs a beam search at a single layer from entryID, per spec
// §4.F: a capped min-heap frontier, a capped (2·ef) max-heap of the best
// candidates seen, and a dense visited bitset. It returns up to ef node
// ids, closest first.
func (g *Graph) SearchLayer(entryID int32, layer int32, target Vector, ef int) ([]int32, error) {
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

	for frontier.Len() > 0 {
		c := frontier.Pop()

		if top.Len() >= ef && c.Dist > top.Peek().Dist {
			break
		}

		node := g.nodes[c.ID]
		if int(layer) >= len(node.Neighbors) {
			continue
		}

		for _, nb := range node.Neighbors[layer] {
			if visited.get(nb) {
				continue
			}
			visited.set(nb)

			d, err := g.distTo(target, nb)
			if err != nil {
				return nil, err
			}

			if top.Len() < ef || d < top.Peek().Dist {
				frontier.Insert(nb, d)
				top.Insert(nb, d)
			}
		}
	}

	sorted := top.Sorted() // Max-mode Sorted pops largest-first.
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
