package hnsw

import "math/rand"

// Index is the top-level handle a caller builds once and queries
// repeatedly: a VectorStore plus an optional HNSW graph. With no graph,
// every query falls back to exact brute-force search.
type Index struct {
	store   VectorStore
	dim     int
	graph   *Graph
	useHNSW bool
}

// CreateIndex builds a brute-force-only Index: no graph, every query is
// exact.
func CreateIndex(store VectorStore) (*Index, error) {
	if store == nil || store.Len() <= 0 {
		return nil, newError(InvalidArgument, "vector store must be non-empty")
	}
	return &Index{store: store, dim: store.Dim()}, nil
}

// NewIndexFromGraph wraps an already-built (or deserialized-and-Attached)
// Graph in an Index, for callers that persist graphs across process
// boundaries via Serialize/DeserializeGraph rather than building one in
// process with CreateHNSWIndex.
func NewIndexFromGraph(store VectorStore, graph *Graph) (*Index, error) {
	if store == nil || store.Len() <= 0 {
		return nil, newError(InvalidArgument, "vector store must be non-empty")
	}
	if graph == nil {
		return nil, newError(InvalidArgument, "graph must be non-nil")
	}
	return &Index{store: store, dim: store.Dim(), graph: graph, useHNSW: true}, nil
}

// CreateHNSWIndex builds an Index backed by an HNSW graph, with
// efConstruction = 2*m, matching spec §6's default.
func CreateHNSWIndex(store VectorStore, m, m0 int, ml float64) (*Index, error) {
	return createHNSWIndex(store, m, m0, ml, rand.New(rand.NewSource(randSeed())))
}

// createHNSWIndex is the seed-injectable variant CreateHNSWIndex wraps,
// used directly by tests that need reproducible graphs.
func createHNSWIndex(store VectorStore, m, m0 int, ml float64, rng *rand.Rand) (*Index, error) {
	if store == nil || store.Len() <= 0 {
		return nil, newError(InvalidArgument, "vector store must be non-empty")
	}
	g, err := BuildHNSWGraph(store, m, m0, ml, 2*m, rng)
	if err != nil {
		return nil, err
	}
	return &Index{store: store, dim: store.Dim(), graph: g, useHNSW: true}, nil
}

// KNNSearch dispatches to the HNSW path if the index has a graph,
// otherwise to exact Euclidean brute force.
func (idx *Index) KNNSearch(query []float32, k int) ([]int32, error) {
	if idx.useHNSW && idx.graph != nil {
		return idx.HNSWKNNSearch(query, k, SearchConfig{})
	}
	return bruteForceEuclidean(idx.store, Vector{Data: query}, k)
}

// HNSWKNNSearch runs an HNSW query with an explicit SearchConfig. It fails
// with NotIndexed if the index has no graph.
func (idx *Index) HNSWKNNSearch(query []float32, k int, cfg SearchConfig) ([]int32, error) {
	if idx.graph == nil {
		return nil, newError(NotIndexed, "index has no HNSW graph")
	}
	return idx.graph.hnswKNN(Vector{Data: query}, k, cfg)
}

// ApproximateSearch is a SearchConfig preset with width defaulting to k*2.
func (idx *Index) ApproximateSearch(query []float32, k, width int) ([]int32, error) {
	if width <= 0 {
		width = 2 * k
	}
	return idx.HNSWKNNSearch(query, k, SearchConfig{SearchWidth: width, UseApproximateSearch: true})
}

// BeamSearch is a SearchConfig preset with width defaulting to k*4,
// backed by parallelHNSWKNN, which splits layer-0 distance computations
// across goroutines once the candidate fan-out is large enough to
// amortize goroutine overhead (see searchLayerParallel).
func (idx *Index) BeamSearch(query []float32, k, width int) ([]int32, error) {
	if width <= 0 {
		width = 4 * k
	}
	if idx.graph == nil {
		return nil, newError(NotIndexed, "index has no HNSW graph")
	}
	return idx.graph.parallelHNSWKNN(Vector{Data: query}, k, SearchConfig{SearchWidth: width})
}

// BruteForceKNNSearch runs the cosine-similarity-with-threshold fallback
// described in spec §4.H, reporting how many ids it actually found via
// outCount (it may be less than k).
func BruteForceKNNSearch(store VectorStore, query []float32, k int, threshold float32) (ids []int32, outCount int, err error) {
	return bruteForceCosineThreshold(store, Vector{Data: query}, k, threshold)
}

// randSeed is a seam for the wall-clock seed CreateHNSWIndex uses by
// default; overridden by tests is unnecessary since they call
// createHNSWIndex directly with a deterministic *rand.Rand.
func randSeed() int64 { return timeNowUnixNano() }
