package hnsw

// SearchConfig controls an HNSW query. MaxDistanceComputations and
// AccuracyThreshold are advisory only — the reference algorithm does not
// enforce them (spec §6, §9 Open Question #4).
type SearchConfig struct {
	// SearchWidth is ef at layer 0. Zero means "use the caller's default"
	// (2k for HNSWKNNSearch).
	SearchWidth int

	// MaxDistanceComputations is an advisory cap; not enforced.
	MaxDistanceComputations int

	// AccuracyThreshold is advisory; not enforced.
	AccuracyThreshold float32

	// UseApproximateSearch is set by the ApproximateSearch preset
	// (width = k*2). No search path reads it: the choice between that
	// preset and the BeamSearch preset (width = k*4) is made by which Index
	// method is called, not by this field.
	UseApproximateSearch bool
}

// hnswKNN is component G: zoom down to layer 0 via 1-best descents, then a
// full-width beam search at layer 0, truncated to k.
func (g *Graph) hnswKNN(query Vector, k int, cfg SearchConfig) ([]int32, error) {
	if k <= 0 {
		return nil, newError(InvalidArgument, "k must be greater than 0")
	}

	ef := cfg.SearchWidth
	if ef <= 0 {
		ef = 2 * k
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

	ids, err := g.SearchLayer(entry, 0, query, ef)
	if err != nil {
		return nil, err
	}

	if len(ids) > k {
		ids = ids[:k]
	}
	return ids, nil
}
