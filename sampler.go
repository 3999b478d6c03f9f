package hnsw

import (
	"math/rand"
	"time"
)

// LayerSampler draws a new node's top layer from a geometric distribution
// parameterized by a level factor mL, via an injected PRNG — avoiding the
// process-wide-PRNG coupling spec §5 flags as a hazard for concurrent
// builds in one process.
type LayerSampler struct {
	ml  float64
	rng *rand.Rand
}

// NewLayerSampler returns a sampler seeded from the wall clock, matching
// the teacher's defaultRand() contract: nondeterministic. Reproducible
// tests use NewSeededLayerSampler instead.
func NewLayerSampler(ml float64) *LayerSampler {
	return &LayerSampler{ml: ml, rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewSeededLayerSampler returns a sampler with a caller-supplied PRNG, for
// deterministic builds in tests and benchmarks.
func NewSeededLayerSampler(ml float64, rng *rand.Rand) *LayerSampler {
	return &LayerSampler{ml: ml, rng: rng}
}

// Sample draws a layer: starting at 0, repeatedly draw u ~ U[0,1) and
// increment while u < mL.
func (s *LayerSampler) Sample() int32 {
	var layer int32
	for s.rng.Float64() < s.ml {
		layer++
	}
	return layer
}
