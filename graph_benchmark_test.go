package hnsw

import (
	"math/rand"
	"testing"
)

func benchmarkVectors(n, dim int) []Vector {
	rng := rand.New(rand.NewSource(42))
	vectors := make([]Vector, n)
	for i := range vectors {
		data := make([]float32, dim)
		for j := range data {
			data[j] = rng.Float32()
		}
		vectors[i] = Vector{Data: data}
	}
	return vectors
}

func BenchmarkBuildHNSWGraph(b *testing.B) {
	store, err := NewSliceStore(benchmarkVectors(5000, 128))
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := BuildHNSWGraph(store, 16, 32, 0.3, 64, rand.New(rand.NewSource(int64(i)))); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSearchLayer(b *testing.B) {
	store, err := NewSliceStore(benchmarkVectors(5000, 128))
	if err != nil {
		b.Fatal(err)
	}
	g, err := BuildHNSWGraph(store, 16, 32, 0.3, 64, rand.New(rand.NewSource(1)))
	if err != nil {
		b.Fatal(err)
	}
	query, err := store.At(0)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := g.SearchLayer(g.EntryPoint(), 0, query, 20); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkHNSWKNNSearch(b *testing.B) {
	store, err := NewSliceStore(benchmarkVectors(5000, 128))
	if err != nil {
		b.Fatal(err)
	}
	idx, err := createHNSWIndex(store, 16, 32, 0.3, rand.New(rand.NewSource(1)))
	if err != nil {
		b.Fatal(err)
	}
	query, err := store.At(0)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := idx.KNNSearch(query.Data, 10); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkBruteForceKNNSearch(b *testing.B) {
	store, err := NewSliceStore(benchmarkVectors(2000, 128))
	if err != nil {
		b.Fatal(err)
	}
	query, err := store.At(0)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := bruteForceEuclidean(store, query, 10); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkBeamSearchParallel(b *testing.B) {
	store, err := NewSliceStore(benchmarkVectors(8000, 128))
	if err != nil {
		b.Fatal(err)
	}
	idx, err := createHNSWIndex(store, 16, 32, 0.3, rand.New(rand.NewSource(1)))
	if err != nil {
		b.Fatal(err)
	}
	query, err := store.At(0)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := idx.BeamSearch(query.Data, 10, 0); err != nil {
			b.Fatal(err)
		}
	}
}
