package main

import (
	"fmt"
	"log"
	"math/rand"

	"github.com/nnidx/hnsw"
)

func main() {
	rng := rand.New(rand.NewSource(42))

	vectors := make([]hnsw.Vector, 2000)
	for i := range vectors {
		data := make([]float32, 32)
		for j := range data {
			data[j] = rng.Float32()
		}
		vectors[i] = hnsw.Vector{Data: data}
	}

	store, err := hnsw.NewSliceStore(vectors)
	if err != nil {
		log.Fatalf("failed to build vector store: %v", err)
	}

	idx, err := hnsw.CreateHNSWIndex(store, 16, 32, 1.0/3.0)
	if err != nil {
		log.Fatalf("failed to build index: %v", err)
	}

	query := vectors[0].Data
	exact, _, err := hnsw.BruteForceKNNSearch(store, query, 5, 0)
	if err != nil {
		log.Fatalf("brute-force search failed: %v", err)
	}
	fmt.Printf("exact neighbors of vector 0: %v\n", exact)

	approx, err := idx.KNNSearch(query, 5)
	if err != nil {
		log.Fatalf("approximate search failed: %v", err)
	}
	fmt.Printf("approximate neighbors of vector 0: %v\n", approx)

	beam, err := idx.BeamSearch(query, 5, 0)
	if err != nil {
		log.Fatalf("beam search failed: %v", err)
	}
	fmt.Printf("beam search neighbors of vector 0: %v\n", beam)
}
