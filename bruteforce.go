package hnsw

import "github.com/chewxy/math32"

// bruteForceEuclidean is the exact fallback used when an Index has no
// graph (use_hnsw=false): a sorted insertion array of size k seeded with
// sentinel distances, so callers always get back exactly k ids — padded
// with -1 if the store holds fewer than k vectors.
func bruteForceEuclidean(store VectorStore, query Vector, k int) ([]int32, error) {
	if k <= 0 {
		return nil, newError(InvalidArgument, "k must be greater than 0")
	}

	ids := make([]int32, k)
	dists := make([]float32, k)
	for i := range ids {
		ids[i] = -1
		dists[i] = math32.MaxFloat32
	}

	n := store.Len()
	for i := 0; i < n; i++ {
		v, err := store.At(i)
		if err != nil {
			return nil, err
		}
		d := Euclidean(query, v)

		// Insertion-sort d into the sorted slots, evicting the worst.
		if d >= dists[k-1] {
			continue
		}
		pos := k - 1
		for pos > 0 && dists[pos-1] > d {
			dists[pos] = dists[pos-1]
			ids[pos] = ids[pos-1]
			pos--
		}
		dists[pos] = d
		ids[pos] = int32(i)
	}

	return ids, nil
}

// cosineCandidate pairs a vector id with its cosine similarity to a query,
// used only by bruteForceCosineThreshold's sort step.
type cosineCandidate struct {
	id  int32
	sim float32
}

// bruteForceCosineThreshold is the cosine-similarity brute-force helper:
// every vector with similarity >= threshold is kept (zero-norm vectors are
// skipped, per Cosine's contract), the survivors are sorted descending by
// similarity, and the result is truncated to k. outCount reports how many
// ids were actually returned.
func bruteForceCosineThreshold(store VectorStore, query Vector, k int, threshold float32) (ids []int32, outCount int, err error) {
	if k <= 0 {
		return nil, 0, newError(InvalidArgument, "k must be greater than 0")
	}

	var matches []cosineCandidate
	n := store.Len()
	for i := 0; i < n; i++ {
		v, err := store.At(i)
		if err != nil {
			return nil, 0, err
		}
		sim, ok := Cosine(query, v)
		if !ok {
			continue
		}
		if sim >= threshold {
			matches = append(matches, cosineCandidate{id: int32(i), sim: sim})
		}
	}

	// Descending similarity; ties keep store order (stable sort).
	for i := 1; i < len(matches); i++ {
		for j := i; j > 0 && matches[j].sim > matches[j-1].sim; j-- {
			matches[j], matches[j-1] = matches[j-1], matches[j]
		}
	}

	if len(matches) > k {
		matches = matches[:k]
	}

	out := make([]int32, len(matches))
	for i, m := range matches {
		out[i] = m.id
	}
	return out, len(out), nil
}
