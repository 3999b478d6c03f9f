package hnsw

import (
	"github.com/chewxy/math32"
	"github.com/viterin/vek/vek32"
)

// Euclidean returns the L2 distance between a and b in a single pass, no
// early exit. If the two vectors have different lengths, it degrades to
// math32.MaxFloat32 (the largest finite float32) instead of returning an
// error: callers treat the sentinel as "never better", and a single
// malformed vector shouldn't abort an entire search (see Error's
// propagation policy).
func Euclidean(a, b Vector) float32 {
	if len(a.Data) != len(b.Data) {
		return math32.MaxFloat32
	}
	var sum float32
	for i := range a.Data {
		diff := a.Data[i] - b.Data[i]
		sum += diff * diff
	}
	return math32.Sqrt(sum)
}

// Cosine returns the cosine similarity between a and b and ok=true, or
// ok=false if either vector has zero norm (cosine is undefined there, so
// the pair is dropped rather than counted as a match).
func Cosine(a, b Vector) (sim float32, ok bool) {
	if len(a.Data) != len(b.Data) {
		return 0, false
	}

	dot := vek32.Dot(a.Data, b.Data)
	normA := math32.Sqrt(vek32.Dot(a.Data, a.Data))
	normB := math32.Sqrt(vek32.Dot(b.Data, b.Data))
	if normA == 0 || normB == 0 {
		return 0, false
	}

	return dot / (normA * normB), true
}
