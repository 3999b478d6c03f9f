package hnsw

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBruteForceEuclidean_FindsExactNearest(t *testing.T) {
	store, err := NewSliceStore([]Vector{
		{Data: []float32{0, 0}},
		{Data: []float32{10, 10}},
		{Data: []float32{1, 1}},
		{Data: []float32{0.5, 0.5}},
	})
	require.NoError(t, err)

	ids, err := bruteForceEuclidean(store, Vector{Data: []float32{0, 0}}, 3)
	require.NoError(t, err)
	require.Equal(t, []int32{0, 3, 2}, ids)
}

func TestBruteForceEuclidean_PadsWithSentinelWhenFewerThanK(t *testing.T) {
	store, err := NewSliceStore([]Vector{{Data: []float32{0, 0}}})
	require.NoError(t, err)

	ids, err := bruteForceEuclidean(store, Vector{Data: []float32{0, 0}}, 5)
	require.NoError(t, err)
	require.Equal(t, int32(0), ids[0])
	for _, id := range ids[1:] {
		require.Equal(t, int32(-1), id)
	}
}

func TestBruteForceEuclidean_RejectsNonPositiveK(t *testing.T) {
	store, err := NewSliceStore([]Vector{{Data: []float32{0, 0}}})
	require.NoError(t, err)
	_, err = bruteForceEuclidean(store, Vector{Data: []float32{0, 0}}, 0)
	require.Error(t, err)
}

func TestBruteForceCosineThreshold_FiltersByThreshold(t *testing.T) {
	store, err := NewSliceStore([]Vector{
		{Data: []float32{1, 0}},
		{Data: []float32{0, 1}},
		{Data: []float32{0.99, 0.01}},
	})
	require.NoError(t, err)

	ids, n, err := bruteForceCosineThreshold(store, Vector{Data: []float32{1, 0}}, 10, 0.9)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.ElementsMatch(t, []int32{0, 2}, ids)
}

func TestBruteForceCosineThreshold_TruncatesToK(t *testing.T) {
	store, err := NewSliceStore([]Vector{
		{Data: []float32{1, 0}},
		{Data: []float32{1, 0.01}},
		{Data: []float32{1, 0.02}},
	})
	require.NoError(t, err)

	ids, n, err := bruteForceCosineThreshold(store, Vector{Data: []float32{1, 0}}, 1, 0)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, []int32{0}, ids)
}

func TestBruteForceCosineThreshold_SkipsZeroNormVectors(t *testing.T) {
	store, err := NewSliceStore([]Vector{
		{Data: []float32{0, 0}},
		{Data: []float32{1, 1}},
	})
	require.NoError(t, err)

	ids, n, err := bruteForceCosineThreshold(store, Vector{Data: []float32{1, 1}}, 10, -1)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, []int32{1}, ids)
}
