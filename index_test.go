package hnsw

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreateIndex_BruteForceOnly(t *testing.T) {
	store, err := NewSliceStore(randomVectors(100, 8, 30))
	require.NoError(t, err)

	idx, err := CreateIndex(store)
	require.NoError(t, err)

	query, err := store.At(5)
	require.NoError(t, err)
	ids, err := idx.KNNSearch(query.Data, 3)
	require.NoError(t, err)
	require.Equal(t, int32(5), ids[0])
}

func TestCreateIndex_RejectsEmptyStore(t *testing.T) {
	store, err := NewSliceStore(nil)
	require.NoError(t, err)
	_, err = CreateIndex(store)
	require.Error(t, err)
}

func TestCreateHNSWIndex_KNNSearch(t *testing.T) {
	store, err := NewSliceStore(randomVectors(400, 16, 31))
	require.NoError(t, err)

	idx, err := createHNSWIndex(store, 8, 16, 0.3, rand.New(rand.NewSource(31)))
	require.NoError(t, err)

	query, err := store.At(0)
	require.NoError(t, err)
	ids, err := idx.KNNSearch(query.Data, 5)
	require.NoError(t, err)
	require.Len(t, ids, 5)
}

func TestHNSWKNNSearch_NotIndexedWithoutGraph(t *testing.T) {
	store, err := NewSliceStore(randomVectors(10, 4, 32))
	require.NoError(t, err)
	idx, err := CreateIndex(store)
	require.NoError(t, err)

	_, err = idx.HNSWKNNSearch(randomVectors(1, 4, 32)[0].Data, 3, SearchConfig{})
	require.Error(t, err)
	var hErr *Error
	require.ErrorAs(t, err, &hErr)
	require.Equal(t, NotIndexed, hErr.Kind)
}

func TestApproximateSearch_DefaultsWidthToTwoK(t *testing.T) {
	store, err := NewSliceStore(randomVectors(300, 16, 33))
	require.NoError(t, err)
	idx, err := createHNSWIndex(store, 8, 16, 0.3, rand.New(rand.NewSource(33)))
	require.NoError(t, err)

	query, err := store.At(0)
	require.NoError(t, err)
	ids, err := idx.ApproximateSearch(query.Data, 5, 0)
	require.NoError(t, err)
	require.Len(t, ids, 5)
}

func TestBeamSearch_NotIndexedWithoutGraph(t *testing.T) {
	store, err := NewSliceStore(randomVectors(10, 4, 34))
	require.NoError(t, err)
	idx, err := CreateIndex(store)
	require.NoError(t, err)

	_, err = idx.BeamSearch(randomVectors(1, 4, 34)[0].Data, 3, 0)
	require.Error(t, err)
}

func TestNewIndexFromGraph_RoundTripsThroughSerialize(t *testing.T) {
	store, err := NewSliceStore(randomVectors(200, 8, 35))
	require.NoError(t, err)
	idx, err := createHNSWIndex(store, 8, 16, 0.3, rand.New(rand.NewSource(35)))
	require.NoError(t, err)

	g2, err := NewIndexFromGraph(store, idx.graph)
	require.NoError(t, err)

	query, err := store.At(0)
	require.NoError(t, err)
	ids, err := g2.KNNSearch(query.Data, 5)
	require.NoError(t, err)
	require.Len(t, ids, 5)
}

func TestBruteForceKNNSearch_PackageFunction(t *testing.T) {
	store, err := NewSliceStore(randomVectors(50, 8, 36))
	require.NoError(t, err)
	query, err := store.At(0)
	require.NoError(t, err)

	ids, n, err := BruteForceKNNSearch(store, query.Data, 5, 0)
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Len(t, ids, 5)
}
