package hnsw

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAnalyzer_EmptyGraph(t *testing.T) {
	a := &Analyzer{Graph: &Graph{}}
	require.Equal(t, 0, a.Height())
	require.Nil(t, a.Topography())
	require.Nil(t, a.Connectivity())
}

func TestAnalyzer_SingleNode(t *testing.T) {
	store, err := NewSliceStore([]Vector{{Data: []float32{1, 2, 3}}})
	require.NoError(t, err)
	g, err := BuildHNSWGraph(store, 8, 16, 0.3, 32, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	a := &Analyzer{Graph: g}
	require.GreaterOrEqual(t, a.Height(), 1)
	require.True(t, a.WeaklyConnectedAtLayerZero())
}

func TestAnalyzer_Topography(t *testing.T) {
	g, _ := buildTestGraph(t, 300, 8, 9)
	a := &Analyzer{Graph: g}

	topo := a.Topography()
	require.Len(t, topo, a.Height())
	require.Equal(t, g.Len(), topo[0])

	// Every layer above 0 must have no more nodes than the layer below.
	for l := 1; l < len(topo); l++ {
		require.LessOrEqual(t, topo[l], topo[l-1])
	}
}

func TestAnalyzer_Connectivity(t *testing.T) {
	g, _ := buildTestGraph(t, 300, 8, 10)
	a := &Analyzer{Graph: g}

	conn := a.Connectivity()
	require.NotEmpty(t, conn)
	for _, avg := range conn {
		require.GreaterOrEqual(t, avg, 0.0)
	}
}

func TestAnalyzer_WeaklyConnectedAtLayerZero(t *testing.T) {
	g, _ := buildTestGraph(t, 500, 8, 11)
	a := &Analyzer{Graph: g}
	require.True(t, a.WeaklyConnectedAtLayerZero())
}
