package hnsw

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewSliceStore_RejectsMismatchedDimensions(t *testing.T) {
	_, err := NewSliceStore([]Vector{
		{Data: []float32{1, 2, 3}},
		{Data: []float32{1, 2}},
	})
	require.Error(t, err)
	var hErr *Error
	require.ErrorAs(t, err, &hErr)
	require.Equal(t, InvalidArgument, hErr.Kind)
}

func TestNewSliceStore_EmptyHasZeroDim(t *testing.T) {
	s, err := NewSliceStore(nil)
	require.NoError(t, err)
	require.Equal(t, 0, s.Dim())
	require.Equal(t, 0, s.Len())
}

func TestSliceStore_AtOutOfRange(t *testing.T) {
	s, err := NewSliceStore([]Vector{{Data: []float32{1}}})
	require.NoError(t, err)
	_, err = s.At(5)
	require.Error(t, err)
	_, err = s.At(-1)
	require.Error(t, err)
}

func TestSliceStore_At(t *testing.T) {
	s, err := NewSliceStore([]Vector{{Data: []float32{1, 2}}, {Data: []float32{3, 4}}})
	require.NoError(t, err)
	v, err := s.At(1)
	require.NoError(t, err)
	require.Equal(t, []float32{3, 4}, v.Data)
	require.Equal(t, 2, v.Len())
}
