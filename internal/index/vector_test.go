package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFlat(t *testing.T) {
	t.Run("empty vectors", func(t *testing.T) {
		_, err := NewFlat(nil)
		assert.ErrorIs(t, err, ErrEmptyIndex)
	})

	t.Run("ragged matrix", func(t *testing.T) {
		_, err := NewFlat([][]float32{{1, 2}, {3}})
		assert.ErrorIs(t, err, ErrDimensionMismatch)
	})

	t.Run("valid matrix", func(t *testing.T) {
		f, err := NewFlat([][]float32{{1, 2}, {3, 4}, {5, 6}})
		require.NoError(t, err)
		assert.Equal(t, 2, f.Dimension())
		assert.Equal(t, 3, f.Len())
	})
}

func TestFlatSearch(t *testing.T) {
	f, err := NewFlat([][]float32{
		{0, 0}, // id 0
		{3, 4}, // id 1, distance 25 from origin
		{1, 0}, // id 2, distance 1 from origin
	})
	require.NoError(t, err)

	hits, err := f.Search([]float32{0, 0}, 3)
	require.NoError(t, err)
	require.Len(t, hits, 3)

	assert.Equal(t, 0, hits[0].DocumentID)
	assert.Equal(t, 0.0, hits[0].Distance)
	assert.Equal(t, 2, hits[1].DocumentID)
	assert.InDelta(t, 1.0, hits[1].Distance, 1e-9)
	assert.Equal(t, 1, hits[2].DocumentID)
	assert.InDelta(t, 25.0, hits[2].Distance, 1e-9)
}

func TestFlatSearchTopKLimits(t *testing.T) {
	f, err := NewFlat([][]float32{{0}, {1}, {2}, {3}})
	require.NoError(t, err)

	hits, err := f.Search([]float32{0}, 2)
	require.NoError(t, err)
	assert.Len(t, hits, 2)

	// k larger than the corpus returns everything.
	hits, err = f.Search([]float32{0}, 100)
	require.NoError(t, err)
	assert.Len(t, hits, 4)
}

func TestFlatSearchDeterministicTies(t *testing.T) {
	// Three identical vectors: ties must resolve by ascending document ID,
	// every time.
	f, err := NewFlat([][]float32{{1, 1}, {1, 1}, {1, 1}})
	require.NoError(t, err)

	for range 5 {
		hits, err := f.Search([]float32{1, 1}, 3)
		require.NoError(t, err)
		assert.Equal(t, []Hit{{0, 0}, {1, 0}, {2, 0}}, hits)
	}
}

func TestFlatSearchErrors(t *testing.T) {
	f, err := NewFlat([][]float32{{1, 2}})
	require.NoError(t, err)

	_, err = f.Search([]float32{1}, 1)
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	_, err = f.Search([]float32{1, 2}, 0)
	assert.ErrorIs(t, err, ErrInvalidK)
}
