package index

import (
	"errors"
	"fmt"
	"sort"
)

// Sentinel errors for index operations.
var (
	// ErrDimensionMismatch is returned when a query vector's width does not
	// match the index.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrInvalidK is returned when a search is requested with k < 1.
	ErrInvalidK = errors.New("k must be >= 1")

	// ErrEmptyIndex is returned when constructing an index over no vectors.
	ErrEmptyIndex = errors.New("empty or nil vectors")
)

// Hit is a single vector search result. Distance is the squared Euclidean
// distance between the query and the document embedding; lower is closer.
type Hit struct {
	DocumentID int
	Distance   float64
}

// Flat is an exact nearest-neighbor index over a fixed embedding matrix.
//
// Search is brute force: every stored vector is scored against the query.
// For corpora in the hundreds to low thousands of records this is faster
// than maintaining an approximate structure and it is fully deterministic,
// which the downstream relevance thresholds depend on.
type Flat struct {
	vectors [][]float32
	dim     int
}

// NewFlat builds a flat index over the given vectors. The vectors are
// shared, not copied; callers must not mutate them afterwards.
func NewFlat(vectors [][]float32) (*Flat, error) {
	if len(vectors) == 0 {
		return nil, ErrEmptyIndex
	}
	dim := len(vectors[0])
	if dim == 0 {
		return nil, fmt.Errorf("%w: zero-width vectors", ErrEmptyIndex)
	}
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("%w: row %d has dimension %d, want %d",
				ErrDimensionMismatch, i, len(v), dim)
		}
	}
	return &Flat{vectors: vectors, dim: dim}, nil
}

// Dimension returns the width of the indexed vectors.
func (f *Flat) Dimension() int {
	return f.dim
}

// Len returns the number of indexed vectors.
func (f *Flat) Len() int {
	return len(f.vectors)
}

// Search returns up to k hits ordered by ascending distance. Ties break on
// the lower document ID so that results are deterministic for a fixed query
// and index state.
func (f *Flat) Search(query []float32, k int) ([]Hit, error) {
	if k < 1 {
		return nil, ErrInvalidK
	}
	if len(query) != f.dim {
		return nil, fmt.Errorf("%w: query has dimension %d, index has %d",
			ErrDimensionMismatch, len(query), f.dim)
	}

	hits := make([]Hit, len(f.vectors))
	for i, v := range f.vectors {
		hits[i] = Hit{DocumentID: i, Distance: squaredL2(query, v)}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Distance != hits[j].Distance {
			return hits[i].Distance < hits[j].Distance
		}
		return hits[i].DocumentID < hits[j].DocumentID
	})

	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k], nil
}

// squaredL2 computes the squared Euclidean distance between two vectors of
// equal length. The square root is never needed: ordering and the
// similarity transform both work on squared distance.
func squaredL2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}
