// Package semantic owns the document store and embedding index. The default
// backend is an exact in-memory index: a transcript holds tens to low
// hundreds of segments, so brute-force nearest-neighbour search is cheap and
// avoids approximate structures entirely. A Qdrant-backed store is provided
// for deployments that need the index to survive the process.
package semantic

import (
	"fmt"
	"sort"
)

// ErrDimensionMismatch is returned when a vector's length differs from the
// index's configured dimensionality.
var ErrDimensionMismatch = fmt.Errorf("semantic: embedding dimension mismatch")

// flatIndex is a brute-force squared-L2 index over dense vectors. Entries are
// append-only; position in vecs is the entry's identity. Not safe for
// concurrent use; Store serialises access.
type flatIndex struct {
	dim  int
	vecs [][]float32
}

func newFlatIndex(dim int) *flatIndex {
	return &flatIndex{dim: dim}
}

func (ix *flatIndex) len() int { return len(ix.vecs) }

func (ix *flatIndex) reset() { ix.vecs = nil }

// add appends vectors in input order. All vectors are checked before any is
// appended, so a dimension mismatch commits nothing.
func (ix *flatIndex) add(vecs [][]float32) error {
	for _, v := range vecs {
		if len(v) != ix.dim {
			return fmt.Errorf("%w: got %d, index configured for %d", ErrDimensionMismatch, len(v), ix.dim)
		}
	}
	ix.vecs = append(ix.vecs, vecs...)
	return nil
}

// neighbor is one nearest-neighbour hit: entry position and squared L2
// distance to the query.
type neighbor struct {
	idx  int
	dist float32
}

// search returns up to k entries nearest to query, ascending by distance.
// An empty index yields an empty result, not an error. Ties sort by entry
// position so repeated searches are deterministic.
func (ix *flatIndex) search(query []float32, k int) ([]neighbor, error) {
	if len(ix.vecs) == 0 {
		return nil, nil
	}
	if len(query) != ix.dim {
		return nil, fmt.Errorf("%w: query has %d, index configured for %d", ErrDimensionMismatch, len(query), ix.dim)
	}

	out := make([]neighbor, len(ix.vecs))
	for i, v := range ix.vecs {
		out[i] = neighbor{idx: i, dist: sqDistL2(query, v)}
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].dist != out[b].dist {
			return out[a].dist < out[b].dist
		}
		return out[a].idx < out[b].idx
	})
	if k < len(out) {
		out = out[:k]
	}
	return out, nil
}

// sqDistL2 computes squared Euclidean distance. Over normalized sentence
// embeddings this preserves cosine ordering, which is all retrieval needs.
func sqDistL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
