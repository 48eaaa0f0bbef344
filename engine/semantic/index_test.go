package semantic

import (
	"errors"
	"testing"
)

func TestFlatIndex_SearchOrdering(t *testing.T) {
	ix := newFlatIndex(2)
	if err := ix.add([][]float32{{0, 0}, {3, 4}, {1, 0}}); err != nil {
		t.Fatalf("add: %v", err)
	}

	nbrs, err := ix.search([]float32{0, 0}, 3)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	wantIdx := []int{0, 2, 1}
	wantDist := []float32{0, 1, 25}
	for i, n := range nbrs {
		if n.idx != wantIdx[i] || n.dist != wantDist[i] {
			t.Errorf("hit %d = (%d, %v), want (%d, %v)", i, n.idx, n.dist, wantIdx[i], wantDist[i])
		}
	}
}

func TestFlatIndex_TieBreaksByPosition(t *testing.T) {
	ix := newFlatIndex(2)
	// Two identical vectors: the earlier entry must rank first.
	if err := ix.add([][]float32{{1, 1}, {1, 1}}); err != nil {
		t.Fatalf("add: %v", err)
	}
	nbrs, err := ix.search([]float32{0, 0}, 2)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if nbrs[0].idx != 0 || nbrs[1].idx != 1 {
		t.Errorf("tie order = [%d %d], want [0 1]", nbrs[0].idx, nbrs[1].idx)
	}
}

func TestFlatIndex_QueryDimMismatch(t *testing.T) {
	ix := newFlatIndex(3)
	if err := ix.add([][]float32{{1, 2, 3}}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := ix.search([]float32{1, 2}, 1); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("got %v, want ErrDimensionMismatch", err)
	}
}

func TestFlatIndex_EmptySearch(t *testing.T) {
	ix := newFlatIndex(4)
	nbrs, err := ix.search([]float32{1, 2, 3, 4}, 5)
	if err != nil || nbrs != nil {
		t.Errorf("empty index search = (%v, %v), want (nil, nil)", nbrs, err)
	}
}
