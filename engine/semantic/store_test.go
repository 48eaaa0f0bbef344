package semantic

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
)

// fakeEmbedder maps known texts to fixed vectors.
type fakeEmbedder struct {
	dim     int
	vectors map[string][]float32
	err     error
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	return make([]float32, f.dim), nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := f.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func newTestStore(t *testing.T) (*Store, *fakeEmbedder) {
	t.Helper()
	emb := &fakeEmbedder{
		dim: 3,
		vectors: map[string][]float32{
			"The sun is a star": {1, 0, 0},
			"Stars emit light":  {0, 1, 0},
			"Comets have tails": {0, 0, 1},
			"What is the sun":   {0.9, 0.1, 0},
		},
	}
	return NewStore(emb, 3), emb
}

func TestStore_AlignmentAfterEveryAdd(t *testing.T) {
	store, _ := newTestStore(t)
	batches := [][]string{
		{"The sun is a star"},
		{"Stars emit light", "Comets have tails"},
		{},
	}
	want := 0
	for _, batch := range batches {
		if err := store.Add(context.Background(), batch); err != nil {
			t.Fatalf("Add(%v): %v", batch, err)
		}
		want += len(batch)
		if store.Len() != want {
			t.Fatalf("after Add(%v): Len() = %d, want %d", batch, store.Len(), want)
		}
		if got := len(store.index.vecs); got != want {
			t.Fatalf("index has %d vectors, store has %d docs", got, want)
		}
	}
}

func TestStore_SearchOrderedAndDeterministic(t *testing.T) {
	store, _ := newTestStore(t)
	texts := []string{"The sun is a star", "Stars emit light", "Comets have tails"}
	if err := store.Add(context.Background(), texts); err != nil {
		t.Fatalf("Add: %v", err)
	}

	first, err := store.Search(context.Background(), "What is the sun", 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(first) != 3 {
		t.Fatalf("got %d hits, want 3", len(first))
	}
	if first[0].Text != "The sun is a star" {
		t.Errorf("nearest = %q, want sun segment", first[0].Text)
	}
	for i := 1; i < len(first); i++ {
		if first[i].Distance < first[i-1].Distance {
			t.Errorf("distances not ascending at %d: %v then %v", i, first[i-1].Distance, first[i].Distance)
		}
	}

	for run := 0; run < 5; run++ {
		again, err := store.Search(context.Background(), "What is the sun", 3)
		if err != nil {
			t.Fatalf("repeat Search: %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d: results differ: %v vs %v", run, first, again)
		}
	}
}

func TestStore_EmptyIndexReturnsEmpty(t *testing.T) {
	store, _ := newTestStore(t)
	hits, err := store.Search(context.Background(), "anything", 5)
	if err != nil {
		t.Fatalf("Search on empty store: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("got %d hits from empty store, want 0", len(hits))
	}
}

func TestStore_KLargerThanStore(t *testing.T) {
	store, _ := newTestStore(t)
	if err := store.Add(context.Background(), []string{"The sun is a star", "Stars emit light"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	hits, err := store.Search(context.Background(), "What is the sun", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 2 {
		t.Errorf("got %d hits, want all 2 without padding", len(hits))
	}
}

func TestStore_DimensionMismatch(t *testing.T) {
	emb := &fakeEmbedder{dim: 3, vectors: map[string][]float32{"short": {1, 2}}}
	store := NewStore(emb, 3)
	err := store.Add(context.Background(), []string{"short"})
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("got %v, want ErrDimensionMismatch", err)
	}
	if store.Len() != 0 {
		t.Errorf("mismatched add committed %d docs", store.Len())
	}
}

func TestStore_MismatchedBatchCommitsNothing(t *testing.T) {
	emb := &fakeEmbedder{
		dim: 3,
		vectors: map[string][]float32{
			"ok":  {1, 0, 0},
			"bad": {1, 0},
		},
	}
	store := NewStore(emb, 3)
	err := store.Add(context.Background(), []string{"ok", "bad"})
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("got %v, want ErrDimensionMismatch", err)
	}
	if store.Len() != 0 {
		t.Errorf("partial batch committed: Len() = %d, want 0", store.Len())
	}
}

func TestStore_EmbedFailurePropagates(t *testing.T) {
	store, emb := newTestStore(t)
	if err := store.Add(context.Background(), []string{"The sun is a star"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	emb.err = fmt.Errorf("connection refused")
	if _, err := store.Search(context.Background(), "query", 1); err == nil {
		t.Fatal("expected error when query embedding fails")
	}
}

func TestStore_Reset(t *testing.T) {
	store, _ := newTestStore(t)
	if err := store.Add(context.Background(), []string{"The sun is a star"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	store.Reset()
	if store.Len() != 0 {
		t.Errorf("Len() after Reset = %d, want 0", store.Len())
	}
	hits, err := store.Search(context.Background(), "What is the sun", 1)
	if err != nil || len(hits) != 0 {
		t.Errorf("Search after Reset = (%v, %v), want empty", hits, err)
	}
}

func TestStore_KMustBePositive(t *testing.T) {
	store, _ := newTestStore(t)
	if _, err := store.Search(context.Background(), "q", 0); err == nil {
		t.Error("expected error for k=0")
	}
}

func TestStore_ReplaceSwapsContents(t *testing.T) {
	store, _ := newTestStore(t)
	if err := store.Replace(context.Background(), "video-a", []string{"The sun is a star"}); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if err := store.Replace(context.Background(), "video-b", []string{"Comets have tails"}); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if store.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", store.Len())
	}
	hits, err := store.Search(context.Background(), "What is the sun", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	for _, h := range hits {
		if h.Text == "The sun is a star" {
			t.Error("previous video's document survived Replace")
		}
	}
}

func TestStore_FailedReplaceKeepsPreviousContents(t *testing.T) {
	store, emb := newTestStore(t)
	if err := store.Replace(context.Background(), "video-a", []string{"The sun is a star"}); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	emb.err = fmt.Errorf("connection refused")
	if err := store.Replace(context.Background(), "video-b", []string{"Comets have tails"}); err == nil {
		t.Fatal("expected error when embedding fails mid-replace")
	}

	if store.Len() != 1 {
		t.Fatalf("Len() after failed Replace = %d, want 1", store.Len())
	}
	emb.err = nil
	hits, err := store.Search(context.Background(), "What is the sun", 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 || hits[0].Text != "The sun is a star" {
		t.Errorf("previous video not queryable after failed Replace: %v", hits)
	}
}
