package semantic

import (
	"context"
	"fmt"
	"sync"
)

// DefaultDim matches the all-MiniLM family of sentence embedding models.
const DefaultDim = 384

// Store pairs a document store with an embedding index. Texts and vectors
// form parallel arrays: position i in docs always corresponds to position i
// in the index, and the two are appended together under the write lock so
// the pairing can never be observed torn.
type Store struct {
	mu    sync.RWMutex
	embed Embedder
	index *flatIndex
	docs  []string
}

// NewStore creates an in-memory store for vectors of the given
// dimensionality. dim <= 0 falls back to DefaultDim.
func NewStore(embed Embedder, dim int) *Store {
	if dim <= 0 {
		dim = DefaultDim
	}
	return &Store{embed: embed, index: newFlatIndex(dim)}
}

// Len returns the number of stored documents.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// Reset drops all documents and vectors.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = nil
	s.index.reset()
}

// Add embeds each text and appends text+vector pairs in input order. The
// batch is embedded before the lock is taken; either the whole batch is
// committed or none of it is.
func (s *Store) Add(ctx context.Context, texts []string) error {
	if len(texts) == 0 {
		return nil
	}
	vecs, err := s.embed.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("semantic: embed %d texts: %w", len(texts), err)
	}
	if len(vecs) != len(texts) {
		return fmt.Errorf("semantic: embedder returned %d vectors for %d texts", len(vecs), len(texts))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.index.add(vecs); err != nil {
		return err
	}
	s.docs = append(s.docs, texts...)
	return nil
}

// Replace atomically swaps the store's contents for a new video's chunks.
// The new index is built in full before the swap, so an embedding failure
// leaves the previous video's documents untouched and queries never observe
// a mix of transcripts. The videoID is unused here; the remote store keys
// on it.
func (s *Store) Replace(ctx context.Context, _ string, texts []string) error {
	if len(texts) == 0 {
		s.Reset()
		return nil
	}
	vecs, err := s.embed.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("semantic: embed %d texts: %w", len(texts), err)
	}
	if len(vecs) != len(texts) {
		return fmt.Errorf("semantic: embedder returned %d vectors for %d texts", len(vecs), len(texts))
	}

	s.mu.RLock()
	dim := s.index.dim
	s.mu.RUnlock()
	next := newFlatIndex(dim)
	if err := next.add(vecs); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.index = next
	s.docs = append([]string(nil), texts...)
	return nil
}

// Search embeds the query and returns up to k nearest documents, ascending
// by squared-L2 distance. An empty store returns an empty result; k larger
// than the store returns everything without padding.
func (s *Store) Search(ctx context.Context, query string, k int) ([]Hit, error) {
	if k <= 0 {
		return nil, fmt.Errorf("semantic: k must be positive, got %d", k)
	}

	s.mu.RLock()
	empty := len(s.docs) == 0
	s.mu.RUnlock()
	if empty {
		return nil, nil
	}

	qvec, err := s.embed.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("semantic: embed query: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	nbrs, err := s.index.search(qvec, k)
	if err != nil {
		return nil, err
	}
	hits := make([]Hit, len(nbrs))
	for i, n := range nbrs {
		hits[i] = Hit{Text: s.docs[n.idx], Distance: n.dist}
	}
	return hits, nil
}
