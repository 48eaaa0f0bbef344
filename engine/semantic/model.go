package semantic

import "context"

// Hit is a single retrieval result: the stored text and its squared-L2
// distance from the query embedding. Lower distance means more similar.
type Hit struct {
	Text     string  `json:"text"`
	Distance float32 `json:"distance"`
}

// Embedder turns text into a fixed-length vector. Implementations must be
// deterministic for a given text and model version.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Searcher is the retrieval contract consumed by engine/rag.
type Searcher interface {
	Search(ctx context.Context, query string, k int) ([]Hit, error)
}
