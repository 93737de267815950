package database

import (
	"context"

	"github.com/tieubaoca/ragdocs-be/types"
)

// Embedder maps text to a fixed-length vector. All vectors produced within
// one process lifetime share the same dimensionality. Implementations are
// constructed once during wiring and injected; callers never re-trigger
// construction.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// VectorDatabase defines the operations the retrieval pipeline needs from
// the vector index.
type VectorDatabase interface {
	LoadOrCreate(ctx context.Context) error
	Add(ctx context.Context, chunks []types.DocumentChunk) error
	Search(ctx context.Context, query string, k int, filter types.MetadataFilter) ([]types.SearchResult, error)
	DeleteByDocID(docID string) (int, error)
	Save() error
}
