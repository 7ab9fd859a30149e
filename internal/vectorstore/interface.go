package vectorstore

import "context"

// SearchResult is one scored match from a similarity search.
type SearchResult struct {
	PointID string
	Score   float32
	Meta    map[string]any
}

// VectorStore is the query-side interface over the chunk corpus. The corpus
// itself is populated by an external indexing pipeline; this engine only
// reads it.
type VectorStore interface {
	// Search performs a top-K similarity search and returns scored matches
	// with their payloads.
	Search(ctx context.Context, collection string, query []float32, k int) ([]SearchResult, error)
	// CollectionExists checks if a collection exists.
	CollectionExists(ctx context.Context, collection string) (bool, error)
}
