package index

import (
	"context"

	"github.com/clearpathhq/beacon/internal/chunk"
)

// Entry pairs a chunk with its normalized embedding vector.
type Entry struct {
	Chunk  chunk.Chunk
	Vector []float32
}

// Hit is a single nearest-neighbor match, scored by inner product.
type Hit struct {
	Chunk chunk.Chunk
	Score float32
}

// Store holds (chunk, vector) pairs and answers k-nearest-neighbor queries
// by inner product. Implementations: FlatStore (in-process, persistable) and
// QdrantStore (remote).
type Store interface {
	Upsert(ctx context.Context, entries []Entry) error
	// Search returns the topK highest inner-product matches in descending
	// score order. Ties keep insertion order.
	Search(ctx context.Context, vector []float32, topK int) ([]Hit, error)
	Count(ctx context.Context) (int, error)
	Close() error
}
