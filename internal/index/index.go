// Package index embeds document chunks into L2-normalized vectors and
// serves k-nearest-neighbor queries over them by inner product.
package index

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/clearpathhq/beacon/internal/chunk"
	"github.com/clearpathhq/beacon/internal/llm"
)

// ErrUnavailable reports a query arriving before the index is built or
// loaded. Retrieval fails fast instead of searching a partial structure.
var ErrUnavailable = errors.New("index: not ready")

// embedBatchSize bounds how many chunk texts go to the embedding backend in
// one request.
const embedBatchSize = 64

// Index couples an embedding function with a vector store. The same
// provider embeds both the corpus at build time and every query, keeping
// corpus and query vectors comparable.
type Index struct {
	embedder llm.Provider
	store    Store
	size     int
}

// New wraps an already-populated store, e.g. one restored from a snapshot.
func New(embedder llm.Provider, store Store, size int) *Index {
	return &Index{embedder: embedder, store: store, size: size}
}

// Build embeds every chunk, normalizes each vector and inserts them into
// the store in chunk order. Embedding failures abort the build: a partial
// index would return silently wrong results.
func Build(ctx context.Context, embedder llm.Provider, store Store, chunks []chunk.Chunk) (*Index, error) {
	for start := 0; start < len(chunks); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Text
		}
		vectors, err := embedder.Embed(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embedding chunks %d..%d: %w", start, end-1, err)
		}
		if len(vectors) != len(batch) {
			return nil, fmt.Errorf("embedding count mismatch: got %d, want %d", len(vectors), len(batch))
		}

		entries := make([]Entry, len(batch))
		for i, c := range batch {
			normalized, err := Normalize(vectors[i])
			if err != nil {
				return nil, fmt.Errorf("chunk %d: %w", c.ID, err)
			}
			entries[i] = Entry{Chunk: c, Vector: normalized}
		}
		if err := store.Upsert(ctx, entries); err != nil {
			return nil, fmt.Errorf("index upsert: %w", err)
		}
	}
	return &Index{embedder: embedder, store: store, size: len(chunks)}, nil
}

// EmbedQuery embeds a query string through the identical embedding and
// normalization path used at build time.
func (ix *Index) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := ix.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embedding query: got %d vectors, want 1", len(vectors))
	}
	return Normalize(vectors[0])
}

// Search returns the topK nearest chunks by inner product.
func (ix *Index) Search(ctx context.Context, vector []float32, topK int) ([]Hit, error) {
	return ix.store.Search(ctx, vector, topK)
}

// Size returns the number of indexed chunks.
func (ix *Index) Size() int { return ix.size }

// Close releases the underlying store.
func (ix *Index) Close() error { return ix.store.Close() }

// Handle is the process-wide reference to the current Index. It starts
// empty and is swapped atomically once build (or load) plus persist has
// completed, so concurrent queries never observe a partially built index.
type Handle struct {
	ptr atomic.Pointer[Index]
}

// Swap publishes a fully built index.
func (h *Handle) Swap(ix *Index) { h.ptr.Store(ix) }

// Get returns the current index, or ErrUnavailable before the first Swap.
func (h *Handle) Get() (*Index, error) {
	ix := h.ptr.Load()
	if ix == nil {
		return nil, ErrUnavailable
	}
	return ix, nil
}

// Ready reports whether an index has been published.
func (h *Handle) Ready() bool { return h.ptr.Load() != nil }
