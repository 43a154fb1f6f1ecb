package index

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/clearpathhq/beacon/internal/chunk"
)

// FlatStore is an exact inner-product store backed by a linear scan.
// The corpus is a few thousand vectors at most, so brute force beats any
// approximate structure on both accuracy and simplicity.
type FlatStore struct {
	mu      sync.RWMutex
	dim     int
	vectors [][]float32
	chunks  []chunk.Chunk
}

// NewFlatStore creates an empty store for vectors of the given dimension.
func NewFlatStore(dim int) *FlatStore {
	return &FlatStore{dim: dim}
}

// Dim returns the vector dimension the store accepts.
func (s *FlatStore) Dim() int { return s.dim }

func (s *FlatStore) Upsert(ctx context.Context, entries []Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		if len(e.Vector) != s.dim {
			return fmt.Errorf("flat store: vector dim %d, want %d (chunk %d)", len(e.Vector), s.dim, e.Chunk.ID)
		}
		s.vectors = append(s.vectors, e.Vector)
		s.chunks = append(s.chunks, e.Chunk)
	}
	return nil
}

func (s *FlatStore) Search(ctx context.Context, vector []float32, topK int) ([]Hit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(vector) != s.dim {
		return nil, fmt.Errorf("flat store: query dim %d, want %d", len(vector), s.dim)
	}
	if len(s.vectors) == 0 || topK <= 0 {
		return nil, nil
	}

	hits := make([]Hit, len(s.vectors))
	for i, v := range s.vectors {
		hits[i] = Hit{Chunk: s.chunks[i], Score: Dot(vector, v)}
	}
	// Stable sort keeps insertion order among equal scores.
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })

	if topK < len(hits) {
		hits = hits[:topK]
	}
	return hits, nil
}

func (s *FlatStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vectors), nil
}

func (s *FlatStore) Close() error { return nil }
