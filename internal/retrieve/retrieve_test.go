package retrieve

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/clearpathhq/beacon/internal/chunk"
	"github.com/clearpathhq/beacon/internal/index"
	"github.com/clearpathhq/beacon/internal/llm/llmtest"
)

// scoredHandle builds an index whose chunks score exactly as given against
// the query, via vector overrides on the fake provider.
func scoredHandle(t *testing.T, fake *llmtest.Provider, query string, scores []float32) *index.Handle {
	t.Helper()
	ctx := context.Background()

	if fake.Vectors == nil {
		fake.Vectors = make(map[string][]float32)
	}
	// Query embeds to the first axis; chunk i embeds to a vector whose
	// first component is its target score.
	fake.Vectors[query] = []float32{1, 0, 0}

	store := index.NewFlatStore(3)
	for i, score := range scores {
		rest := float32(math.Sqrt(float64(1 - score*score)))
		entries := []index.Entry{{
			Chunk:  chunk.Chunk{ID: i, DocumentName: "doc.txt", Text: "chunk text"},
			Vector: []float32{score, rest, 0},
		}}
		if err := store.Upsert(ctx, entries); err != nil {
			t.Fatalf("Upsert: %v", err)
		}
	}

	h := &index.Handle{}
	h.Swap(index.New(fake, store, len(scores)))
	return h
}

func TestRetrieveFiltersBelowThreshold(t *testing.T) {
	fake := &llmtest.Provider{}
	query := "how much does the pro plan cost"
	h := scoredHandle(t, fake, query, []float32{0.9, 0.5, 0.2, 0.1, 0.05})

	r := New(h, Config{TopK: 5, Threshold: 0.25})
	results, err := r.Retrieve(context.Background(), query)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 results above threshold, got %d", len(results))
	}
	if results[0].Chunk.ID != 0 || results[1].Chunk.ID != 1 {
		t.Errorf("result order = %d, %d; want 0, 1", results[0].Chunk.ID, results[1].Chunk.ID)
	}
	if results[0].Score < results[1].Score {
		t.Error("results not in descending score order")
	}
}

func TestRetrieveEmptyIsNotAnError(t *testing.T) {
	fake := &llmtest.Provider{}
	query := "completely unrelated question"
	h := scoredHandle(t, fake, query, []float32{0.1, 0.05})

	r := New(h, Config{})
	results, err := r.Retrieve(context.Background(), query)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no results, got %d", len(results))
	}
}

func TestRetrieveBeforeIndexReady(t *testing.T) {
	r := New(&index.Handle{}, Config{})
	_, err := r.Retrieve(context.Background(), "any query")
	if !errors.Is(err, index.ErrUnavailable) {
		t.Fatalf("expected index.ErrUnavailable, got %v", err)
	}
}

func TestCacheSkipsRepeatEmbedding(t *testing.T) {
	fake := &llmtest.Provider{}
	h := scoredHandle(t, fake, "what is the pro plan", []float32{0.9})
	r := New(h, Config{})

	ctx := context.Background()
	if _, err := r.Retrieve(ctx, "what is the pro plan"); err != nil {
		t.Fatalf("first Retrieve: %v", err)
	}
	embedsAfterFirst := fake.EmbedCalls()

	// Same query up to trim and case shares the cache slot.
	if _, err := r.Retrieve(ctx, "  What is the PRO plan "); err != nil {
		t.Fatalf("second Retrieve: %v", err)
	}
	if fake.EmbedCalls() != embedsAfterFirst {
		t.Errorf("second retrieve re-embedded: %d calls, want %d", fake.EmbedCalls(), embedsAfterFirst)
	}
	if r.CacheLen() != 1 {
		t.Errorf("cache len = %d, want 1", r.CacheLen())
	}
}

func TestInvalidateCache(t *testing.T) {
	fake := &llmtest.Provider{}
	h := scoredHandle(t, fake, "query one", []float32{0.9})
	r := New(h, Config{})

	if _, err := r.Retrieve(context.Background(), "query one"); err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if r.CacheLen() != 1 {
		t.Fatalf("cache len = %d before invalidation", r.CacheLen())
	}
	r.InvalidateCache()
	if r.CacheLen() != 0 {
		t.Errorf("cache len = %d after invalidation, want 0", r.CacheLen())
	}
}
