// Package retrieve answers queries against the embedding index: cached
// query embedding, top-k search, then a minimum-similarity filter.
package retrieve

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"strings"

	"github.com/clearpathhq/beacon/internal/chunk"
	"github.com/clearpathhq/beacon/internal/index"
)

// Defaults match the tuning of the original corpus. The threshold is
// deliberately permissive: nearest-neighbor search always returns k results
// whether or not they are relevant, and a low cutoff keeps paraphrased
// queries from being filtered out at the cost of some false positives. The
// evaluator is the second line of defense for those.
const (
	DefaultTopK      = 5
	DefaultThreshold = 0.25
	DefaultCacheSize = 128
)

// Result is a retrieved chunk with its cosine similarity to the query.
type Result struct {
	Chunk chunk.Chunk `json:"chunk"`
	Score float32     `json:"score"`
}

// Config tunes a Retriever. Zero values fall back to the defaults.
type Config struct {
	TopK      int
	Threshold float32
	CacheSize int
}

// Retriever orchestrates query embedding (with an LRU cache), index search
// and relevance filtering. Safe for concurrent use.
type Retriever struct {
	handle    *index.Handle
	cache     *lruCache
	topK      int
	threshold float32
}

// New creates a Retriever over the given index handle.
func New(handle *index.Handle, cfg Config) *Retriever {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	if cfg.Threshold == 0 {
		cfg.Threshold = DefaultThreshold
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = DefaultCacheSize
	}
	return &Retriever{
		handle:    handle,
		cache:     newLRUCache(cfg.CacheSize),
		topK:      cfg.TopK,
		threshold: cfg.Threshold,
	}
}

// Retrieve embeds the query and returns the chunks scoring at or above the
// similarity threshold, in descending score order. An empty result is an
// ordinary outcome, not an error; index.ErrUnavailable is returned when no
// index has been published yet.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]Result, error) {
	ix, err := r.handle.Get()
	if err != nil {
		return nil, err
	}

	key := cacheKey(query)
	vector, ok := r.cache.get(key)
	if !ok {
		vector, err = ix.EmbedQuery(ctx, query)
		if err != nil {
			return nil, err
		}
		r.cache.put(key, vector)
	}

	hits, err := ix.Search(ctx, vector, r.topK)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(hits))
	for _, h := range hits {
		if h.Score < r.threshold {
			continue
		}
		results = append(results, Result{Chunk: h.Chunk, Score: h.Score})
	}
	return results, nil
}

// InvalidateCache drops every cached query embedding. Called on index
// rebuild; entries are never invalidated selectively.
func (r *Retriever) InvalidateCache() {
	r.cache.purge()
}

// CacheLen reports the number of cached query embeddings.
func (r *Retriever) CacheLen() int {
	return r.cache.len()
}

// cacheKey normalizes the query (trim + lowercase) and hashes it, so
// trivially re-typed queries share one cache slot.
func cacheKey(query string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(query))))
	return hex.EncodeToString(sum[:])
}
