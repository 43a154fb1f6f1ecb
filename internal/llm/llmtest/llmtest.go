// Package llmtest provides a deterministic in-process llm.Provider for
// tests: embeddings are a hashed bag-of-words, completions are canned.
package llmtest

import (
	"context"
	"hash/fnv"
	"strings"
	"sync"

	"github.com/clearpathhq/beacon/internal/llm"
)

// Dim is the embedding dimension produced by the fake provider.
const Dim = 32

// Provider is a fake llm.Provider. The zero value is usable.
type Provider struct {
	mu sync.Mutex

	// Reply is returned by Complete and streamed word-by-word by
	// CompleteStream. Defaults to a short fixed sentence.
	Reply string
	// Vectors, when set, overrides Embed for exact-match texts.
	Vectors map[string][]float32
	// Err, when set, is returned by every call.
	Err error

	embedCalls    int
	completeCalls int
	lastPrompt    *llm.Prompt
}

func (p *Provider) Name() string { return "fake" }

// EmbedCalls reports how many times Embed has been invoked.
func (p *Provider) EmbedCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.embedCalls
}

// CompleteCalls reports how many completions (plain or streamed) ran.
func (p *Provider) CompleteCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.completeCalls
}

// LastPrompt returns the prompt from the most recent completion call.
func (p *Provider) LastPrompt() *llm.Prompt {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastPrompt
}

func (p *Provider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	p.mu.Lock()
	p.embedCalls++
	err := p.Err
	overrides := p.Vectors
	p.mu.Unlock()
	if err != nil {
		return nil, err
	}

	out := make([][]float32, len(texts))
	for i, t := range texts {
		if v, ok := overrides[t]; ok {
			out[i] = append([]float32(nil), v...)
			continue
		}
		out[i] = HashEmbed(t)
	}
	return out, nil
}

func (p *Provider) Complete(ctx context.Context, prompt *llm.Prompt, opts *llm.RequestOptions) (*llm.Response, error) {
	reply, err := p.begin(prompt)
	if err != nil {
		return nil, err
	}
	return &llm.Response{Content: reply, Model: model(opts), InputTokens: 10, OutputTokens: 20}, nil
}

func (p *Provider) CompleteStream(ctx context.Context, prompt *llm.Prompt, opts *llm.RequestOptions, fn llm.StreamFunc) (*llm.Response, error) {
	reply, err := p.begin(prompt)
	if err != nil {
		return nil, err
	}

	var full strings.Builder
	for _, w := range strings.SplitAfter(reply, " ") {
		full.WriteString(w)
		if fn != nil {
			if err := fn(w); err != nil {
				return nil, err
			}
		}
	}
	return &llm.Response{Content: full.String(), Model: model(opts), InputTokens: 10, OutputTokens: 20}, nil
}

func (p *Provider) begin(prompt *llm.Prompt) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.completeCalls++
	p.lastPrompt = prompt
	if p.Err != nil {
		return "", p.Err
	}
	if p.Reply == "" {
		return "The Pro plan supports collaboration features.", nil
	}
	return p.Reply, nil
}

// HashEmbed maps text to a deterministic Dim-dimensional bag-of-words
// vector. Identical texts always produce identical vectors, and texts
// sharing words produce correlated ones.
func HashEmbed(text string) []float32 {
	v := make([]float32, Dim)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(w))
		v[h.Sum32()%Dim]++
	}
	return v
}

func model(opts *llm.RequestOptions) string {
	if opts != nil && opts.Model != "" {
		return opts.Model
	}
	return "fake-model"
}
