package llm

import "context"

// StreamFunc receives one ordered text fragment of a streamed completion.
// Returning an error aborts the stream.
type StreamFunc func(delta string) error

// Provider is the interface all generation/embedding backends implement.
type Provider interface {
	// Complete sends a prompt and returns the full completion.
	Complete(ctx context.Context, prompt *Prompt, opts *RequestOptions) (*Response, error)
	// CompleteStream sends a prompt, invokes fn once per ordered text
	// fragment, and returns the assembled final response. The returned
	// Content is the concatenation of every fragment in arrival order.
	CompleteStream(ctx context.Context, prompt *Prompt, opts *RequestOptions, fn StreamFunc) (*Response, error)
	// Embed returns one embedding vector per input text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	// Name returns the provider identifier (e.g. "groq").
	Name() string
}
