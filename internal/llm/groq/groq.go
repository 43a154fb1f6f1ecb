// Package groq implements llm.Provider against the Groq API, which speaks
// the OpenAI wire protocol.
package groq

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/clearpathhq/beacon/internal/llm"
)

const defaultBaseURL = "https://api.groq.com/openai/v1"

// Config configures the Groq client.
type Config struct {
	APIKey      string
	BaseURL     string  // any OpenAI-compatible endpoint; default Groq
	Model       string  // default completion model when opts carry none
	EmbedModel  string  // embedding model served by the same endpoint
	Temperature float32 // default sampling temperature
	MaxTokens   int     // default completion token cap
}

// Client implements llm.Provider.
type Client struct {
	api         *openai.Client
	model       string
	embedModel  string
	temperature float32
	maxTokens   int
}

// New creates a Groq-backed provider.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("groq: api key not set")
	}
	oc := openai.DefaultConfig(cfg.APIKey)
	oc.BaseURL = cfg.BaseURL
	if oc.BaseURL == "" {
		oc.BaseURL = defaultBaseURL
	}
	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.3
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1024
	}
	return &Client{
		api:         openai.NewClientWithConfig(oc),
		model:       cfg.Model,
		embedModel:  cfg.EmbedModel,
		temperature: temperature,
		maxTokens:   maxTokens,
	}, nil
}

func (c *Client) Name() string { return "groq" }

func (c *Client) Complete(ctx context.Context, prompt *llm.Prompt, opts *llm.RequestOptions) (*llm.Response, error) {
	req := c.buildRequest(prompt, opts)

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("groq completion: %w", err)
	}

	content := ""
	if len(resp.Choices) > 0 {
		content = resp.Choices[0].Message.Content
	}
	return &llm.Response{
		Content:      content,
		Model:        req.Model,
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
		LatencyMs:    msSince(start),
	}, nil
}

func (c *Client) CompleteStream(ctx context.Context, prompt *llm.Prompt, opts *llm.RequestOptions, fn llm.StreamFunc) (*llm.Response, error) {
	req := c.buildRequest(prompt, opts)
	req.Stream = true
	req.StreamOptions = &openai.StreamOptions{IncludeUsage: true}

	start := time.Now()
	stream, err := c.api.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("groq stream: %w", err)
	}
	defer stream.Close()

	final := &llm.Response{Model: req.Model}
	var full []byte
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("groq stream recv: %w", err)
		}
		if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
			delta := chunk.Choices[0].Delta.Content
			full = append(full, delta...)
			if fn != nil {
				if err := fn(delta); err != nil {
					return nil, err
				}
			}
		}
		if chunk.Usage != nil {
			final.InputTokens = chunk.Usage.PromptTokens
			final.OutputTokens = chunk.Usage.CompletionTokens
		}
	}

	final.Content = string(full)
	final.LatencyMs = msSince(start)
	return final, nil
}

func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: texts,
		Model: openai.EmbeddingModel(c.embedModel),
	})
	if err != nil {
		return nil, fmt.Errorf("groq embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("groq embeddings: got %d vectors, want %d", len(resp.Data), len(texts))
	}
	vectors := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		vectors[i] = d.Embedding
	}
	return vectors, nil
}

func (c *Client) buildRequest(prompt *llm.Prompt, opts *llm.RequestOptions) openai.ChatCompletionRequest {
	var msgs []openai.ChatCompletionMessage
	if prompt.SystemPrompt != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: prompt.SystemPrompt})
	}
	for _, m := range prompt.Messages {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: string(m.Role), Content: m.Content})
	}

	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    msgs,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}
	if opts != nil {
		if opts.Model != "" {
			req.Model = opts.Model
		}
		if opts.Temperature != nil {
			req.Temperature = *opts.Temperature
		}
		if opts.MaxTokens != nil {
			req.MaxTokens = *opts.MaxTokens
		}
	}
	return req
}

func msSince(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}
