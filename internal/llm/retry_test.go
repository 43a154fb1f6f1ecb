package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

// scriptedProvider fails a fixed number of times before succeeding.
type scriptedProvider struct {
	calls    int
	failures int
	err      error
	deltas   []string
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) attempt() error {
	p.calls++
	if p.calls <= p.failures {
		return p.err
	}
	return nil
}

func (p *scriptedProvider) Complete(ctx context.Context, prompt *Prompt, opts *RequestOptions) (*Response, error) {
	if err := p.attempt(); err != nil {
		return nil, err
	}
	return &Response{Content: "ok"}, nil
}

func (p *scriptedProvider) CompleteStream(ctx context.Context, prompt *Prompt, opts *RequestOptions, fn StreamFunc) (*Response, error) {
	p.calls++
	var full strings.Builder
	for _, d := range p.deltas {
		full.WriteString(d)
		if fn != nil {
			if err := fn(d); err != nil {
				return nil, err
			}
		}
	}
	if p.calls <= p.failures {
		return nil, p.err
	}
	return &Response{Content: full.String()}, nil
}

func (p *scriptedProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := p.attempt(); err != nil {
		return nil, err
	}
	return make([][]float32, len(texts)), nil
}

func fastRetryConfig(maxRetries int) *RetryConfig {
	return &RetryConfig{
		MaxRetries: maxRetries,
		RetryDelay: time.Millisecond,
		MaxDelay:   5 * time.Millisecond,
		Timeout:    time.Second,
	}
}

func TestRetryOnRateLimit(t *testing.T) {
	inner := &scriptedProvider{failures: 2, err: errors.New("status 429 Too Many Requests")}
	r := NewRetryProvider(inner, fastRetryConfig(3))

	resp, err := r.Complete(context.Background(), &Prompt{}, nil)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Content != "ok" {
		t.Errorf("content = %q", resp.Content)
	}
	if inner.calls != 3 {
		t.Errorf("calls = %d, want 3 (two failures then success)", inner.calls)
	}
}

func TestNoRetryOnClientError(t *testing.T) {
	inner := &scriptedProvider{failures: 5, err: errors.New("status 400 Bad Request")}
	r := NewRetryProvider(inner, fastRetryConfig(3))

	_, err := r.Complete(context.Background(), &Prompt{}, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if inner.calls != 1 {
		t.Errorf("calls = %d, want 1 for a non-retryable error", inner.calls)
	}
}

func TestNoRetryOnDailyTokenLimit(t *testing.T) {
	inner := &scriptedProvider{failures: 5, err: errors.New("429: rate limit reached, tokens per day (TPD) exhausted")}
	r := NewRetryProvider(inner, fastRetryConfig(3))

	if _, err := r.Complete(context.Background(), &Prompt{}, nil); err == nil {
		t.Fatal("expected error")
	}
	if inner.calls != 1 {
		t.Errorf("calls = %d, want 1: a daily limit will not clear within the backoff window", inner.calls)
	}
}

func TestMaxRetriesExceeded(t *testing.T) {
	inner := &scriptedProvider{failures: 100, err: errors.New("status 503 Service Unavailable")}
	r := NewRetryProvider(inner, fastRetryConfig(2))

	_, err := r.Embed(context.Background(), []string{"text"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "max retries") {
		t.Errorf("error = %v, want max retries message", err)
	}
	if inner.calls != 3 {
		t.Errorf("calls = %d, want 3 (initial attempt plus 2 retries)", inner.calls)
	}
}

func TestStreamNotRetriedAfterFirstFragment(t *testing.T) {
	// The stream delivered text before failing; a retry would replay it.
	inner := &scriptedProvider{
		failures: 5,
		err:      errors.New("status 503 Service Unavailable"),
		deltas:   []string{"partial "},
	}
	r := NewRetryProvider(inner, fastRetryConfig(3))

	var got strings.Builder
	_, err := r.CompleteStream(context.Background(), &Prompt{}, nil, func(delta string) error {
		got.WriteString(delta)
		return nil
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if inner.calls != 1 {
		t.Errorf("calls = %d, want 1: no retry once output reached the caller", inner.calls)
	}
	if got.String() != "partial " {
		t.Errorf("delivered %q", got.String())
	}
}

func TestStreamRetriedBeforeFirstFragment(t *testing.T) {
	inner := &scriptedProvider{
		failures: 1,
		err:      errors.New("status 503 Service Unavailable"),
	}
	r := NewRetryProvider(inner, fastRetryConfig(3))

	if _, err := r.CompleteStream(context.Background(), &Prompt{}, nil, nil); err != nil {
		t.Fatalf("CompleteStream: %v", err)
	}
	if inner.calls != 2 {
		t.Errorf("calls = %d, want 2: a stream that produced nothing is safe to retry", inner.calls)
	}
}

func TestRetryRespectsContextCancellation(t *testing.T) {
	inner := &scriptedProvider{failures: 100, err: errors.New("status 503 Service Unavailable")}
	r := NewRetryProvider(inner, &RetryConfig{
		MaxRetries: 5,
		RetryDelay: time.Hour,
		MaxDelay:   time.Hour,
		Timeout:    time.Second,
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := r.Complete(ctx, &Prompt{}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
