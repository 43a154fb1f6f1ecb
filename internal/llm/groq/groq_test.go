package groq

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/clearpathhq/beacon/internal/llm"
)

// fakeAPI serves a minimal OpenAI-compatible surface and records requests.
func fakeAPI(t *testing.T) (*httptest.Server, *map[string]any) {
	t.Helper()
	var lastBody map[string]any

	mux := http.NewServeMux()
	mux.HandleFunc("/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&lastBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "cmpl-1",
			"object":  "chat.completion",
			"model":   lastBody["model"],
			"choices": []map[string]any{{"index": 0, "message": map[string]any{"role": "assistant", "content": "The Pro plan costs $29/month."}}},
			"usage":   map[string]any{"prompt_tokens": 42, "completion_tokens": 9},
		})
	})
	mux.HandleFunc("/embeddings", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Input []string `json:"input"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		data := make([]map[string]any, len(req.Input))
		for i := range req.Input {
			data[i] = map[string]any{"index": i, "embedding": []float32{0.6, 0.8}}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"object": "list", "data": data})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &lastBody
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := New(Config{
		APIKey:     "test-key",
		BaseURL:    baseURL,
		Model:      "llama-3.1-8b-instant",
		EmbedModel: "all-minilm-l6-v2",
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("expected error without an API key")
	}
}

func TestComplete(t *testing.T) {
	srv, lastBody := fakeAPI(t)
	c := newTestClient(t, srv.URL)

	prompt := &llm.Prompt{
		SystemPrompt: "You are a support assistant.",
		Messages:     []llm.Message{{Role: llm.RoleUser, Content: "How much is Pro?"}},
	}
	resp, err := c.Complete(context.Background(), prompt, nil)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}

	if resp.Content != "The Pro plan costs $29/month." {
		t.Errorf("content = %q", resp.Content)
	}
	if resp.InputTokens != 42 || resp.OutputTokens != 9 {
		t.Errorf("usage = %d/%d", resp.InputTokens, resp.OutputTokens)
	}
	if resp.Model != "llama-3.1-8b-instant" {
		t.Errorf("model = %q", resp.Model)
	}

	// System prompt travels as the first wire message.
	msgs := (*lastBody)["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("wire messages = %d, want 2", len(msgs))
	}
	if role := msgs[0].(map[string]any)["role"]; role != "system" {
		t.Errorf("first message role = %v", role)
	}
}

func TestCompleteModelOverride(t *testing.T) {
	srv, lastBody := fakeAPI(t)
	c := newTestClient(t, srv.URL)

	prompt := &llm.Prompt{Messages: []llm.Message{{Role: llm.RoleUser, Content: "hi"}}}
	opts := &llm.RequestOptions{Model: "llama-3.3-70b-versatile"}
	resp, err := c.Complete(context.Background(), prompt, opts)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}

	if (*lastBody)["model"] != "llama-3.3-70b-versatile" {
		t.Errorf("wire model = %v", (*lastBody)["model"])
	}
	if resp.Model != "llama-3.3-70b-versatile" {
		t.Errorf("response model = %q", resp.Model)
	}
}

func TestEmbed(t *testing.T) {
	srv, _ := fakeAPI(t)
	c := newTestClient(t, srv.URL)

	vectors, err := c.Embed(context.Background(), []string{"first text", "second text"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vectors) != 2 {
		t.Fatalf("vectors = %d, want 2", len(vectors))
	}
	if vectors[0][0] != 0.6 || vectors[0][1] != 0.8 {
		t.Errorf("vector = %v", vectors[0])
	}
}
