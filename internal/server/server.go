// Package server exposes the chat pipeline over HTTP: a JSON chat
// endpoint, an SSE streaming variant, and a health check.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/clearpathhq/beacon/internal/chat"
	"github.com/clearpathhq/beacon/internal/index"
	"github.com/clearpathhq/beacon/internal/llm"
)

const maxQueryLen = 2000

// ChatRequest is the body of POST /chat and POST /chat/stream.
type ChatRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status       string `json:"status"`
	IndexSize    int    `json:"index_size"`
	ChunksLoaded int    `json:"chunks_loaded"`
}

// Server serves the chat API.
type Server struct {
	engine *chat.Engine
	handle *index.Handle
	logger *slog.Logger
	http   *http.Server
}

// New creates a Server listening on addr.
func New(addr string, engine *chat.Engine, handle *index.Handle, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{engine: engine, handle: handle, logger: logger}

	r := mux.NewRouter()
	r.HandleFunc("/chat", s.handleChat).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/chat/stream", s.handleChatStream).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.Use(corsMiddleware)

	s.http = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the HTTP handler, for tests.
func (s *Server) Handler() http.Handler { return s.http.Handler }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("http server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeChatRequest(w, r)
	if !ok {
		return
	}

	answer, err := s.engine.Ask(r.Context(), req.SessionID, req.Query)
	if err != nil {
		s.writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, answer)
}

func (s *Server) handleChatStream(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeChatRequest(w, r)
	if !ok {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	emit := func(delta string) error {
		return writeSSE(w, flusher, "chunk", map[string]string{"text": delta})
	}

	answer, err := s.engine.AskStream(r.Context(), req.SessionID, req.Query, llm.StreamFunc(emit))
	if err != nil {
		// Headers are already out; the best we can do is an error event.
		_ = writeSSE(w, flusher, "error", map[string]string{"message": userMessage(err)})
		return
	}

	_ = writeSSE(w, flusher, "metadata", map[string]any{
		"sources": answer.Sources,
		"debug":   answer.Debug,
	})
	_ = writeSSE(w, flusher, "done", struct{}{})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "initializing"}
	if ix, err := s.handle.Get(); err == nil {
		resp.Status = "ok"
		resp.IndexSize = ix.Size()
		resp.ChunksLoaded = ix.Size()
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) decodeChatRequest(w http.ResponseWriter, r *http.Request) (ChatRequest, bool) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return req, false
	}
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		http.Error(w, "query must not be empty", http.StatusBadRequest)
		return req, false
	}
	if len(req.Query) > maxQueryLen {
		http.Error(w, fmt.Sprintf("query exceeds %d characters", maxQueryLen), http.StatusBadRequest)
		return req, false
	}
	if req.SessionID == "" {
		req.SessionID = "default"
	}
	return req, true
}

// writeError maps pipeline errors to HTTP statuses. The core never
// constructs user-facing text, so the translation lives here.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	s.logger.Error("chat request failed", "error", err)
	if errors.Is(err, index.ErrUnavailable) {
		http.Error(w, userMessage(err), http.StatusServiceUnavailable)
		return
	}
	http.Error(w, userMessage(err), http.StatusInternalServerError)
}

func userMessage(err error) string {
	if errors.Is(err, index.ErrUnavailable) {
		return "service not ready, try again shortly"
	}
	return "internal error answering the query"
}

func writeSSE(w http.ResponseWriter, flusher http.Flusher, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("encoding JSON response", "error", err)
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
