// Package chat orchestrates the answer pipeline: retrieve context, route
// to a model tier, generate, evaluate groundedness, log.
package chat

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/clearpathhq/beacon/internal/evaluate"
	"github.com/clearpathhq/beacon/internal/llm"
	"github.com/clearpathhq/beacon/internal/requestlog"
	"github.com/clearpathhq/beacon/internal/retrieve"
	"github.com/clearpathhq/beacon/internal/router"
)

// Source identifies one retrieved chunk backing an answer.
type Source struct {
	ChunkID      int     `json:"chunk_id"`
	DocumentName string  `json:"document_name"`
	Score        float32 `json:"similarity_score"`
}

// Debug carries the full decision trail for one answer.
type Debug struct {
	Classification string   `json:"classification"`
	Model          string   `json:"model_used"`
	Score          int      `json:"complex_score"`
	Signals        []string `json:"signals"`
	TokensInput    int      `json:"tokens_input"`
	TokensOutput   int      `json:"tokens_output"`
	LatencyMs      float64  `json:"latency_ms"`
	Confidence     string   `json:"confidence"`
	Flags          []string `json:"flags"`
}

// Answer is the final result of one query through the pipeline.
type Answer struct {
	Response string   `json:"response"`
	Sources  []Source `json:"sources"`
	Debug    Debug    `json:"debug"`
}

// Engine wires the pipeline components. Construct one at startup and share
// it across requests; all components are safe for concurrent use.
type Engine struct {
	retriever *retrieve.Retriever
	router    *router.Router
	evaluator *evaluate.Evaluator
	provider  llm.Provider
	memory    *Memory
	requests  *requestlog.Store // optional
	logger    *slog.Logger
	tracer    trace.Tracer
}

// NewEngine creates an Engine. requests may be nil to disable the durable
// request log; logger may be nil for the default slog logger.
func NewEngine(retriever *retrieve.Retriever, rt *router.Router, ev *evaluate.Evaluator,
	provider llm.Provider, requests *requestlog.Store, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		retriever: retriever,
		router:    rt,
		evaluator: ev,
		provider:  provider,
		memory:    NewMemory(DefaultMaxPairs),
		requests:  requests,
		logger:    logger,
		tracer:    otel.Tracer("github.com/clearpathhq/beacon"),
	}
}

// Ask runs the full pipeline for one query and returns the evaluated
// answer.
func (e *Engine) Ask(ctx context.Context, sessionID, query string) (*Answer, error) {
	return e.ask(ctx, sessionID, query, nil)
}

// AskStream behaves like Ask but delivers the response text incrementally
// through fn. Evaluation runs once, on the fully assembled final text, and
// the returned Answer carries it.
func (e *Engine) AskStream(ctx context.Context, sessionID, query string, fn llm.StreamFunc) (*Answer, error) {
	return e.ask(ctx, sessionID, query, fn)
}

func (e *Engine) ask(ctx context.Context, sessionID, query string, fn llm.StreamFunc) (*Answer, error) {
	ctx, span := e.tracer.Start(ctx, "chat.ask")
	defer span.End()

	retrieveCtx, retrieveSpan := e.tracer.Start(ctx, "chat.retrieve")
	retrieved, err := e.retriever.Retrieve(retrieveCtx, query)
	retrieveSpan.End()
	if err != nil {
		return nil, err
	}

	decision := e.router.Classify(query)
	span.SetAttributes(
		attribute.String("router.classification", string(decision.Classification)),
		attribute.Int("retrieve.sources", len(retrieved)),
	)

	prompt := buildPrompt(query, retrieved, e.memory.History(sessionID))
	opts := &llm.RequestOptions{Model: decision.Model}

	genCtx, genSpan := e.tracer.Start(ctx, "chat.generate",
		trace.WithAttributes(attribute.String("llm.model", decision.Model)))
	var resp *llm.Response
	if fn != nil {
		resp, err = e.provider.CompleteStream(genCtx, prompt, opts, fn)
	} else {
		resp, err = e.provider.Complete(genCtx, prompt, opts)
	}
	genSpan.End()
	if err != nil {
		return nil, err
	}

	verdict := e.evaluator.Evaluate(resp.Content, retrieved)
	span.SetAttributes(attribute.String("evaluate.confidence", string(verdict.Confidence)))

	e.logRequest(query, decision, resp, verdict, len(retrieved))
	e.memory.Update(sessionID, query, resp.Content)

	sources := make([]Source, len(retrieved))
	for i, r := range retrieved {
		sources[i] = Source{ChunkID: r.Chunk.ID, DocumentName: r.Chunk.DocumentName, Score: r.Score}
	}

	return &Answer{
		Response: resp.Content,
		Sources:  sources,
		Debug: Debug{
			Classification: string(decision.Classification),
			Model:          decision.Model,
			Score:          decision.Score,
			Signals:        decision.Signals,
			TokensInput:    resp.InputTokens,
			TokensOutput:   resp.OutputTokens,
			LatencyMs:      resp.LatencyMs,
			Confidence:     string(verdict.Confidence),
			Flags:          verdict.FlagStrings(),
		},
	}, nil
}

// logRequest records the request in the durable log. Best effort: a log
// failure must not fail the answer.
func (e *Engine) logRequest(query string, decision router.Decision, resp *llm.Response,
	verdict evaluate.Verdict, numSources int) {
	e.logger.Info("query answered",
		"classification", decision.Classification,
		"model", decision.Model,
		"confidence", verdict.Confidence,
		"flags", verdict.FlagStrings(),
		"sources", numSources,
		"latency_ms", resp.LatencyMs,
	)
	if e.requests == nil {
		return
	}
	err := e.requests.Append(requestlog.Entry{
		Query:          query,
		Classification: string(decision.Classification),
		Model:          decision.Model,
		TokensInput:    resp.InputTokens,
		TokensOutput:   resp.OutputTokens,
		LatencyMs:      resp.LatencyMs,
		Confidence:     string(verdict.Confidence),
		Flags:          verdict.FlagStrings(),
		NumSources:     numSources,
	})
	if err != nil {
		e.logger.Warn("request log append failed", "error", err)
	}
}

// Retriever exposes the engine's retriever, e.g. for cache invalidation
// after an index rebuild.
func (e *Engine) Retriever() *retrieve.Retriever { return e.retriever }

// Classify exposes the router for harness checks.
func (e *Engine) Classify(query string) router.Decision { return e.router.Classify(query) }

// Evaluate exposes the evaluator for harness checks.
func (e *Engine) Evaluate(response string, context []retrieve.Result) evaluate.Verdict {
	return e.evaluator.Evaluate(response, context)
}
