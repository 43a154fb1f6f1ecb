// Command beacon serves the Clearpath documentation assistant: a
// retrieval-augmented chat API with query routing and answer evaluation.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/clearpathhq/beacon/internal/chat"
	"github.com/clearpathhq/beacon/internal/chunk"
	"github.com/clearpathhq/beacon/internal/config"
	"github.com/clearpathhq/beacon/internal/evaluate"
	"github.com/clearpathhq/beacon/internal/harness"
	"github.com/clearpathhq/beacon/internal/index"
	"github.com/clearpathhq/beacon/internal/ingest"
	"github.com/clearpathhq/beacon/internal/llm"
	"github.com/clearpathhq/beacon/internal/llm/groq"
	"github.com/clearpathhq/beacon/internal/observability"
	"github.com/clearpathhq/beacon/internal/requestlog"
	"github.com/clearpathhq/beacon/internal/retrieve"
	"github.com/clearpathhq/beacon/internal/router"
	"github.com/clearpathhq/beacon/internal/server"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "beacon",
		Short:         "Retrieval-augmented documentation assistant",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/beacon.yaml", "path to config file")

	root.AddCommand(newServeCmd(&configPath))
	root.AddCommand(newIngestCmd(&configPath))
	root.AddCommand(newEvalCmd(&configPath))
	return root
}

func newServeCmd(configPath *string) *cobra.Command {
	var rebuild bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the chat API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg, logger, err := bootstrap(*configPath)
			if err != nil {
				return err
			}

			tp, err := observability.InitTracing(ctx, observability.TracingConfig{
				ServiceName:    "beacon",
				ServiceVersion: version,
				OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
			})
			if err != nil {
				return fmt.Errorf("init tracing: %w", err)
			}
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := tp.Shutdown(shutdownCtx); err != nil {
					logger.Warn("tracer shutdown", "error", err)
				}
			}()

			engine, handle, cleanup, err := buildEngine(ctx, cfg, logger, rebuild)
			if err != nil {
				return err
			}
			defer cleanup()

			srv := server.New(cfg.Server.Addr, engine, handle, logger)
			return srv.Run(ctx)
		},
	}
	cmd.Flags().BoolVar(&rebuild, "rebuild", false, "rebuild the index even when a snapshot exists")
	return cmd
}

func newIngestCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest",
		Short: "Rebuild the document index and persist it",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := bootstrap(*configPath)
			if err != nil {
				return err
			}

			provider, err := newProvider(cfg)
			if err != nil {
				return err
			}

			handle := &index.Handle{}
			if err := rebuildIndex(cmd.Context(), cfg, provider, handle, logger); err != nil {
				return err
			}
			ix, err := handle.Get()
			if err != nil {
				return err
			}
			defer ix.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "indexed %d chunks\n", ix.Size())
			return nil
		},
	}
}

func newEvalCmd(configPath *string) *cobra.Command {
	var (
		outPath string
		delay   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Run the evaluation harness against the live pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg, logger, err := bootstrap(*configPath)
			if err != nil {
				return err
			}

			engine, _, cleanup, err := buildEngine(ctx, cfg, logger, false)
			if err != nil {
				return err
			}
			defer cleanup()

			report := harness.Run(ctx, engine, harness.DefaultCases(), delay, logger)
			if err := report.Save(outPath); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "passed %d/%d (errors: %d), report written to %s\n",
				report.Passed, report.Total, report.Errors, outPath)
			if !report.AllPassed() {
				return fmt.Errorf("%d of %d cases failed", report.Failed+report.Errors, report.Total)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "eval_results.json", "path for the JSON report")
	cmd.Flags().DurationVar(&delay, "delay", 3*time.Second, "pause between cases, for rate-limited API tiers")
	return cmd
}

// bootstrap loads .env, the config file, and sets up the process logger.
func bootstrap(configPath string) (*config.Config, *slog.Logger, error) {
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)

	for _, w := range cfg.Validate() {
		logger.Warn("config: " + w)
	}
	return cfg, logger, nil
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func newProvider(cfg *config.Config) (llm.Provider, error) {
	client, err := groq.New(groq.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.Router.SimpleModel,
		EmbedModel:  cfg.LLM.EmbedModel,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
	})
	if err != nil {
		return nil, err
	}

	retryCfg := llm.DefaultRetryConfig()
	retryCfg.MaxRetries = cfg.LLM.MaxRetries
	return llm.NewRetryProvider(client, retryCfg), nil
}

// buildEngine assembles the full pipeline: provider, index (loaded or
// built), retriever, router, evaluator, request log. The returned cleanup
// closes everything that was opened.
func buildEngine(ctx context.Context, cfg *config.Config, logger *slog.Logger, rebuild bool) (*chat.Engine, *index.Handle, func(), error) {
	provider, err := newProvider(cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	handle := &index.Handle{}
	if err := openIndex(ctx, cfg, provider, handle, logger, rebuild); err != nil {
		return nil, nil, nil, err
	}

	var requests *requestlog.Store
	if cfg.Log.RequestLogPath != "" {
		requests, err = requestlog.Open(cfg.Log.RequestLogPath)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("open request log: %w", err)
		}
	}

	retriever := retrieve.New(handle, retrieve.Config{
		TopK:      cfg.Retrieval.TopK,
		Threshold: cfg.Retrieval.Threshold,
		CacheSize: cfg.Retrieval.CacheSize,
	})
	rt := router.New(router.Config{
		Threshold:    cfg.Router.Threshold,
		SimpleModel:  cfg.Router.SimpleModel,
		ComplexModel: cfg.Router.ComplexModel,
	})
	ev := evaluate.New(cfg.Evaluator.OverlapThreshold)

	engine := chat.NewEngine(retriever, rt, ev, provider, requests, logger)

	cleanup := func() {
		if ix, err := handle.Get(); err == nil {
			if err := ix.Close(); err != nil {
				logger.Warn("index close", "error", err)
			}
		}
		if requests != nil {
			if err := requests.Close(); err != nil {
				logger.Warn("request log close", "error", err)
			}
		}
	}
	return engine, handle, cleanup, nil
}

// openIndex publishes an index into handle: from the snapshot when one
// exists and rebuild is false, otherwise freshly built from the docs dir.
func openIndex(ctx context.Context, cfg *config.Config, provider llm.Provider, handle *index.Handle, logger *slog.Logger, rebuild bool) error {
	if cfg.Vector.Backend == "qdrant" {
		return openQdrantIndex(ctx, cfg, provider, handle, logger, rebuild)
	}

	if !rebuild {
		store, err := index.LoadFlat(cfg.LLM.EmbedModel, cfg.Vector.SnapshotPath)
		if err == nil {
			count, err := store.Count(ctx)
			if err != nil {
				return err
			}
			handle.Swap(index.New(provider, store, count))
			logger.Info("index restored from snapshot", "path", cfg.Vector.SnapshotPath, "chunks", count)
			return nil
		}
		logger.Info("no usable snapshot, building index", "reason", err)
	}
	return rebuildIndex(ctx, cfg, provider, handle, logger)
}

// rebuildIndex reads the corpus, chunks it, embeds everything and persists
// the snapshot. The handle is swapped only after the snapshot write, so a
// crash mid-build leaves the previous state intact.
func rebuildIndex(ctx context.Context, cfg *config.Config, provider llm.Provider, handle *index.Handle, logger *slog.Logger) error {
	docs, skipped, err := ingest.ReadDir(cfg.Docs.Dir)
	if err != nil {
		return err
	}
	for _, s := range skipped {
		logger.Warn("document skipped", "name", s.Name, "reason", s.Reason)
	}
	if len(docs) == 0 {
		return fmt.Errorf("no ingestable documents in %s", cfg.Docs.Dir)
	}

	chunker := chunk.New(cfg.Vector.ChunkWindow, cfg.Vector.ChunkOverlap)
	chunks := chunker.SplitAll(docs)
	logger.Info("corpus chunked", "documents", len(docs), "chunks", len(chunks))

	store := index.NewFlatStore(cfg.Vector.Dim)
	ix, err := index.Build(ctx, provider, store, chunks)
	if err != nil {
		return fmt.Errorf("building index: %w", err)
	}
	if err := index.SaveFlat(store, cfg.LLM.EmbedModel, cfg.Vector.SnapshotPath); err != nil {
		return fmt.Errorf("persisting index: %w", err)
	}

	handle.Swap(ix)
	logger.Info("index built", "chunks", ix.Size(), "snapshot", cfg.Vector.SnapshotPath)
	return nil
}

// openQdrantIndex serves from an external Qdrant collection. With rebuild
// set (or an empty collection) the corpus is re-embedded and upserted.
func openQdrantIndex(ctx context.Context, cfg *config.Config, provider llm.Provider, handle *index.Handle, logger *slog.Logger, rebuild bool) error {
	store, err := index.NewQdrant(ctx, cfg.Vector.Host, cfg.Vector.Port, cfg.Vector.Collection, cfg.Vector.Dim)
	if err != nil {
		return err
	}

	count, err := store.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 && !rebuild {
		handle.Swap(index.New(provider, store, count))
		logger.Info("qdrant collection attached", "collection", cfg.Vector.Collection, "points", count)
		return nil
	}

	docs, skipped, err := ingest.ReadDir(cfg.Docs.Dir)
	if err != nil {
		return err
	}
	for _, s := range skipped {
		logger.Warn("document skipped", "name", s.Name, "reason", s.Reason)
	}
	chunker := chunk.New(cfg.Vector.ChunkWindow, cfg.Vector.ChunkOverlap)
	chunks := chunker.SplitAll(docs)

	ix, err := index.Build(ctx, provider, store, chunks)
	if err != nil {
		return fmt.Errorf("building qdrant index: %w", err)
	}
	handle.Swap(ix)
	logger.Info("qdrant index built", "collection", cfg.Vector.Collection, "chunks", ix.Size())
	return nil
}
