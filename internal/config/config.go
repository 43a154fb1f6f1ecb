// Package config loads application configuration from a YAML file with
// BEACON_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Docs      DocsConfig      `mapstructure:"docs"`
	Vector    VectorConfig    `mapstructure:"vector"`
	Retrieval RetrievalConfig `mapstructure:"retrieval"`
	Router    RouterConfig    `mapstructure:"router"`
	Evaluator EvaluatorConfig `mapstructure:"evaluator"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Log       LogConfig       `mapstructure:"log"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type DocsConfig struct {
	Dir string `mapstructure:"dir"`
}

// VectorConfig selects and tunes the vector store backend.
type VectorConfig struct {
	Backend      string `mapstructure:"backend"` // "memory" or "qdrant"
	Dim          int    `mapstructure:"dim"`
	SnapshotPath string `mapstructure:"snapshot_path"` // memory backend only
	ChunkWindow  int    `mapstructure:"chunk_window"`
	ChunkOverlap int    `mapstructure:"chunk_overlap"`
	Host         string `mapstructure:"host"` // qdrant backend only
	Port         int    `mapstructure:"port"`
	Collection   string `mapstructure:"collection"`
}

type RetrievalConfig struct {
	TopK      int     `mapstructure:"top_k"`
	Threshold float32 `mapstructure:"threshold"`
	CacheSize int     `mapstructure:"cache_size"`
}

type RouterConfig struct {
	Threshold    int    `mapstructure:"threshold"`
	SimpleModel  string `mapstructure:"simple_model"`
	ComplexModel string `mapstructure:"complex_model"`
}

type EvaluatorConfig struct {
	OverlapThreshold float64 `mapstructure:"overlap_threshold"`
}

type LLMConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	EmbedModel  string  `mapstructure:"embed_model"`
	Temperature float32 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	MaxRetries  int     `mapstructure:"max_retries"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // text or json
	// RequestLogPath is the SQLite request log; empty disables it.
	RequestLogPath string `mapstructure:"request_log_path"`
}

type TelemetryConfig struct {
	// OTLPEndpoint is the OTLP gRPC collector address; empty disables
	// tracing.
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
}

// Validate checks configuration for issues and returns warnings.
func (c *Config) Validate() []string {
	var warnings []string

	if c.LLM.APIKey == "" {
		warnings = append(warnings, "llm.api_key is empty; generation and embedding calls will fail")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2.0 {
		warnings = append(warnings, fmt.Sprintf("llm.temperature %.2f is outside [0.0, 2.0]", c.LLM.Temperature))
	}
	if c.Retrieval.Threshold < -1 || c.Retrieval.Threshold > 1 {
		warnings = append(warnings, fmt.Sprintf("retrieval.threshold %.2f is outside the cosine range [-1, 1]", c.Retrieval.Threshold))
	}
	if c.Evaluator.OverlapThreshold < 0 || c.Evaluator.OverlapThreshold > 1 {
		warnings = append(warnings, fmt.Sprintf("evaluator.overlap_threshold %.2f is outside [0, 1]", c.Evaluator.OverlapThreshold))
	}
	if c.Vector.Backend != "memory" && c.Vector.Backend != "qdrant" {
		warnings = append(warnings, fmt.Sprintf("vector.backend %q is unknown (expected memory or qdrant)", c.Vector.Backend))
	}
	if c.Vector.ChunkOverlap >= c.Vector.ChunkWindow {
		warnings = append(warnings, fmt.Sprintf("vector.chunk_overlap %d is not below chunk_window %d", c.Vector.ChunkOverlap, c.Vector.ChunkWindow))
	}
	return warnings
}

// Load reads configuration from path and the environment. A missing config
// file is not an error: defaults plus environment overrides apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("BEACON")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8000")
	v.SetDefault("docs.dir", "docs")
	v.SetDefault("vector.backend", "memory")
	v.SetDefault("vector.dim", 384)
	v.SetDefault("vector.snapshot_path", "data/index.gob")
	v.SetDefault("vector.chunk_window", 500)
	v.SetDefault("vector.chunk_overlap", 100)
	v.SetDefault("vector.host", "localhost")
	v.SetDefault("vector.port", 6334)
	v.SetDefault("vector.collection", "beacon")
	v.SetDefault("retrieval.top_k", 5)
	v.SetDefault("retrieval.threshold", 0.25)
	v.SetDefault("retrieval.cache_size", 128)
	v.SetDefault("router.threshold", 2)
	v.SetDefault("router.simple_model", "llama-3.1-8b-instant")
	v.SetDefault("router.complex_model", "llama-3.3-70b-versatile")
	v.SetDefault("evaluator.overlap_threshold", 0.30)
	// Empty defaults register the keys with viper; without them
	// AutomaticEnv overrides are invisible to Unmarshal.
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("telemetry.otlp_endpoint", "")
	v.SetDefault("llm.embed_model", "all-minilm-l6-v2")
	v.SetDefault("llm.temperature", 0.3)
	v.SetDefault("llm.max_tokens", 1024)
	v.SetDefault("llm.max_retries", 3)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.request_log_path", "data/requests.db")
}
