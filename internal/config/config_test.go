package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Addr != ":8000" {
		t.Errorf("server.addr = %q", cfg.Server.Addr)
	}
	if cfg.Vector.Backend != "memory" || cfg.Vector.Dim != 384 {
		t.Errorf("vector defaults = %+v", cfg.Vector)
	}
	if cfg.Vector.ChunkWindow != 500 || cfg.Vector.ChunkOverlap != 100 {
		t.Errorf("chunking defaults = %+v", cfg.Vector)
	}
	if cfg.Retrieval.TopK != 5 || cfg.Retrieval.Threshold != 0.25 || cfg.Retrieval.CacheSize != 128 {
		t.Errorf("retrieval defaults = %+v", cfg.Retrieval)
	}
	if cfg.Router.Threshold != 2 {
		t.Errorf("router.threshold = %d", cfg.Router.Threshold)
	}
	if cfg.Router.SimpleModel != "llama-3.1-8b-instant" || cfg.Router.ComplexModel != "llama-3.3-70b-versatile" {
		t.Errorf("router models = %+v", cfg.Router)
	}
	if cfg.Evaluator.OverlapThreshold != 0.30 {
		t.Errorf("evaluator.overlap_threshold = %f", cfg.Evaluator.OverlapThreshold)
	}
	if cfg.LLM.EmbedModel != "all-minilm-l6-v2" {
		t.Errorf("llm.embed_model = %q", cfg.LLM.EmbedModel)
	}
}

func TestLoadFileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "beacon.yaml")
	yaml := `
server:
  addr: ":9100"
retrieval:
  top_k: 3
vector:
  backend: "qdrant"
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":9100" {
		t.Errorf("server.addr = %q", cfg.Server.Addr)
	}
	if cfg.Retrieval.TopK != 3 {
		t.Errorf("retrieval.top_k = %d", cfg.Retrieval.TopK)
	}
	if cfg.Vector.Backend != "qdrant" {
		t.Errorf("vector.backend = %q", cfg.Vector.Backend)
	}
	// Untouched keys keep their defaults.
	if cfg.Retrieval.Threshold != 0.25 {
		t.Errorf("retrieval.threshold = %f, want default", cfg.Retrieval.Threshold)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("missing config file must not be fatal: %v", err)
	}
	if cfg.Server.Addr != ":8000" {
		t.Errorf("server.addr = %q", cfg.Server.Addr)
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("BEACON_SERVER_ADDR", ":7777")
	t.Setenv("BEACON_LLM_API_KEY", "test-key")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":7777" {
		t.Errorf("server.addr = %q, env override ignored", cfg.Server.Addr)
	}
	if cfg.LLM.APIKey != "test-key" {
		t.Errorf("llm.api_key = %q, env override ignored", cfg.LLM.APIKey)
	}
}

func TestValidateWarnings(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg.Vector.Backend = "redis"
	cfg.Evaluator.OverlapThreshold = 1.5
	cfg.Vector.ChunkOverlap = 600

	warnings := strings.Join(cfg.Validate(), "\n")
	for _, want := range []string{"api_key", "backend", "overlap_threshold", "chunk_overlap"} {
		if !strings.Contains(warnings, want) {
			t.Errorf("warnings missing %q:\n%s", want, warnings)
		}
	}
}

func TestValidateCleanConfig(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg.LLM.APIKey = "set"
	if warnings := cfg.Validate(); len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
}
