package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeYAML(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	return path
}

const validYAML = `
llm:
  api_key: "sk-test-key"
  model_fast: "claude-haiku-4-5"
  concurrency: 8
  request_delay: "1500ms"
  max_retries: 3

embedding:
  api_key: "embed-test-key"
  model: "voyage-3-lite"

dictionary:
  base_url: "https://example.test/entries/en"
  base_interval: "500ms"
  max_interval: "2s"

registry:
  path: "./testdata/registry.db"

pipeline:
  normalizer_batch_sentences: 32
  cluster_batch_lemmas: 5

log:
  level: "debug"
  format: "text"
`

func TestLoad_ValidYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, validYAML)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.LLM.APIKey != "sk-test-key" {
		t.Errorf("llm.api_key = %q", cfg.LLM.APIKey)
	}
	if cfg.LLM.Concurrency != 8 {
		t.Errorf("llm.concurrency = %d, want 8", cfg.LLM.Concurrency)
	}
	if cfg.LLM.RequestDelay != 1500*time.Millisecond {
		t.Errorf("llm.request_delay = %v, want 1500ms", cfg.LLM.RequestDelay)
	}
	// Defaults not present in YAML still apply.
	if cfg.LLM.ModelBalanced == "" {
		t.Error("llm.model_balanced should fall back to its default")
	}

	if cfg.Embedding.APIKey != "embed-test-key" {
		t.Errorf("embedding.api_key = %q", cfg.Embedding.APIKey)
	}

	if cfg.Dictionary.BaseURL != "https://example.test/entries/en" {
		t.Errorf("dictionary.base_url = %q", cfg.Dictionary.BaseURL)
	}
	if cfg.Dictionary.MaxInterval != 2*time.Second {
		t.Errorf("dictionary.max_interval = %v, want 2s", cfg.Dictionary.MaxInterval)
	}

	if cfg.Registry.Path != "./testdata/registry.db" {
		t.Errorf("registry.path = %q", cfg.Registry.Path)
	}

	if cfg.Pipeline.NormalizerBatchSentences != 32 {
		t.Errorf("pipeline.normalizer_batch_sentences = %d, want 32", cfg.Pipeline.NormalizerBatchSentences)
	}
	// Default not present in YAML still applies.
	if cfg.Pipeline.GenerationBatchEntries != 20 {
		t.Errorf("pipeline.generation_batch_entries = %d, want default 20", cfg.Pipeline.GenerationBatchEntries)
	}

	if cfg.Log.Level != "debug" {
		t.Errorf("log.level = %q, want debug", cfg.Log.Level)
	}
}

func TestLoad_ENVOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, validYAML)
	t.Setenv("LLM_CONCURRENCY", "3")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.LLM.Concurrency != 3 {
		t.Errorf("llm.concurrency = %d, want 3 (ENV override)", cfg.LLM.Concurrency)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("log.level = %q, want warn (ENV override)", cfg.Log.Level)
	}
}

func TestLoad_NoFile_ENVOnly(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("LLM_API_KEY", "sk-from-env")
	origDir, _ := os.Getwd()
	t.Cleanup(func() { _ = os.Chdir(origDir) })
	_ = os.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.LLM.Concurrency != 12 {
		t.Errorf("llm.concurrency = %d, want 12 (default)", cfg.LLM.Concurrency)
	}
}

func TestLoad_ExplicitPathNotFound(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	if err == nil {
		t.Fatal("expected error for missing explicit config path")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, `{{{invalid yaml`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestValidate_MissingAPIKey(t *testing.T) {
	cfg := validConfig()
	cfg.LLM.APIKey = ""

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for empty llm.api_key")
	}
}

func TestValidate_ConcurrencyZero(t *testing.T) {
	cfg := validConfig()
	cfg.LLM.Concurrency = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for llm.concurrency = 0")
	}
}

func TestValidate_MaxRetriesNegative(t *testing.T) {
	cfg := validConfig()
	cfg.LLM.MaxRetries = -1

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative llm.max_retries")
	}
}

func TestValidate_RegistryPathEmpty(t *testing.T) {
	cfg := validConfig()
	cfg.Registry.Path = ""

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for empty registry.path")
	}
}

func TestValidate_DictionaryMaxIntervalBelowBase(t *testing.T) {
	cfg := validConfig()
	cfg.Dictionary.BaseInterval = 2 * time.Second
	cfg.Dictionary.MaxInterval = time.Second

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when max_interval < base_interval")
	}
}

func TestValidate_PipelineBatchSizeZero(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"normalizer_batch_sentences", func(c *Config) { c.Pipeline.NormalizerBatchSentences = 0 }},
		{"normalizer_batch_surfaces", func(c *Config) { c.Pipeline.NormalizerBatchSurfaces = 0 }},
		{"cluster_batch_lemmas", func(c *Config) { c.Pipeline.ClusterBatchLemmas = 0 }},
		{"generation_batch_entries", func(c *Config) { c.Pipeline.GenerationBatchEntries = 0 }},
		{"wsd_fallback_batch_lemmas", func(c *Config) { c.Pipeline.WSDFallbackBatchLemmas = 0 }},
		{"wsd_chunk_size", func(c *Config) { c.Pipeline.WSDChunkSize = 0 }},
		{"wsd_cross_encoder_batch", func(c *Config) { c.Pipeline.WSDCrossEncoderBatch = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected error with %s = 0", tt.name)
			}
		})
	}
}

func TestValidate_Valid(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// validConfig returns a Config that passes all validation checks.
func validConfig() Config {
	return Config{
		LLM: LLMConfig{
			APIKey:      "sk-test-key",
			Concurrency: 12,
			MaxRetries:  5,
		},
		Dictionary: DictionaryConfig{
			BaseInterval: 600 * time.Millisecond,
			MaxInterval:  2500 * time.Millisecond,
		},
		Registry: RegistryConfig{
			Path: "./registry.db",
		},
		Pipeline: PipelineConfig{
			NormalizerBatchSentences: 64,
			NormalizerBatchSurfaces:  256,
			ClusterBatchLemmas:       10,
			GenerationBatchEntries:   20,
			WSDFallbackBatchLemmas:   15,
			WSDChunkSize:             200,
			WSDCrossEncoderBatch:     64,
		},
	}
}
