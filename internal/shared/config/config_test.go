package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(New(), "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LLM.Model != "gpt-5-nano" || cfg.LLM.Timeout != 120*time.Second {
		t.Fatalf("unexpected llm config %+v", cfg.LLM)
	}
	if cfg.Batch.Count != 800 || cfg.Batch.Concurrency != 15 {
		t.Fatalf("unexpected batch config %+v", cfg.Batch)
	}
	if cfg.Pricing.InputPerMillion != 0.05 || cfg.Pricing.OutputPerMillion != 0.40 {
		t.Fatalf("unexpected pricing %+v", cfg.Pricing)
	}
	if cfg.Output.Store != "local" || cfg.Output.Dir != "output" {
		t.Fatalf("unexpected output %+v", cfg.Output)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("RESUMEGEN_BATCH_CONCURRENCY", "4")
	t.Setenv("RESUMEGEN_LLM_TIMEOUT", "30s")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("DATABASE_URL", "postgres://localhost/resumes")
	t.Setenv("RESUMEGEN_OUTPUT_STORE", "S3")
	t.Setenv("RESUMEGEN_OUTPUT_S3_BUCKET", "bucket")

	cfg, err := Load(New(), "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Batch.Concurrency != 4 || cfg.LLM.Timeout != 30*time.Second {
		t.Fatalf("env not applied: %+v %+v", cfg.Batch, cfg.LLM)
	}
	if cfg.OpenAIAPIKey != "sk-test" || cfg.DatabaseURL != "postgres://localhost/resumes" {
		t.Fatalf("secrets not bound: key=%q db=%q", cfg.OpenAIAPIKey, cfg.DatabaseURL)
	}
	if cfg.Output.Store != "s3" {
		t.Fatalf("store = %q, want s3", cfg.Output.Store)
	}
}

func TestConfigFileAndFlags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := []byte(`
batch:
  count: 10
  concurrency: 3
catalog:
  category_weights:
    Technology: 0.6
    Finance: 0.4
`)
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	v := New()
	fs := pflag.NewFlagSet("generate", pflag.ContinueOnError)
	fs.IntP("count", "n", 0, "")
	if err := BindFlags(v, fs, map[string]string{"count": "batch.count"}); err != nil {
		t.Fatalf("BindFlags: %v", err)
	}
	if err := fs.Parse([]string{"-n", "25"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := Load(v, path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Batch.Count != 25 {
		t.Fatalf("flag did not override file: count=%d", cfg.Batch.Count)
	}
	if cfg.Batch.Concurrency != 3 {
		t.Fatalf("file value lost: concurrency=%d", cfg.Batch.Concurrency)
	}
	if got := cfg.Catalog.CategoryWeights["technology"]; got != 0.6 {
		t.Fatalf("category weight = %v", got)
	}
}

func TestBindFlagsUnknown(t *testing.T) {
	fs := pflag.NewFlagSet("x", pflag.ContinueOnError)
	if err := BindFlags(New(), fs, map[string]string{"missing": "batch.count"}); err == nil {
		t.Fatalf("expected error for undefined flag")
	}
}

func TestValidate(t *testing.T) {
	base, err := Load(New(), "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "zero count", mutate: func(c *Config) { c.Batch.Count = 0 }},
		{name: "zero concurrency", mutate: func(c *Config) { c.Batch.Concurrency = 0 }},
		{name: "negative retries", mutate: func(c *Config) { c.LLM.Retries = -1 }},
		{name: "negative price", mutate: func(c *Config) { c.Pricing.OutputPerMillion = -1 }},
		{name: "s3 without bucket", mutate: func(c *Config) { c.Output.Store = "s3" }},
		{name: "sample rate", mutate: func(c *Config) { c.Tracing.SampleRate = 2 }},
		{name: "empty model", mutate: func(c *Config) { c.LLM.Model = " " }},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Fatalf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestLoadEnvFilesDoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("RESUMEGEN_LOG_LEVEL=debug\nRESUMEGEN_METRICS_ADDR=:9090\n"), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Setenv("RESUMEGEN_LOG_LEVEL", "warn")
	t.Setenv("RESUMEGEN_METRICS_ADDR", "")
	os.Unsetenv("RESUMEGEN_METRICS_ADDR")

	LoadEnvFiles(filepath.Join(dir, "missing.env"), path)

	if got := os.Getenv("RESUMEGEN_LOG_LEVEL"); got != "warn" {
		t.Fatalf("existing variable overridden: %q", got)
	}
	if got := os.Getenv("RESUMEGEN_METRICS_ADDR"); got != ":9090" {
		t.Fatalf("RESUMEGEN_METRICS_ADDR = %q", got)
	}
}
