package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.LLM.BaseURL != "http://localhost:11434/v1" {
		t.Errorf("LLM.BaseURL = %q", cfg.LLM.BaseURL)
	}
	if cfg.LLM.MaxRetries != 2 {
		t.Errorf("LLM.MaxRetries = %d; want 2", cfg.LLM.MaxRetries)
	}
	if cfg.Batch.Limit != 50 {
		t.Errorf("Batch.Limit = %d; want 50", cfg.Batch.Limit)
	}
	if cfg.Batch.PollInterval() != 0 {
		t.Errorf("PollInterval = %v; want run-once", cfg.Batch.PollInterval())
	}
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
llm:
  model: qwen2.5
  timeoutSeconds: 30
batch:
  limit: 10
  interval: 15m
rules:
  marketingSenders:
    - newsletters.example
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(configPathEnv, path)

	cfg := Load()

	if cfg.LLM.Model != "qwen2.5" {
		t.Errorf("LLM.Model = %q", cfg.LLM.Model)
	}
	if cfg.LLM.Timeout() != 30*time.Second {
		t.Errorf("Timeout = %v", cfg.LLM.Timeout())
	}
	if cfg.LLM.BaseURL != "http://localhost:11434/v1" {
		t.Errorf("unset file field must keep default, got %q", cfg.LLM.BaseURL)
	}
	if cfg.Batch.Limit != 10 {
		t.Errorf("Batch.Limit = %d; want 10", cfg.Batch.Limit)
	}
	if cfg.Batch.PollInterval() != 15*time.Minute {
		t.Errorf("PollInterval = %v", cfg.Batch.PollInterval())
	}
	if len(cfg.Rules.MarketingSenders) != 1 || cfg.Rules.MarketingSenders[0] != "newsletters.example" {
		t.Errorf("MarketingSenders = %v", cfg.Rules.MarketingSenders)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("llm:\n  model: from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(configPathEnv, path)
	t.Setenv(llmModelEnv, "from-env")
	t.Setenv(maxEmailsEnv, "25")

	cfg := Load()

	if cfg.LLM.Model != "from-env" {
		t.Errorf("LLM.Model = %q; want env to win", cfg.LLM.Model)
	}
	if cfg.Batch.Limit != 25 {
		t.Errorf("Batch.Limit = %d; want 25", cfg.Batch.Limit)
	}
}

func TestLoadIgnoresInvalidLimit(t *testing.T) {
	t.Setenv(maxEmailsEnv, "not-a-number")

	cfg := Load()

	if cfg.Batch.Limit != 50 {
		t.Errorf("Batch.Limit = %d; want default kept", cfg.Batch.Limit)
	}
}

func TestPollIntervalInvalidDuration(t *testing.T) {
	b := BatchConfig{Interval: "soonish"}
	if b.PollInterval() != 0 {
		t.Errorf("PollInterval = %v; want run-once fallback", b.PollInterval())
	}
}
