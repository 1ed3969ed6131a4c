package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	configPathEnv      = "INBOX_AGENT_CONFIG"
	gmailCredentialEnv = "GMAIL_CLIENT_SECRET_PATH"
	gmailTokenEnv      = "GMAIL_TOKEN_PATH"
	llmBaseURLEnv      = "LLM_BASE_URL"
	llmModelEnv        = "LLM_MODEL"
	llmAPIKeyEnv       = "LLM_API_KEY"
	maxEmailsEnv       = "MAX_EMAILS"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Gmail   GmailConfig   `yaml:"gmail"`
	LLM     LLMConfig     `yaml:"llm"`
	Batch   BatchConfig   `yaml:"batch"`
	Rules   RulesConfig   `yaml:"rules"`
}

// LoggingConfig selects log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// GmailConfig locates local OAuth artifacts. Neither file is ever committed.
type GmailConfig struct {
	ClientSecretPath string `yaml:"clientSecretPath"`
	TokenPath        string `yaml:"tokenPath"`
}

// LLMConfig defines how to contact the completion API. BaseURL accepts any
// OpenAI-compatible endpoint, including a local Ollama server's /v1.
type LLMConfig struct {
	BaseURL        string  `yaml:"baseUrl"`
	Model          string  `yaml:"model"`
	APIKey         string  `yaml:"apiKey"`
	Temperature    float64 `yaml:"temperature"`
	MaxTokens      int     `yaml:"maxTokens"`
	TimeoutSeconds int     `yaml:"timeoutSeconds"`
	MaxRetries     int     `yaml:"maxRetries"`
}

// Timeout resolves the configured request deadline.
func (l LLMConfig) Timeout() time.Duration {
	if l.TimeoutSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(l.TimeoutSeconds) * time.Second
}

// BatchConfig controls one triage run and the optional repeat interval.
type BatchConfig struct {
	Limit    int    `yaml:"limit"`
	Interval string `yaml:"interval"`
}

// PollInterval resolves the repeat interval; zero means run once and exit.
func (b BatchConfig) PollInterval() time.Duration {
	if b.Interval == "" {
		return 0
	}
	d, err := time.ParseDuration(b.Interval)
	if err != nil {
		log.Printf("config: invalid batch interval %q, running once", b.Interval)
		return 0
	}
	return d
}

// RulesConfig tunes the deterministic cascade without a rebuild.
type RulesConfig struct {
	// MarketingSenders are sender substrings force-classified as
	// advertisements ahead of every other rule.
	MarketingSenders []string `yaml:"marketingSenders"`
}

// Load reads .env, YAML configuration (if present) and applies environment
// overrides.
func Load() Config {
	_ = godotenv.Load()

	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(gmailCredentialEnv); v != "" {
		c.Gmail.ClientSecretPath = v
	}
	if v := os.Getenv(gmailTokenEnv); v != "" {
		c.Gmail.TokenPath = v
	}
	if v := os.Getenv(llmBaseURLEnv); v != "" {
		c.LLM.BaseURL = v
	}
	if v := os.Getenv(llmModelEnv); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv(llmAPIKeyEnv); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv(maxEmailsEnv); v != "" {
		if limit, err := strconv.Atoi(v); err == nil && limit > 0 {
			c.Batch.Limit = limit
		} else {
			log.Printf("config: invalid %s=%q, keeping %d", maxEmailsEnv, v, c.Batch.Limit)
		}
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if override.Gmail.ClientSecretPath != "" {
		base.Gmail.ClientSecretPath = override.Gmail.ClientSecretPath
	}
	if override.Gmail.TokenPath != "" {
		base.Gmail.TokenPath = override.Gmail.TokenPath
	}

	if override.LLM.BaseURL != "" {
		base.LLM.BaseURL = override.LLM.BaseURL
	}
	if override.LLM.Model != "" {
		base.LLM.Model = override.LLM.Model
	}
	if override.LLM.APIKey != "" {
		base.LLM.APIKey = override.LLM.APIKey
	}
	if override.LLM.Temperature != 0 {
		base.LLM.Temperature = override.LLM.Temperature
	}
	if override.LLM.MaxTokens != 0 {
		base.LLM.MaxTokens = override.LLM.MaxTokens
	}
	if override.LLM.TimeoutSeconds != 0 {
		base.LLM.TimeoutSeconds = override.LLM.TimeoutSeconds
	}
	if override.LLM.MaxRetries != 0 {
		base.LLM.MaxRetries = override.LLM.MaxRetries
	}

	if override.Batch.Limit != 0 {
		base.Batch.Limit = override.Batch.Limit
	}
	if override.Batch.Interval != "" {
		base.Batch.Interval = override.Batch.Interval
	}

	if len(override.Rules.MarketingSenders) > 0 {
		base.Rules.MarketingSenders = override.Rules.MarketingSenders
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Gmail: GmailConfig{
			ClientSecretPath: "secrets/gmail_oauth_client.json",
			TokenPath:        "secrets/gmail_token.json",
		},
		LLM: LLMConfig{
			BaseURL:        "http://localhost:11434/v1",
			Model:          "llama3.1",
			Temperature:    0.2,
			MaxTokens:      220,
			TimeoutSeconds: 180,
			MaxRetries:     2,
		},
		Batch: BatchConfig{Limit: 50},
	}
}
