package llm

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Provider names.
const (
	Anthropic  = "anthropic"
	OpenAI     = "openai"
	Gemini     = "gemini"
	OpenRouter = "openrouter"
	Mock       = "mock"
)

var defaultModels = map[string]string{
	Anthropic:  "claude-haiku",
	OpenAI:     "gpt-4o-mini",
	Gemini:     "gemini-flash",
	OpenRouter: "google/gemini-2.0-flash-exp",
}

// Config selects and configures one provider.
type Config struct {
	Provider string
	APIKey   string
	Model    string // alias or full id; empty picks the provider default
	BaseURL  string
	Retry    RetryConfig
	Timeout  time.Duration // per Generate call, retries included

	RequestsPerMinute int // 0 disables the limit
	Burst             int
}

// RetryConfig controls backoff for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns the Anthropic defaults without a key.
func DefaultConfig() Config {
	return Config{
		Provider: Anthropic,
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2,
		},
		Timeout:           60 * time.Second,
		RequestsPerMinute: 30,
		Burst:             3,
	}
}

// keyVars lists the conventional API key variables in discovery order.
var keyVars = []struct{ provider, env string }{
	{Gemini, "GEMINI_API_KEY"},
	{OpenAI, "OPENAI_API_KEY"},
	{Anthropic, "ANTHROPIC_API_KEY"},
	{OpenRouter, "OPENROUTER_API_KEY"},
}

// ConfigFromEnv reads MATHBLOCKS_LLM_PROVIDER, MATHBLOCKS_LLM_API_KEY,
// MATHBLOCKS_LLM_MODEL, MATHBLOCKS_LLM_BASE_URL and MATHBLOCKS_LLM_RPM.
// Without an explicit provider it falls back to the first conventional
// key variable found.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if p := os.Getenv("MATHBLOCKS_LLM_PROVIDER"); p != "" {
		cfg.Provider = p
	} else {
		for _, kv := range keyVars {
			if k := os.Getenv(kv.env); k != "" {
				cfg.Provider, cfg.APIKey = kv.provider, k
				break
			}
		}
	}
	if k := os.Getenv("MATHBLOCKS_LLM_API_KEY"); k != "" {
		cfg.APIKey = k
	}
	if cfg.APIKey == "" {
		for _, kv := range keyVars {
			if kv.provider == cfg.Provider {
				cfg.APIKey = os.Getenv(kv.env)
			}
		}
	}
	cfg.Model = os.Getenv("MATHBLOCKS_LLM_MODEL")
	cfg.BaseURL = os.Getenv("MATHBLOCKS_LLM_BASE_URL")
	if v := os.Getenv("MATHBLOCKS_LLM_RPM"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RequestsPerMinute = n
		}
	}
	return cfg
}

// ModelName returns the configured model or the provider default.
func (c Config) ModelName() string {
	if c.Model != "" {
		return c.Model
	}
	return defaultModels[c.Provider]
}

// Validate checks the provider name and key.
func (c Config) Validate() error {
	switch c.Provider {
	case Mock:
		return nil
	case Anthropic, OpenAI, Gemini, OpenRouter:
		if c.APIKey == "" {
			return fmt.Errorf("%s provider needs an API key (set MATHBLOCKS_LLM_API_KEY)", c.Provider)
		}
		return nil
	default:
		return fmt.Errorf("unknown LLM provider %q", c.Provider)
	}
}
