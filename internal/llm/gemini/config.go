package gemini

import (
	"os"
	"time"
)

// Config for the Gemini-backed generator.
type Config struct {
	APIKey      string        // if empty, falls back to env GEMINI_API_KEY
	Model       string        // e.g. "gemini-2.0-flash"
	Temperature float32       // 0..2
	Timeout     time.Duration // per-call deadline
	MaxRetries  int           // retry ceiling for retryable failures
}

func (cfg Config) withDefaults() Config {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	return cfg
}
