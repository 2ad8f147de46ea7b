package gemini

import (
	"context"
	"errors"
	"testing"
	"time"

	"google.golang.org/genai"
)

func TestIsRetryable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"rate limited", genai.APIError{Code: 429}, true},
		{"server error", genai.APIError{Code: 500}, true},
		{"unavailable", genai.APIError{Code: 503}, true},
		{"bad request", genai.APIError{Code: 400}, false},
		{"unauthorized", genai.APIError{Code: 401}, false},
		{"deadline", context.DeadlineExceeded, true},
		{"transport", errors.New("connection reset by peer"), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := isRetryable(tc.err); got != tc.want {
				t.Errorf("isRetryable(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestJitterBounds(t *testing.T) {
	base := time.Second
	for i := 0; i < 100; i++ {
		d := jitter(base)
		if d < base || d > base+base/4 {
			t.Fatalf("jitter(%v) = %v outside [base, base+25%%]", base, d)
		}
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{APIKey: "test-key"}.withDefaults()
	if cfg.Model != "gemini-2.0-flash" {
		t.Errorf("Model = %q", cfg.Model)
	}
	if cfg.Timeout != 60*time.Second {
		t.Errorf("Timeout = %v", cfg.Timeout)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d", cfg.MaxRetries)
	}
}
