package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"github.com/qbank-io/exam-ingest/internal/common"
	"github.com/qbank-io/exam-ingest/internal/llm"
)

// Client implements llm.Generator against the Gemini API. Page-image chunks
// go out as inline PNG parts; sheet and text chunks as plain text.
type Client struct {
	cfg    Config
	client *genai.Client
	logger *slog.Logger
}

var _ llm.Generator = (*Client)(nil)

func NewClient(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.APIKey == "" {
		return nil, common.NewAppError("CONFIG_ERROR", "GEMINI_API_KEY is required", common.ErrInvalidInput)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Client{cfg: cfg, client: client, logger: logger}, nil
}

// Generate sends one chunk and returns the raw text response. Transient
// failures (rate limits, 5xx, transport errors) are retried with exponential
// backoff up to the configured ceiling; everything else surfaces immediately.
func (c *Client) Generate(ctx context.Context, req llm.ChunkRequest) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	system := llm.BuildSystemPrompt(req.ContentType, req.MaxQuestions)
	user := llm.BuildUserPrompt(req)

	parts := []*genai.Part{genai.NewPartFromText(user)}
	if len(req.Chunk.Image) > 0 {
		parts = append(parts, genai.NewPartFromBytes(req.Chunk.Image, req.Chunk.MIME))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(c.cfg.Temperature),
		ResponseMIMEType: "application/json",
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		},
	}

	c.logger.Info("extract.call.start",
		"req_id", rid,
		"source", common.SourceNameFromContext(ctx),
		"model", c.cfg.Model,
		"content_type", req.ContentType,
		"chunk_seq", req.Chunk.Seq,
		"chunk_context", req.Chunk.Context,
		"has_image", len(req.Chunk.Image) > 0,
		"text_len", len(req.Chunk.Text),
	)

	backoff := 1 * time.Second
	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		callCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
		resp, err := c.client.Models.GenerateContent(callCtx, c.cfg.Model, contents, config)
		cancel()

		if err == nil {
			text := resp.Text()
			c.logger.Info("extract.call.ok",
				"req_id", rid,
				"attempt", attempt+1,
				"response_len", len(text),
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			return text, nil
		}
		lastErr = err

		if !isRetryable(err) {
			c.logger.Error("extract.call.failed",
				"req_id", rid, "attempt", attempt+1, "error", err,
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			return "", fmt.Errorf("%w: %v", common.ErrExtractionCall, err)
		}
		if attempt == c.cfg.MaxRetries {
			break
		}

		sleep := jitter(backoff)
		c.logger.Warn("extract.call.retrying",
			"req_id", rid,
			"attempt", attempt+1,
			"max_retries", c.cfg.MaxRetries,
			"sleep", sleep.String(),
			"error", err,
		)
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(sleep):
		}
		backoff *= 2
	}

	c.logger.Error("extract.call.exhausted",
		"req_id", rid, "retries", c.cfg.MaxRetries, "error", lastErr,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return "", fmt.Errorf("%w: retries exhausted: %v", common.ErrExtractionCall, lastErr)
}

func isRetryable(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 408, 429, 500, 502, 503, 504:
			return true
		}
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	// transport-level errors carry no status; assume transient
	return true
}

func jitter(d time.Duration) time.Duration {
	// up to +25%
	return d + time.Duration(rand.Int63n(int64(d)/4+1))
}
