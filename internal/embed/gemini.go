package embed

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/genai"

	"github.com/qbank-io/exam-ingest/internal/common"
)

const defaultEmbeddingModel = "gemini-embedding-001"

// GeminiEmbedder computes embeddings through the Gemini API.
type GeminiEmbedder struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

func NewGeminiEmbedder(ctx context.Context, apiKey, model string, logger *slog.Logger) (*GeminiEmbedder, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if model == "" {
		model = defaultEmbeddingModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, common.WrapError(err, "create gemini client")
	}
	return &GeminiEmbedder{client: client, model: model, logger: logger}, nil
}

func (e *GeminiEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	contents := make([]*genai.Content, 0, len(texts))
	for _, text := range texts {
		contents = append(contents, genai.NewContentFromParts(
			[]*genai.Part{genai.NewPartFromText(text)}, genai.RoleUser))
	}

	resp, err := e.client.Models.EmbedContent(ctx, e.model, contents, nil)
	if err != nil {
		return nil, common.WrapError(err, "embed content")
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch (got %d want %d)", len(resp.Embeddings), len(texts))
	}

	vecs := make([][]float32, len(resp.Embeddings))
	for i, emb := range resp.Embeddings {
		vecs[i] = emb.Values
	}
	e.logger.Debug("embed.batch.ok", "model", e.model, "count", len(vecs))
	return vecs, nil
}
