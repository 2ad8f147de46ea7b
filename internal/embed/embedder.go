// Package embed computes dense vector representations of saved questions so
// downstream search can rank them by semantic similarity.
package embed

import (
	"context"

	"github.com/qbank-io/exam-ingest/internal/records"
)

// Embedder turns question text into a fixed-size vector.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// QuestionText flattens a matched record into the text that gets embedded:
// the question content followed by its options.
func QuestionText(m records.Matched) string {
	text := m.Content
	if options := m.OptionsText(); options != "" {
		text += "\n" + options
	}
	return text
}
