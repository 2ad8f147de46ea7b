package llm

import (
	"context"

	"github.com/qbank-io/exam-ingest/internal/ingest"
)

// ChunkRequest asks the structured-extraction capability to turn one chunk
// into draft records. MaxQuestions bounds how many records the capability is
// instructed to emit; enforcement happens downstream in the capper.
type ChunkRequest struct {
	Chunk        ingest.Chunk
	ContentType  string // constants.ContentTypeQuestions | constants.ContentTypeAnswers
	MaxQuestions int
}

// Generator is the interface the pipeline depends on. Implementations return
// the capability's free-form text response, which is expected (but not
// guaranteed) to contain a JSON array of draft records.
type Generator interface {
	Generate(ctx context.Context, req ChunkRequest) (string, error)
}
