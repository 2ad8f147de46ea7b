package llm

import (
	"strings"
	"testing"

	"github.com/qbank-io/exam-ingest/constants"
	"github.com/qbank-io/exam-ingest/internal/ingest"
)

func TestBuildSystemPromptMentionsCap(t *testing.T) {
	prompt := BuildSystemPrompt(constants.ContentTypeQuestions, 22)
	if !strings.Contains(prompt, "22번") {
		t.Errorf("question prompt does not state the cap:\n%s", prompt)
	}
	if !strings.Contains(prompt, "question_number") {
		t.Error("question prompt does not describe the record shape")
	}
	for _, d := range constants.DifficultyStrings() {
		if !strings.Contains(prompt, d) {
			t.Errorf("question prompt does not list difficulty %q", d)
		}
	}

	answers := BuildSystemPrompt(constants.ContentTypeAnswers, 10)
	if !strings.Contains(answers, "정답") {
		t.Error("answer prompt does not mention answers")
	}
	if !strings.Contains(answers, "10번") {
		t.Error("answer prompt does not state the cap")
	}
}

func TestBuildUserPromptTextChunk(t *testing.T) {
	prompt := BuildUserPrompt(ChunkRequest{
		Chunk:        ingest.Chunk{Context: "2023_기출", Text: "1. 다음 중 옳은 것은?"},
		ContentType:  constants.ContentTypeQuestions,
		MaxQuestions: 22,
	})
	if !strings.Contains(prompt, "2023_기출") {
		t.Error("context not included")
	}
	if !strings.Contains(prompt, "1. 다음 중 옳은 것은?") {
		t.Error("chunk text not included")
	}
}

func TestBuildUserPromptImageChunk(t *testing.T) {
	prompt := BuildUserPrompt(ChunkRequest{
		Chunk: ingest.Chunk{Context: "page 2", Image: []byte{1, 2}, MIME: "image/png"},
	})
	if !strings.Contains(prompt, "page 2") {
		t.Error("image context not named")
	}
	if strings.Contains(prompt, "\x01") {
		t.Error("image bytes leaked into the text prompt")
	}
}
