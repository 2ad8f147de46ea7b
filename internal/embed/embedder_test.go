package embed

import (
	"testing"

	"github.com/qbank-io/exam-ingest/internal/records"
)

func TestQuestionText(t *testing.T) {
	m := records.Matched{
		Content: "다음 중 옳은 것은?",
		Options: map[string]string{"2": "나", "1": "가"},
	}
	got := QuestionText(m)
	want := "다음 중 옳은 것은?\n1. 가\n2. 나"
	if got != want {
		t.Errorf("QuestionText = %q, want %q", got, want)
	}

	bare := records.Matched{Content: "주관식 문제"}
	if got := QuestionText(bare); got != "주관식 문제" {
		t.Errorf("QuestionText without options = %q", got)
	}
}
