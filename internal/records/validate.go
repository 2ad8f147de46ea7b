package records

import (
	"fmt"

	"github.com/qbank-io/exam-ingest/internal/common"
)

// Rejection records why a matched record was refused, so the report can
// carry the trace instead of silently dropping it.
type Rejection struct {
	Year   int    `json:"year"`
	Number int    `json:"number"`
	Reason string `json:"reason"`
}

// ValidateCompleteness admits a merged record only when it carries the
// minimum field set the downstream store requires. Returns the reject reason
// for refused records.
func ValidateCompleteness(m Matched, maxNumber int) (bool, string) {
	v := common.NewValidator()
	v.Field("question_number", m.QuestionNumber, common.Required, common.IntRange(1, maxNumber))
	v.Field("content", m.Content, common.Required)
	v.Field("correct_answer", m.CorrectAnswer, common.Required)
	v.Field("options", m.Options, common.MinEntries(2))
	if v.HasErrors() {
		return false, v.ErrorMessage()
	}

	// the key must exist; coercing the answer to some option is not allowed
	if len(m.Options) > 0 {
		if _, ok := m.Options[m.CorrectAnswer]; !ok {
			return false, fmt.Sprintf("correct_answer %q is not an option key", m.CorrectAnswer)
		}
	}
	return true, ""
}
