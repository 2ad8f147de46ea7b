package records

import (
	"regexp"
	"strconv"

	"github.com/qbank-io/exam-ingest/constants"
)

var yearToken = regexp.MustCompile(`20\d{2}`)

// ContextYear derives a contextual year from a chunk context string (e.g. a
// sheet name like "2023_기출"). Falls back to constants.FallbackYear when no
// token is found.
func ContextYear(chunkContext string) int {
	if match := yearToken.FindString(chunkContext); match != "" {
		if year, err := strconv.Atoi(match); err == nil {
			return year
		}
	}
	return constants.FallbackYear
}

// ResolveYears assigns the contextual year to every draft whose year is
// unset. Explicit years are never overwritten: the extraction capability's
// own answer is trusted first. Idempotent.
func ResolveYears(drafts []Draft, chunkContext string) []Draft {
	year := ContextYear(chunkContext)
	for i := range drafts {
		if drafts[i].Year == 0 {
			drafts[i].Year = year
		}
	}
	return drafts
}
