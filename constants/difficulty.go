package constants

import "strings"

// Difficulty labels follow the source exam corpus (하/중/상).
type Difficulty string

const (
	DifficultyLow    Difficulty = "하"
	DifficultyMedium Difficulty = "중"
	DifficultyHigh   Difficulty = "상"
)

var allDifficulties = []Difficulty{DifficultyLow, DifficultyMedium, DifficultyHigh}

func DifficultyStrings() []string {
	result := make([]string, len(allDifficulties))
	for i, d := range allDifficulties {
		result[i] = string(d)
	}
	return result
}

// CanonicalizeDifficulty maps free-form difficulty labels the extraction
// capability emits to the canonical set. Unknown labels fall back to 중.
func CanonicalizeDifficulty(input string) (Difficulty, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return DifficultyMedium, false
	}

	synonyms := map[string]Difficulty{
		"하":      DifficultyLow,
		"easy":   DifficultyLow,
		"low":    DifficultyLow,
		"쉬움":     DifficultyLow,
		"중":      DifficultyMedium,
		"medium": DifficultyMedium,
		"mid":    DifficultyMedium,
		"보통":     DifficultyMedium,
		"상":      DifficultyHigh,
		"hard":   DifficultyHigh,
		"high":   DifficultyHigh,
		"어려움":    DifficultyHigh,
	}
	if d, ok := synonyms[normalized]; ok {
		return d, true
	}
	return DifficultyMedium, false
}
