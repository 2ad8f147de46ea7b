package records

import (
	"log/slog"
	"sort"
)

// MatchOutcome carries the matched pairs plus everything that failed to pair,
// so the aggregator can report gaps instead of silently dropping them.
type MatchOutcome struct {
	Matched            []Matched
	UnmatchedQuestions []Draft
	UnmatchedAnswers   []Draft
	DuplicateAnswers   int
	QuestionsByYear    map[int]int // extracted question counts per year
}

// Match joins question and answer drafts by the (year, number) composite key.
// Drafts with unset years land in a year-0 bucket and never match across
// buckets. Within a year the answer numbering space is unique, so duplicate
// answer numbers resolve first-wins; later duplicates are logged and counted.
func Match(questions, answers []Draft, logger *slog.Logger) MatchOutcome {
	if logger == nil {
		logger = slog.Default()
	}

	out := MatchOutcome{QuestionsByYear: make(map[int]int)}

	questionsByYear := groupByYear(questions)
	answersByYear := groupByYear(answers)
	for year, group := range questionsByYear {
		out.QuestionsByYear[year] = len(group)
	}

	for _, year := range sortedYears(questionsByYear) {
		group := questionsByYear[year]

		index := make(map[int]Draft)
		for _, a := range answersByYear[year] {
			if _, seen := index[a.Number]; seen {
				out.DuplicateAnswers++
				logger.Warn("duplicate answer number, keeping first",
					"year", year, "number", a.Number)
				continue
			}
			index[a.Number] = a
		}

		matchedNumbers := make(map[int]bool, len(index))
		for _, q := range group {
			a, ok := index[q.Number]
			if !ok {
				logger.Debug("question without answer", "year", year, "number", q.Number)
				out.UnmatchedQuestions = append(out.UnmatchedQuestions, q)
				continue
			}
			matchedNumbers[q.Number] = true
			out.Matched = append(out.Matched, merge(q, a))
		}

		for _, a := range answersByYear[year] {
			if !matchedNumbers[a.Number] {
				out.UnmatchedAnswers = append(out.UnmatchedAnswers, a)
			}
		}
	}

	// answers for years with no questions at all are unmatched too
	for year, group := range answersByYear {
		if _, ok := questionsByYear[year]; !ok {
			out.UnmatchedAnswers = append(out.UnmatchedAnswers, group...)
		}
	}

	logger.Info("matching complete",
		"questions", len(questions),
		"answers", len(answers),
		"matched", len(out.Matched),
		"unmatched_questions", len(out.UnmatchedQuestions),
		"unmatched_answers", len(out.UnmatchedAnswers),
		"duplicate_answers", out.DuplicateAnswers,
	)
	return out
}

func groupByYear(drafts []Draft) map[int][]Draft {
	grouped := make(map[int][]Draft)
	for _, d := range drafts {
		grouped[d.Year] = append(grouped[d.Year], d)
	}
	return grouped
}

func sortedYears(grouped map[int][]Draft) []int {
	years := make([]int, 0, len(grouped))
	for year := range grouped {
		years = append(years, year)
	}
	sort.Ints(years)
	return years
}
