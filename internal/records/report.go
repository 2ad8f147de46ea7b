package records

import (
	"fmt"
	"sort"
	"strconv"
)

// YearResult summarizes one year group.
type YearResult struct {
	Saved          int    `json:"saved"`
	Total          int    `json:"total"`
	MatchRate      string `json:"match_rate"`
	MissingNumbers []int  `json:"missing_numbers,omitempty"`
}

// ChunkStats counts what happened at the extraction boundary, per file.
type ChunkStats struct {
	Chunks       int `json:"chunks"`
	FailedChunks int `json:"failed_chunks"`
	OutOfRange   int `json:"out_of_range_records"`
	Overflow     int `json:"capped_records"`
}

// Report is the sole output artifact alongside the accepted record list.
// Immutable once returned; rates are pre-formatted with one decimal place.
type Report struct {
	Success          bool                  `json:"success"`
	Message          string                `json:"message,omitempty"`
	SourceName       string                `json:"source_name,omitempty"`
	TotalQuestions   int                   `json:"total_questions"`
	SavedQuestions   int                   `json:"saved_questions"`
	SaveRate         string                `json:"save_rate"`
	ResultsByYear    map[string]YearResult `json:"results_by_year"`
	Rejections       []Rejection           `json:"rejections,omitempty"`
	UnmatchedAnswers int                   `json:"unmatched_answers,omitempty"`
	DuplicateAnswers int                   `json:"duplicate_answers,omitempty"`
	QuestionChunks   ChunkStats            `json:"question_chunks"`
	AnswerChunks     ChunkStats            `json:"answer_chunks"`
}

// BuildReport aggregates per-year and overall counts for one run. Pure and
// deterministic given its inputs.
func BuildReport(source string, match MatchOutcome, accepted []Matched, rejections []Rejection, questionChunks, answerChunks ChunkStats) Report {
	report := Report{
		SourceName:       source,
		ResultsByYear:    make(map[string]YearResult),
		Rejections:       rejections,
		UnmatchedAnswers: len(match.UnmatchedAnswers),
		DuplicateAnswers: match.DuplicateAnswers,
		QuestionChunks:   questionChunks,
		AnswerChunks:     answerChunks,
	}

	savedByYear := make(map[int]int)
	for _, m := range accepted {
		savedByYear[m.Year]++
	}
	missingByYear := make(map[int][]int)
	for _, q := range match.UnmatchedQuestions {
		missingByYear[q.Year] = append(missingByYear[q.Year], q.Number)
	}
	for year := range missingByYear {
		sort.Ints(missingByYear[year])
	}

	for year, total := range match.QuestionsByYear {
		saved := savedByYear[year]
		report.ResultsByYear[strconv.Itoa(year)] = YearResult{
			Saved:          saved,
			Total:          total,
			MatchRate:      formatRate(saved, total),
			MissingNumbers: missingByYear[year],
		}
		report.TotalQuestions += total
		report.SavedQuestions += saved
	}

	report.SaveRate = formatRate(report.SavedQuestions, report.TotalQuestions)
	report.Success = report.TotalQuestions > 0
	if report.Success {
		report.Message = fmt.Sprintf("%d of %d questions matched and saved", report.SavedQuestions, report.TotalQuestions)
	} else {
		report.Message = "no question records extracted"
	}
	return report
}

func formatRate(part, total int) string {
	if total == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(part)/float64(total)*100)
}
