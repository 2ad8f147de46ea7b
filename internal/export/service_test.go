package export

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/qbank-io/exam-ingest/internal/records"
)

func TestQuestionsXLSXSheetPerYear(t *testing.T) {
	recs := []records.Matched{
		{QuestionNumber: 2, Year: 2023, Content: "둘째", Options: map[string]string{"1": "a", "2": "b"}, CorrectAnswer: "1", Difficulty: "중"},
		{QuestionNumber: 1, Year: 2023, Content: "첫째", Options: map[string]string{"1": "a", "2": "b"}, CorrectAnswer: "2", Difficulty: "상"},
		{QuestionNumber: 1, Year: 2024, Content: "새해", Options: map[string]string{"1": "a", "2": "b"}, CorrectAnswer: "1", Difficulty: "하"},
	}

	s := NewService(nil, nil)
	data, err := s.QuestionsXLSX("기출모음", recs)
	if err != nil {
		t.Fatalf("QuestionsXLSX: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open produced workbook: %v", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) != 2 {
		t.Fatalf("sheets = %v, want one per year", sheets)
	}

	rows, err := f.GetRows("2023")
	if err != nil {
		t.Fatalf("GetRows(2023): %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("2023 rows = %d, want header + 2", len(rows))
	}
	if rows[0][0] != "Question Number" {
		t.Errorf("header = %q", rows[0][0])
	}
	// rows sorted by question number
	if rows[1][1] != "첫째" || rows[2][1] != "둘째" {
		t.Errorf("row order = %q, %q", rows[1][1], rows[2][1])
	}
	if rows[1][3] != "2" {
		t.Errorf("correct answer cell = %q", rows[1][3])
	}

	rows2024, err := f.GetRows("2024")
	if err != nil {
		t.Fatalf("GetRows(2024): %v", err)
	}
	if len(rows2024) != 2 {
		t.Errorf("2024 rows = %d, want header + 1", len(rows2024))
	}
}

func TestQuestionsXLSXUnknownYear(t *testing.T) {
	recs := []records.Matched{
		{QuestionNumber: 1, Year: 0, Content: "연도 미상", Options: map[string]string{"1": "a", "2": "b"}, CorrectAnswer: "1"},
	}
	s := NewService(nil, nil)
	data, err := s.QuestionsXLSX("미상", recs)
	if err != nil {
		t.Fatalf("QuestionsXLSX: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = f.Close() }()

	if idx, _ := f.GetSheetIndex("unknown"); idx == -1 {
		t.Errorf("sheets = %v, want an unknown-year sheet", f.GetSheetList())
	}
}
