// Package export renders matched questions into XLSX workbooks for review.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/qbank-io/exam-ingest/internal/records"
	"github.com/qbank-io/exam-ingest/internal/repository"
)

// Service produces XLSX bytes from ingested records, one sheet per exam year.
type Service struct {
	repo   repository.RecordRepository
	logger *slog.Logger
}

func NewService(repo repository.RecordRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

var headers = []string{
	"Question Number",
	"Content",
	"Options",
	"Correct Answer",
	"Subject",
	"Area",
	"Difficulty",
	"Notes",
}

// ExportSource loads every record saved under sourceName and renders it.
func (s *Service) ExportSource(ctx context.Context, sourceName string) ([]byte, error) {
	recs, err := s.repo.ListBySource(ctx, sourceName)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	return s.QuestionsXLSX(sourceName, recs)
}

// QuestionsXLSX returns a workbook with the given records grouped by year.
// Sheets are named after the year ("2023") with unknown years under "unknown".
func (s *Service) QuestionsXLSX(sourceName string, recs []records.Matched) ([]byte, error) {
	start := time.Now()

	byYear := make(map[int][]records.Matched)
	for _, r := range recs {
		byYear[r.Year] = append(byYear[r.Year], r)
	}
	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)

	f := excelize.NewFile()
	for _, year := range years {
		sheet := "unknown"
		if year > 0 {
			sheet = fmt.Sprintf("%d", year)
		}
		if index, _ := f.GetSheetIndex(sheet); index == -1 {
			if _, err := f.NewSheet(sheet); err != nil {
				return nil, err
			}
		}

		for i, h := range headers {
			cell, _ := excelize.CoordinatesToCellName(i+1, 1)
			_ = f.SetCellValue(sheet, cell, h)
		}

		rows := byYear[year]
		sort.Slice(rows, func(i, j int) bool { return rows[i].QuestionNumber < rows[j].QuestionNumber })

		for i, r := range rows {
			rowNum := i + 2
			write := func(col int, v any) {
				cell, _ := excelize.CoordinatesToCellName(col, rowNum)
				_ = f.SetCellValue(sheet, cell, v)
			}
			write(1, r.QuestionNumber)
			write(2, r.Content)
			write(3, r.OptionsText())
			write(4, r.CorrectAnswer)
			write(5, r.Subject)
			write(6, r.AreaName)
			write(7, r.Difficulty)
			write(8, strings.Join(r.Description, "\n"))
		}

		_ = f.SetColWidth(sheet, "A", "A", 10)
		_ = f.SetColWidth(sheet, "B", "B", 60)
		_ = f.SetColWidth(sheet, "C", "C", 48)
		_ = f.SetColWidth(sheet, "D", "D", 14)
		_ = f.SetColWidth(sheet, "E", "G", 16)
		_ = f.SetColWidth(sheet, "H", "H", 48)
	}

	// Drop the default sheet if nothing landed on it.
	if len(years) > 0 {
		if index, _ := f.GetSheetIndex("Sheet1"); index != -1 {
			_ = f.DeleteSheet("Sheet1")
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"source", sourceName,
		"rows", len(recs),
		"sheets", len(years),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
