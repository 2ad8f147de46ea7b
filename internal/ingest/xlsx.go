package ingest

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/qbank-io/exam-ingest/constants"
)

// sheetChunks produces one chunk per sheet. Cells are joined tab-separated,
// empty rows are dropped, and each sheet is capped at MaxSheetRows rows. The
// sheet name is kept as chunk context: answer workbooks in the corpus encode
// the exam year there (e.g. "2023_기출").
func (c *Chunker) sheetChunks(path string) ([]Chunk, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			c.logger.Warn("workbook close error", "path", path, "error", err)
		}
	}()

	var chunks []Chunk
	for i, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			c.logger.Warn("sheet unreadable, skipping", "sheet", sheet, "error", err)
			continue
		}

		var lines []string
		for _, row := range rows {
			if len(lines) >= constants.MaxSheetRows {
				break
			}
			empty := true
			for _, cell := range row {
				if strings.TrimSpace(cell) != "" {
					empty = false
					break
				}
			}
			if empty {
				continue
			}
			lines = append(lines, strings.Join(row, "\t"))
		}
		if len(lines) == 0 {
			c.logger.Debug("sheet empty, skipping", "sheet", sheet)
			continue
		}

		chunks = append(chunks, Chunk{
			Seq:     i,
			Format:  constants.XLSX,
			Context: sheet,
			Text:    strings.Join(lines, "\n"),
		})
	}

	c.logger.Info("workbook chunked", "path", path, "sheets", len(chunks))
	return chunks, nil
}
