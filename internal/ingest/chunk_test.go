package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/qbank-io/exam-ingest/constants"
	"github.com/qbank-io/exam-ingest/internal/common"
)

func TestDetectFormat(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"exam.pdf", constants.PDF},
		{"answers.XLSX", constants.XLSX},
		{"legacy.xls", constants.XLSX},
		{"dump.txt", constants.TEXT},
		{"notes.md", constants.TEXT},
		{"table.csv", constants.TEXT},
	}
	for _, tc := range cases {
		got, err := DetectFormat(tc.path)
		if err != nil {
			t.Errorf("DetectFormat(%q): %v", tc.path, err)
			continue
		}
		if got != tc.want {
			t.Errorf("DetectFormat(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}

	_, err := DetectFormat("archive.zip")
	if !errors.Is(err, common.ErrUnsupportedFormat) {
		t.Errorf("DetectFormat(zip) = %v, want ErrUnsupportedFormat", err)
	}
	for _, format := range constants.FileTypes {
		if !strings.Contains(err.Error(), format) {
			t.Errorf("DetectFormat(zip) error %q does not list %s", err, format)
		}
	}
}

func TestTextChunksSplit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "questions.txt")
	content := strings.Repeat("가", 25)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	c := NewChunker(Config{ChunkSize: 10}, nil)
	chunks, err := c.Chunks(context.Background(), path)
	if err != nil {
		t.Fatalf("Chunks: %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("chunks = %d, want 3", len(chunks))
	}
	if len([]rune(chunks[0].Text)) != 10 || len([]rune(chunks[2].Text)) != 5 {
		t.Errorf("chunk sizes = %d/%d/%d runes",
			len([]rune(chunks[0].Text)), len([]rune(chunks[1].Text)), len([]rune(chunks[2].Text)))
	}
	for i, chunk := range chunks {
		if chunk.Seq != i {
			t.Errorf("chunks[%d].Seq = %d", i, chunk.Seq)
		}
		if chunk.Format != constants.TEXT {
			t.Errorf("chunks[%d].Format = %q", i, chunk.Format)
		}
	}
	for i, chunk := range chunks {
		if chunk.Context != "questions.txt" {
			t.Errorf("chunks[%d].Context = %q, want the file name", i, chunk.Context)
		}
	}
}

func TestTextChunksContextCarriesNoPositionDigits(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "기출문제.txt")
	// enough text that a position-based context would reach five digits
	if err := os.WriteFile(path, []byte(strings.Repeat("a", 120001)), 0o644); err != nil {
		t.Fatal(err)
	}

	c := NewChunker(Config{ChunkSize: 15000}, nil)
	chunks, err := c.Chunks(context.Background(), path)
	if err != nil {
		t.Fatalf("Chunks: %v", err)
	}
	if len(chunks) != 9 {
		t.Fatalf("chunks = %d, want 9", len(chunks))
	}
	for i, chunk := range chunks {
		if chunk.Context != "기출문제.txt" {
			t.Errorf("chunks[%d].Context = %q", i, chunk.Context)
		}
	}
}

func TestSheetChunks(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "answers.xlsx")

	f := excelize.NewFile()
	sheet := "2023_기출"
	if _, err := f.NewSheet(sheet); err != nil {
		t.Fatal(err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		t.Fatal(err)
	}
	rows := [][]any{
		{"번호", "정답"},
		{1, "3"},
		{}, // blank row, must be dropped
		{2, "1"},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}

	c := NewChunker(Config{}, nil)
	chunks, err := c.Chunks(context.Background(), path)
	if err != nil {
		t.Fatalf("Chunks: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("chunks = %d, want 1", len(chunks))
	}
	if chunks[0].Context != sheet {
		t.Errorf("Context = %q, want sheet name", chunks[0].Context)
	}
	lines := strings.Split(chunks[0].Text, "\n")
	if len(lines) != 3 {
		t.Errorf("lines = %d, want 3 (blank row dropped): %q", len(lines), chunks[0].Text)
	}
	if !strings.Contains(lines[0], "번호\t정답") {
		t.Errorf("header line = %q, want tab-joined cells", lines[0])
	}
}

// fakeRenderer stands in for pdftoppm: it writes page images under the
// output prefix it receives.
type fakeRenderer struct {
	pages int
	fail  bool
}

func (f fakeRenderer) Run(_ context.Context, _ string, args ...string) ([]byte, []byte, error) {
	if f.fail {
		return nil, []byte("Syntax Error: broken document"), errors.New("exit status 1")
	}
	prefix := args[len(args)-1]
	for p := 1; p <= f.pages; p++ {
		if err := os.WriteFile(fmt.Sprintf("%s-%d.png", prefix, p), []byte{0x89, 'P', 'N', 'G', byte(p)}, 0o644); err != nil {
			return nil, nil, err
		}
	}
	return nil, nil, nil
}

func TestPdfChunks(t *testing.T) {
	c := NewChunker(Config{}, nil)
	c.runner = fakeRenderer{pages: 3}

	chunks, err := c.Chunks(context.Background(), "exam.pdf")
	if err != nil {
		t.Fatalf("Chunks: %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("chunks = %d, want 3", len(chunks))
	}
	for i, chunk := range chunks {
		if chunk.Format != constants.PDF || chunk.MIME != "image/png" {
			t.Errorf("chunks[%d] format/mime = %q/%q", i, chunk.Format, chunk.MIME)
		}
		if len(chunk.Image) == 0 {
			t.Errorf("chunks[%d] has no image bytes", i)
		}
		if chunk.Context != fmt.Sprintf("page %d", i+1) {
			t.Errorf("chunks[%d].Context = %q", i, chunk.Context)
		}
	}
}

func TestPdfChunksMaxPages(t *testing.T) {
	c := NewChunker(Config{MaxPages: 2}, nil)
	c.runner = fakeRenderer{pages: 5}

	chunks, err := c.Chunks(context.Background(), "exam.pdf")
	if err != nil {
		t.Fatalf("Chunks: %v", err)
	}
	if len(chunks) != 2 {
		t.Errorf("chunks = %d, want 2 with page cap", len(chunks))
	}
}

func TestPdfChunksRenderFailure(t *testing.T) {
	c := NewChunker(Config{}, nil)
	c.runner = fakeRenderer{fail: true}

	_, err := c.Chunks(context.Background(), "exam.pdf")
	if !errors.Is(err, common.ErrRenderFailure) {
		t.Errorf("err = %v, want ErrRenderFailure", err)
	}
}
