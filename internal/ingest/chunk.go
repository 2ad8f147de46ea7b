package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/qbank-io/exam-ingest/constants"
	"github.com/qbank-io/exam-ingest/internal/common"
)

// Chunk is one independently processed unit of a source file: a rendered PDF
// page, one spreadsheet sheet, or a slice of plain text. Seq is assigned in
// source order at chunking time and stays stable regardless of how chunk
// results complete later.
type Chunk struct {
	Seq     int
	Format  string
	Context string // sheet name, page label, or file name; feeds year inference
	Text    string
	Image   []byte // PNG bytes for PDF page chunks
	MIME    string
}

// Config for the chunk extractor.
type Config struct {
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	DPI       int    // rasterization DPI, default 200
	MaxPages  int    // 0 = no limit
	ChunkSize int    // plain-text character budget per chunk
}

// Chunker splits a classified source file into extraction chunks.
type Chunker struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewChunker(cfg Config, logger *slog.Logger) *Chunker {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 200
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = constants.TextChunkSize
	}
	return &Chunker{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
}

// DetectFormat classifies a file by extension into one of the registered
// format tags.
func DetectFormat(path string) (string, error) {
	ext := constants.NormalizeExt(filepath.Ext(path))
	format := constants.MapExtToFormat(ext)
	if format == "" {
		return "", fmt.Errorf("%w: extension %q (supported: %s)",
			common.ErrUnsupportedFormat, ext, strings.Join(constants.FileTypes, ", "))
	}
	return format, nil
}

// Chunks detects the file format and produces its ordered chunk sequence.
// Per-page render failures are logged and skipped; the remaining pages still
// produce chunks.
func (c *Chunker) Chunks(ctx context.Context, path string) ([]Chunk, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("chunking source file", "path", path, "format", format)

	switch format {
	case constants.PDF:
		return c.pdfChunks(ctx, path)
	case constants.XLSX:
		return c.sheetChunks(path)
	case constants.TEXT:
		return c.textChunks(path)
	default:
		return nil, fmt.Errorf("%w: %s", common.ErrUnsupportedFormat, format)
	}
}
