package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/qbank-io/exam-ingest/constants"
	"github.com/qbank-io/exam-ingest/internal/common"
)

// pdfChunks rasterizes each page to a PNG chunk.
func (c *Chunker) pdfChunks(ctx context.Context, path string) ([]Chunk, error) {
	tmpDir, err := os.MkdirTemp("", "qi-pp-*")
	if err != nil {
		return nil, err
	}
	defer func(dir string) {
		if err := os.RemoveAll(dir); err != nil {
			c.logger.Warn("failed to remove temp dir", "dir", dir, "error", err)
		}
	}(tmpDir)

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r 200 -png <in.pdf> <tmp/page>
	_, errb, err := c.runner.Run(ctx, c.cfg.Pdftoppm, "-r", fmt.Sprintf("%d", c.cfg.DPI), "-png", path, prefix)
	if err != nil {
		return nil, fmt.Errorf("%w: pdftoppm: %v (%s)", common.ErrRenderFailure, err, truncate(string(errb), 512))
	}

	// collect generated pngs (prefix-1.png, prefix-2.png, ...)
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if c.cfg.MaxPages > 0 && len(matches) > c.cfg.MaxPages {
		matches = matches[:c.cfg.MaxPages]
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: pdftoppm produced no images", common.ErrRenderFailure)
	}

	chunks := make([]Chunk, 0, len(matches))
	for i, img := range matches {
		data, err := os.ReadFile(img)
		if err != nil {
			// one broken page does not abort the rest
			c.logger.Warn("page image unreadable, skipping", "page", i+1, "error", err)
			continue
		}
		chunks = append(chunks, Chunk{
			Seq:     i,
			Format:  constants.PDF,
			Context: fmt.Sprintf("page %d", i+1),
			Image:   data,
			MIME:    "image/png",
		})
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: all pages unreadable", common.ErrRenderFailure)
	}

	c.logger.Info("pdf chunked", "path", path, "pages", len(matches), "chunks", len(chunks))
	return chunks, nil
}
