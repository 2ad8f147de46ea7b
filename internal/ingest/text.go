package ingest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/qbank-io/exam-ingest/constants"
)

// textChunks splits a plain-text file on a fixed character budget. Cuts are
// rune-safe but make no attempt to respect record boundaries; downstream
// sanitization tolerates records truncated at chunk edges. The file name is
// the chunk context: like a sheet name, it may carry the exam year, while a
// position counter must not (its digits would be mistaken for one).
func (c *Chunker) textChunks(path string) ([]Chunk, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read text file: %w", err)
	}

	runes := []rune(string(data))
	size := c.cfg.ChunkSize
	context := filepath.Base(path)

	var chunks []Chunk
	for i := 0; i < len(runes); i += size {
		end := i + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, Chunk{
			Seq:     len(chunks),
			Format:  constants.TEXT,
			Context: context,
			Text:    string(runes[i:end]),
		})
	}

	c.logger.Info("text chunked", "path", path, "chars", len(runes), "chunks", len(chunks))
	return chunks, nil
}
