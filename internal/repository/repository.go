package repository

import (
	"context"

	"github.com/qbank-io/exam-ingest/internal/records"
)

// RecordRepository persists accepted matched records under a source label.
// The pipeline only depends on this interface; Postgres and SQLite
// implementations live in this package.
type RecordRepository interface {
	SaveRecords(ctx context.Context, sourceName string, recs []records.Matched) (int, error)
	ListBySource(ctx context.Context, sourceName string) ([]records.Matched, error)
	CountBySource(ctx context.Context, sourceName string) (int, error)
	Close() error
}
