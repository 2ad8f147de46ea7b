package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"

	"github.com/qbank-io/exam-ingest/internal/common"
	"github.com/qbank-io/exam-ingest/internal/records"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS questions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	source_name TEXT NOT NULL,
	question_number INTEGER NOT NULL,
	year INTEGER NOT NULL,
	content TEXT NOT NULL,
	description TEXT,
	options TEXT,
	correct_answer TEXT NOT NULL,
	subject TEXT,
	area_name TEXT,
	difficulty TEXT,
	UNIQUE (source_name, year, question_number)
);`

type sqliteRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLite opens (or creates) a SQLite database at path and bootstraps the
// questions table. Pass ":memory:" for an ephemeral store.
func NewSQLite(ctx context.Context, path string, logger *slog.Logger) (RecordRepository, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, common.WrapError(err, "open sqlite")
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, common.WrapError(err, "bootstrap schema")
	}
	logger.Info("sqlite store ready", "path", path)
	return &sqliteRepository{db: db, logger: logger}, nil
}

func (r *sqliteRepository) SaveRecords(ctx context.Context, sourceName string, recs []records.Matched) (int, error) {
	if len(recs) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: begin: %v", common.ErrDatabase, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO questions
			(source_name, question_number, year, content, description, options,
			 correct_answer, subject, area_name, difficulty)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (source_name, year, question_number) DO UPDATE SET
			content = excluded.content,
			description = excluded.description,
			options = excluded.options,
			correct_answer = excluded.correct_answer,
			subject = excluded.subject,
			area_name = excluded.area_name,
			difficulty = excluded.difficulty`)
	if err != nil {
		return 0, fmt.Errorf("%w: prepare: %v", common.ErrDatabase, err)
	}
	defer func() {
		_ = stmt.Close()
	}()

	saved := 0
	for _, m := range recs {
		options, err := json.Marshal(m.Options)
		if err != nil {
			return saved, fmt.Errorf("marshal options: %w", err)
		}
		description, err := json.Marshal(m.Description)
		if err != nil {
			return saved, fmt.Errorf("marshal description: %w", err)
		}
		if _, err := stmt.ExecContext(ctx,
			sourceName, m.QuestionNumber, m.Year, m.Content, string(description), string(options),
			m.CorrectAnswer, m.Subject, m.AreaName, m.Difficulty,
		); err != nil {
			return saved, fmt.Errorf("%w: insert question %d/%d: %v", common.ErrDatabase, m.Year, m.QuestionNumber, err)
		}
		saved++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: commit: %v", common.ErrDatabase, err)
	}
	r.logger.Info("records saved", "source", sourceName, "count", saved)
	return saved, nil
}

func (r *sqliteRepository) ListBySource(ctx context.Context, sourceName string) ([]records.Matched, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT question_number, year, content, description, options,
		       correct_answer, subject, area_name, difficulty
		FROM questions
		WHERE source_name = ?
		ORDER BY year, question_number`, sourceName)
	if err != nil {
		return nil, fmt.Errorf("%w: list: %v", common.ErrDatabase, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var out []records.Matched
	for rows.Next() {
		var m records.Matched
		var description, options string
		if err := rows.Scan(&m.QuestionNumber, &m.Year, &m.Content, &description, &options,
			&m.CorrectAnswer, &m.Subject, &m.AreaName, &m.Difficulty); err != nil {
			return nil, fmt.Errorf("%w: scan: %v", common.ErrDatabase, err)
		}
		if description != "" {
			if err := json.Unmarshal([]byte(description), &m.Description); err != nil {
				return nil, fmt.Errorf("unmarshal description: %w", err)
			}
		}
		if options != "" {
			if err := json.Unmarshal([]byte(options), &m.Options); err != nil {
				return nil, fmt.Errorf("unmarshal options: %w", err)
			}
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list: %v", common.ErrDatabase, err)
	}
	return out, nil
}

func (r *sqliteRepository) CountBySource(ctx context.Context, sourceName string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM questions WHERE source_name = ?`, sourceName).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%w: count: %v", common.ErrDatabase, err)
	}
	return count, nil
}

func (r *sqliteRepository) Close() error {
	return r.db.Close()
}
