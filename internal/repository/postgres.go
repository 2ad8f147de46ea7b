package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/qbank-io/exam-ingest/internal/common"
	"github.com/qbank-io/exam-ingest/internal/records"
)

// PGConfig mirrors the pool tuning knobs from common.DatabaseConfig.
type PGConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

type postgresRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewPostgres opens a pgx pool and returns a RecordRepository backed by it.
// The questions table is expected to exist (schema management is external).
func NewPostgres(ctx context.Context, cfg PGConfig, logger *slog.Logger) (RecordRepository, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("connecting to database", "max_conns", cfg.MaxConns)

	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, common.WrapError(err, "parse dsn")
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pc.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	pc.ConnConfig.RuntimeParams["application_name"] = "exam-ingest"

	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, common.WrapError(err, "connect")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, common.WrapError(err, "ping")
	}

	logger.Info("successfully connected to database")
	return &postgresRepository{pool: pool, logger: logger}, nil
}

func (r *postgresRepository) SaveRecords(ctx context.Context, sourceName string, recs []records.Matched) (int, error) {
	if len(recs) == 0 {
		return 0, nil
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, fmt.Errorf("%w: begin: %v", common.ErrDatabase, err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && err != pgx.ErrTxClosed {
			r.logger.Warn("rollback error", "error", err)
		}
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
		_, err = tx.Exec(ctx, `
			INSERT INTO questions
				(source_name, question_number, year, content, description, options,
				 correct_answer, subject, area_name, difficulty)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (source_name, year, question_number) DO UPDATE SET
				content = EXCLUDED.content,
				description = EXCLUDED.description,
				options = EXCLUDED.options,
				correct_answer = EXCLUDED.correct_answer,
				subject = EXCLUDED.subject,
				area_name = EXCLUDED.area_name,
				difficulty = EXCLUDED.difficulty,
				updated_at = now()`,
			sourceName, m.QuestionNumber, m.Year, m.Content, description, options,
			m.CorrectAnswer, m.Subject, m.AreaName, m.Difficulty,
		)
		if err != nil {
			return saved, fmt.Errorf("%w: insert question %d/%d: %v", common.ErrDatabase, m.Year, m.QuestionNumber, err)
		}
		saved++
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("%w: commit: %v", common.ErrDatabase, err)
	}
	r.logger.Info("records saved", "source", sourceName, "count", saved)
	return saved, nil
}

func (r *postgresRepository) ListBySource(ctx context.Context, sourceName string) ([]records.Matched, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT question_number, year, content, description, options,
		       correct_answer, subject, area_name, difficulty
		FROM questions
		WHERE source_name = $1
		ORDER BY year, question_number`, sourceName)
	if err != nil {
		return nil, fmt.Errorf("%w: list: %v", common.ErrDatabase, err)
	}
	defer rows.Close()

	var out []records.Matched
	for rows.Next() {
		var m records.Matched
		var description, options []byte
		if err := rows.Scan(&m.QuestionNumber, &m.Year, &m.Content, &description, &options,
			&m.CorrectAnswer, &m.Subject, &m.AreaName, &m.Difficulty); err != nil {
			return nil, fmt.Errorf("%w: scan: %v", common.ErrDatabase, err)
		}
		if len(description) > 0 {
			if err := json.Unmarshal(description, &m.Description); err != nil {
				return nil, fmt.Errorf("unmarshal description: %w", err)
			}
		}
		if len(options) > 0 {
			if err := json.Unmarshal(options, &m.Options); err != nil {
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

func (r *postgresRepository) CountBySource(ctx context.Context, sourceName string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM questions WHERE source_name = $1`, sourceName).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%w: count: %v", common.ErrDatabase, err)
	}
	return count, nil
}

func (r *postgresRepository) Close() error {
	r.pool.Close()
	return nil
}
