package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/qbank-io/exam-ingest/constants"
	"github.com/qbank-io/exam-ingest/internal/common"
	"github.com/qbank-io/exam-ingest/internal/ingest"
	"github.com/qbank-io/exam-ingest/internal/llm"
	"github.com/qbank-io/exam-ingest/internal/records"
)

// Processor coordinates one full run: chunk both source files, send chunks to
// the structuring capability with bounded concurrency, sanitize and
// year-resolve the drafts, cap, match, validate, and aggregate the report.
// Each run owns its working set end to end; nothing is accumulated across
// runs.
type Processor struct {
	Logger      *slog.Logger
	Chunker     *ingest.Chunker
	Generator   llm.Generator
	Sanitizer   *llm.Sanitizer
	Concurrency int
}

func NewProcessor(logger *slog.Logger, chunker *ingest.Chunker, gen llm.Generator, san *llm.Sanitizer, concurrency int) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Processor{
		Logger:      logger,
		Chunker:     chunker,
		Generator:   gen,
		Sanitizer:   san,
		Concurrency: concurrency,
	}
}

// RunRequest names the two source files of one run.
type RunRequest struct {
	QuestionFile string
	AnswerFile   string
	SourceName   string
	MaxQuestions int // 0 means constants.DefaultMaxQuestions
}

// RunResult is the accepted record list plus the report. The report reflects
// everything attempted, including chunks and records that did not make it.
type RunResult struct {
	Accepted []records.Matched
	Report   records.Report
}

// Run processes one question file and one answer file into matched records.
// The returned error is non-nil only for whole-file failures (unsupported
// format, nothing extractable); every other failure class degrades to
// partial results inside the report.
func (p *Processor) Run(ctx context.Context, req RunRequest) (RunResult, error) {
	if req.QuestionFile == "" || req.AnswerFile == "" {
		return RunResult{}, common.NewAppError("RUN_ERROR", "question and answer files are required", common.ErrInvalidInput)
	}
	max := req.MaxQuestions
	if max <= 0 {
		max = constants.DefaultMaxQuestions
	}

	runID := uuid.New().String()
	ctx = common.WithRunID(ctx, runID)
	ctx = common.WithSourceName(ctx, req.SourceName)
	p.Logger.Info("run.start",
		"run_id", runID,
		"source", req.SourceName,
		"question_file", req.QuestionFile,
		"answer_file", req.AnswerFile,
		"max_questions", max,
	)

	questionDrafts, questionStats, err := p.extractFile(ctx, req.QuestionFile, constants.ContentTypeQuestions, max)
	if err != nil {
		return RunResult{}, fmt.Errorf("question file: %w", err)
	}
	answerDrafts, answerStats, err := p.extractFile(ctx, req.AnswerFile, constants.ContentTypeAnswers, max)
	if err != nil {
		return RunResult{}, fmt.Errorf("answer file: %w", err)
	}

	questionDrafts, qCap := records.Cap(questionDrafts, max, p.Logger)
	answerDrafts, aCap := records.Cap(answerDrafts, max, p.Logger)
	questionStats.OutOfRange, questionStats.Overflow = qCap.OutOfRange, qCap.Overflow
	answerStats.OutOfRange, answerStats.Overflow = aCap.OutOfRange, aCap.Overflow

	match := records.Match(questionDrafts, answerDrafts, p.Logger)

	var accepted []records.Matched
	var rejections []records.Rejection
	for _, m := range match.Matched {
		ok, reason := records.ValidateCompleteness(m, max)
		if !ok {
			p.Logger.Warn("record rejected", "year", m.Year, "number", m.QuestionNumber, "reason", reason)
			rejections = append(rejections, records.Rejection{Year: m.Year, Number: m.QuestionNumber, Reason: reason})
			continue
		}
		accepted = append(accepted, m)
	}

	report := records.BuildReport(req.SourceName, match, accepted, rejections, questionStats, answerStats)
	p.Logger.Info("run.done",
		"run_id", runID,
		"total_questions", report.TotalQuestions,
		"saved_questions", report.SavedQuestions,
		"save_rate", report.SaveRate,
	)
	return RunResult{Accepted: accepted, Report: report}, nil
}

// extractFile chunks one file and structures every chunk concurrently.
// Chunk results land in dispatch-order slots, so output order is stable
// regardless of completion order. A failed chunk leaves its slot empty and
// bumps the failure count; it never aborts the other chunks.
func (p *Processor) extractFile(ctx context.Context, path, contentType string, max int) ([]records.Draft, records.ChunkStats, error) {
	var stats records.ChunkStats

	chunks, err := p.Chunker.Chunks(ctx, path)
	if err != nil {
		if errors.Is(err, common.ErrUnsupportedFormat) {
			return nil, stats, err
		}
		// total render/read failure means nothing is extractable
		return nil, stats, fmt.Errorf("%w: %v", common.ErrNoChunks, err)
	}
	if len(chunks) == 0 {
		return nil, stats, common.ErrNoChunks
	}
	stats.Chunks = len(chunks)

	results := make([][]records.Draft, len(chunks))
	failed := make([]bool, len(chunks))

	g := &errgroup.Group{}
	g.SetLimit(p.Concurrency)
	for i, chunk := range chunks {
		if ctx.Err() != nil {
			// stop issuing new calls; in-flight chunks drain below
			failed[i] = true
			continue
		}
		g.Go(func() error {
			drafts, err := p.processChunk(ctx, chunk, contentType, max)
			if err != nil {
				p.Logger.Warn("chunk failed",
					"path", path,
					"chunk_seq", chunk.Seq,
					"chunk_context", chunk.Context,
					"error", err,
				)
				failed[i] = true
				return nil
			}
			results[i] = drafts
			return nil
		})
	}
	_ = g.Wait()

	var drafts []records.Draft
	for i := range results {
		if failed[i] {
			stats.FailedChunks++
			continue
		}
		drafts = append(drafts, results[i]...)
	}
	if ctx.Err() != nil {
		p.Logger.Warn("run cancelled, keeping partial results",
			"path", path, "chunks", len(chunks), "failed", stats.FailedChunks)
	}

	p.Logger.Info("file extracted",
		"path", path,
		"content_type", contentType,
		"chunks", stats.Chunks,
		"failed_chunks", stats.FailedChunks,
		"records", len(drafts),
	)
	return drafts, stats, nil
}

func (p *Processor) processChunk(ctx context.Context, chunk ingest.Chunk, contentType string, max int) ([]records.Draft, error) {
	raw, err := p.Generator.Generate(ctx, llm.ChunkRequest{
		Chunk:        chunk,
		ContentType:  contentType,
		MaxQuestions: max,
	})
	if err != nil {
		return nil, err
	}

	kind := records.KindQuestion
	if contentType == constants.ContentTypeAnswers {
		kind = records.KindAnswer
	}
	drafts, err := p.Sanitizer.Recover(kind, raw)
	if err != nil {
		return nil, err
	}

	drafts = records.ResolveYears(drafts, chunk.Context)
	for i := range drafts {
		drafts[i].Seq = chunk.Seq
	}
	return drafts, nil
}
