package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/qbank-io/exam-ingest/internal/common"
	"github.com/qbank-io/exam-ingest/internal/embed"
	"github.com/qbank-io/exam-ingest/internal/export"
	"github.com/qbank-io/exam-ingest/internal/ingest"
	"github.com/qbank-io/exam-ingest/internal/llm"
	"github.com/qbank-io/exam-ingest/internal/llm/gemini"
	"github.com/qbank-io/exam-ingest/internal/pipeline"
	repo "github.com/qbank-io/exam-ingest/internal/repository"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		questionFile = flag.String("questions", "", "question source file: PDF, XLSX, or text (required)")
		answerFile   = flag.String("answers", "", "answer source file: PDF, XLSX, or text (required)")
		sourceName   = flag.String("source", "", "source label for saved records (defaults to question file name)")
		maxQuestions = flag.Int("max", 0, "highest accepted question number per source file (default from MAX_QUESTIONS)")
		concurrency  = flag.Int("concurrency", 0, "parallel chunk extractions (default from CHUNK_CONCURRENCY)")
		dbURL        = flag.String("db", "", "Postgres DSN (overrides DB_URL)")
		sqlitePath   = flag.String("sqlite", "", "save to a SQLite file instead of Postgres")
		out          = flag.String("out", "", "also write saved records to an XLSX file")
		withEmbed    = flag.Bool("embed", false, "compute question embeddings for saved records")
		dryRun       = flag.Bool("dry-run", false, "extract and match without saving")
	)
	flag.Parse()

	if *questionFile == "" || *answerFile == "" {
		printError("Error: --questions and --answers are required\n")
		flag.Usage()
		os.Exit(1)
	}
	if *sourceName == "" {
		base := filepath.Base(*questionFile)
		*sourceName = base[:len(base)-len(filepath.Ext(base))]
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		printError("Warning: could not load .env: %v\n", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := common.LoadConfig()
	if *dbURL != "" {
		cfg.Database.DSN = *dbURL
	}
	if *maxQuestions > 0 {
		cfg.Pipeline.MaxQuestions = *maxQuestions
	}
	if *concurrency > 0 {
		cfg.Pipeline.Concurrency = *concurrency
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	chunker := ingest.NewChunker(ingest.Config{
		Pdftoppm:  cfg.Ingest.Pdftoppm,
		DPI:       cfg.Ingest.DPI,
		MaxPages:  cfg.Ingest.MaxPages,
		ChunkSize: cfg.Ingest.ChunkSize,
	}, logger)

	generator, err := gemini.NewClient(ctx, gemini.Config{
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
		MaxRetries:  cfg.LLM.MaxRetries,
	}, logger)
	if err != nil {
		logger.Error("failed to initialize extraction client", "error", err)
		os.Exit(1)
	}

	sanitizer, err := llm.NewSanitizer(logger)
	if err != nil {
		logger.Error("failed to build response sanitizer", "error", err)
		os.Exit(1)
	}

	processor := pipeline.NewProcessor(logger, chunker, generator, sanitizer, cfg.Pipeline.Concurrency)

	logger.Info("starting run",
		"source", *sourceName,
		"question_file", *questionFile,
		"answer_file", *answerFile,
		"max_questions", cfg.Pipeline.MaxQuestions)

	result, err := processor.Run(ctx, pipeline.RunRequest{
		QuestionFile: *questionFile,
		AnswerFile:   *answerFile,
		SourceName:   *sourceName,
		MaxQuestions: cfg.Pipeline.MaxQuestions,
	})
	if err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}

	if !*dryRun && len(result.Accepted) > 0 {
		repository, err := openRepository(ctx, cfg, *sqlitePath, logger)
		if err != nil {
			logger.Error("failed to open record store", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := repository.Close(); err != nil {
				logger.Warn("close record store", "error", err)
			}
		}()

		saved, err := repository.SaveRecords(ctx, *sourceName, result.Accepted)
		if err != nil {
			logger.Error("failed to save records", "saved", saved, "error", err)
			os.Exit(1)
		}
		logger.Info("records persisted", "source", *sourceName, "saved", saved)

		if *out != "" {
			exporter := export.NewService(repository, logger)
			xlsxBytes, err := exporter.ExportSource(ctx, *sourceName)
			if err != nil {
				logger.Error("failed to export records", "error", err)
				os.Exit(1)
			}
			if err := os.WriteFile(*out, xlsxBytes, 0644); err != nil {
				logger.Error("failed to write output file", "error", err)
				os.Exit(1)
			}
			logger.Info("export written", "output", *out)
		}
	}

	if *withEmbed && len(result.Accepted) > 0 {
		embedder, err := embed.NewGeminiEmbedder(ctx, cfg.LLM.APIKey, os.Getenv("GEMINI_EMBEDDING_MODEL"), logger)
		if err != nil {
			logger.Error("failed to initialize embedder", "error", err)
			os.Exit(1)
		}
		texts := make([]string, len(result.Accepted))
		for i, m := range result.Accepted {
			texts[i] = embed.QuestionText(m)
		}
		vecs, err := embedder.Embed(ctx, texts)
		if err != nil {
			logger.Error("failed to compute embeddings", "error", err)
			os.Exit(1)
		}
		dims := 0
		if len(vecs) > 0 {
			dims = len(vecs[0])
		}
		logger.Info("embeddings computed", "count", len(vecs), "dims", dims)
	}

	reportJSON, err := json.MarshalIndent(result.Report, "", "  ")
	if err != nil {
		logger.Error("failed to marshal report", "error", err)
		os.Exit(1)
	}
	fmt.Println(string(reportJSON))

	if !result.Report.Success {
		os.Exit(1)
	}
}

func openRepository(ctx context.Context, cfg *common.Config, sqlitePath string, logger *slog.Logger) (repo.RecordRepository, error) {
	if sqlitePath != "" {
		return repo.NewSQLite(ctx, sqlitePath, logger)
	}
	if cfg.Database.DSN == "" {
		return nil, common.NewAppError("CONFIG_ERROR", "DB_URL is required unless --sqlite or --dry-run is set", common.ErrInvalidInput)
	}
	return repo.NewPostgres(ctx, repo.PGConfig{
		DSN:             cfg.Database.DSN,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
		DialTimeout:     cfg.Database.DialTimeout,
	}, logger)
}
