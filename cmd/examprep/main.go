// Command examprep runs the GSAT vocabulary pipeline (C1-C8) end to end: it
// reads a directory of structured exam JSON documents, resolves and
// generates every word/phrase/pattern's teaching content, and writes the
// final database plus a validation-issues sidecar.
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/taigon-vocab/examprep/internal/config"
	"github.com/taigon-vocab/examprep/internal/database"
	"github.com/taigon-vocab/examprep/internal/pipeline"
	"github.com/taigon-vocab/examprep/pkg/ctxutil"
)

func main() {
	configPath := flag.String("config", "", "path to pipeline YAML config")
	examDir := flag.String("exam-dir", "", "directory of input exam JSON files (required)")
	wordlistPath := flag.String("wordlist", "", "path to the official GSAT headword list")
	outputPath := flag.String("output", "database.json", "path to write the final database JSON")
	issuesPath := flag.String("issues", "issues.json", "path to write the validation-issues sidecar")
	dryRun := flag.Bool("dry-run", false, "skip every stage that makes a network call; confirms extraction and wiring only")
	logFormat := flag.String("log-format", "text", "log output format: text or json")
	timeout := flag.Duration("timeout", 2*time.Hour, "overall run timeout")
	flag.Parse()

	logger := newLogger(*logFormat)

	if *examDir == "" {
		logger.Error("missing required flag", "flag", "-exam-dir")
		os.Exit(1)
	}

	runID := uuid.New().String()
	logger = logger.With("run_id", runID)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("load config", "error", err.Error())
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	ctx = ctxutil.WithRunID(ctx, runID)

	logger.Info("pipeline starting", "exam_dir", *examDir, "dry_run", *dryRun)

	outcome, err := pipeline.Run(ctx, pipeline.Options{
		ExamDir:      *examDir,
		WordlistPath: *wordlistPath,
		Config:       cfg,
		Logger:       logger,
		DryRun:       *dryRun,
		Progress: func(completed, total int, label string) {
			logger.Info("progress", "stage", label, "completed", completed, "total", total)
		},
	})
	if err != nil {
		logger.Error("pipeline failed", "error", err.Error())
		os.Exit(1)
	}

	if err := database.WriteJSON(*outputPath, outcome.Database); err != nil {
		logger.Error("write database", "error", err.Error())
		os.Exit(1)
	}
	if err := database.WriteIssuesSidecar(*issuesPath, outcome.Issues); err != nil {
		logger.Error("write issues sidecar", "error", err.Error())
		os.Exit(1)
	}

	logger.Info("pipeline complete",
		"total_entries", outcome.Database.Metadata.TotalEntries,
		"issues", len(outcome.Issues),
		"output", *outputPath,
	)
}

func newLogger(format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, opts)
	default:
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}
