package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spacesedan/tweetflow/config"
	"github.com/spacesedan/tweetflow/internal/classifier"
	"github.com/spacesedan/tweetflow/internal/loader"
	"github.com/spacesedan/tweetflow/internal/logging"
	"github.com/spacesedan/tweetflow/internal/pipeline"
	"github.com/spacesedan/tweetflow/internal/store"
)

// Exit codes distinguish full success, total failure, and a partial run
// with some batches committed before the failure.
const (
	exitOK      = 0
	exitFailed  = 1
	exitPartial = 2
)

func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)
	logging.InitLogger()

	cfg := config.Load()
	flag.StringVar(&cfg.CSVPath, "csv-path", cfg.CSVPath, "path to the Sentiment140 CSV")
	flag.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "path to the SQLite database")
	flag.IntVar(&cfg.MaxTweets, "max-tweets", cfg.MaxTweets, "maximum tweets to process")
	flag.IntVar(&cfg.BatchSize, "batch-size", cfg.BatchSize, "inference batch size")
	flag.StringVar(&cfg.Backend, "backend", cfg.Backend, "sentiment backend: transformer or vader")
	flag.Parse()

	os.Exit(run(cfg))
}

func run(cfg config.Config) int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		slog.Error("[Main] Failed to open store", slog.String("error", err.Error()))
		return exitFailed
	}
	defer db.Close()

	analyzer, err := buildAnalyzer(cfg)
	if err != nil {
		slog.Error("[Main] Failed to initialize classifier", slog.String("error", err.Error()))
		return exitFailed
	}
	defer analyzer.Close()

	source, err := loader.Open(cfg.CSVPath, cfg.MaxTweets)
	if err != nil {
		slog.Error("[Main] Failed to open source", slog.String("error", err.Error()))
		return exitFailed
	}
	defer source.Close()

	p := pipeline.New(
		pipeline.Deps{Source: source, Analyzer: analyzer, Store: db},
		pipeline.Config{
			MaxTweets:  cfg.MaxTweets,
			BatchSize:  cfg.BatchSize,
			MaxRetries: cfg.MaxRetries,
		},
	)

	summary := p.Run(ctx)

	slog.Info("[Main] Run summary",
		slog.String("run_id", summary.RunID),
		slog.String("state", string(summary.State)),
		slog.Int("processed", summary.Processed),
		slog.Int("skipped", summary.Skipped),
		slog.Int("committed", summary.Committed))

	if summary.State == pipeline.StateDone {
		return exitOK
	}
	if summary.Committed > 0 {
		return exitPartial
	}
	return exitFailed
}

func buildAnalyzer(cfg config.Config) (classifier.Analyzer, error) {
	if cfg.Backend == config.BackendVader {
		return classifier.NewVader(), nil
	}
	return classifier.NewTransformer(cfg.ModelDir)
}
