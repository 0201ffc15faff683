// Package pipeline drives the load -> normalize -> classify -> store loop
// under a row budget, one batch in flight at a time.
package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/spacesedan/tweetflow/internal/classifier"
	"github.com/spacesedan/tweetflow/internal/loader"
	"github.com/spacesedan/tweetflow/internal/models"
	"github.com/spacesedan/tweetflow/internal/preprocess"
	"github.com/spacesedan/tweetflow/internal/store"
)

// State is the orchestrator's current phase.
type State string

const (
	StateIdle        State = "idle"
	StateLoading     State = "loading"
	StateClassifying State = "classifying"
	StateStoring     State = "storing"
	StateDone        State = "done"
	StateError       State = "error"
)

// RecordSource yields raw tweets one at a time. io.EOF ends the stream;
// loader.ErrMalformedRecord marks a skippable row.
type RecordSource interface {
	Next() (models.RawTweet, error)
}

// TweetStore is the write side the orchestrator needs.
type TweetStore interface {
	UpsertBatch(ctx context.Context, rows []models.StoredTweet) error
}

// Config bounds a single run.
type Config struct {
	MaxTweets  int
	BatchSize  int
	MaxRetries int
}

// Deps wires the collaborating components; the orchestrator owns the
// analyzer for the duration of the run but does not create or close it.
type Deps struct {
	Source   RecordSource
	Analyzer classifier.Analyzer
	Store    TweetStore
}

// RunSummary is the user-visible outcome of a run.
type RunSummary struct {
	RunID     string
	Processed int
	Skipped   int
	Committed int
	State     State
	FailedIDs []string
	Err       error
}

// Pipeline is single-use: construct, Run once, inspect the summary.
type Pipeline struct {
	source   RecordSource
	analyzer classifier.Analyzer
	store    TweetStore
	cfg      Config
	state    State

	// backoff seeds the doubling retry delay; tests shrink it.
	backoff time.Duration
}

func New(deps Deps, cfg Config) *Pipeline {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 32
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	return &Pipeline{
		source:   deps.Source,
		analyzer: deps.Analyzer,
		store:    deps.Store,
		cfg:      cfg,
		state:    StateIdle,
		backoff:  500 * time.Millisecond,
	}
}

// State reports the current phase; after Run it is StateDone or StateError.
func (p *Pipeline) State() State {
	return p.state
}

// Run executes the batch loop until the budget or the source is
// exhausted. Cancellation is honored between batches only: the in-flight
// batch always completes or fails as a unit.
func (p *Pipeline) Run(ctx context.Context) RunSummary {
	summary := RunSummary{RunID: uuid.NewString()}

	slog.Info("[Pipeline] Run starting",
		slog.String("run_id", summary.RunID),
		slog.Int("max_tweets", p.cfg.MaxTweets),
		slog.Int("batch_size", p.cfg.BatchSize))

	for {
		if err := ctx.Err(); err != nil {
			p.state = StateError
			summary.State = StateError
			summary.Err = err
			slog.Warn("[Pipeline] Run cancelled, stopping after committed batches",
				slog.String("run_id", summary.RunID))
			return summary
		}

		p.state = StateLoading
		batch, srcErr := p.loadBatch(&summary)

		if len(batch) == 0 {
			if srcErr != nil {
				return p.failSource(&summary, srcErr)
			}
			p.state = StateDone
			summary.State = StateDone
			slog.Info("[Pipeline] Run complete",
				slog.String("run_id", summary.RunID),
				slog.Int("processed", summary.Processed),
				slog.Int("skipped", summary.Skipped))
			return summary
		}

		texts := make([]string, len(batch))
		for i, tweet := range batch {
			texts[i] = preprocess.NormalizeTweet(tweet.Text)
		}

		p.state = StateClassifying
		results, err := p.classifyBatch(ctx, texts)
		if err != nil {
			return p.fail(&summary, batch, err)
		}

		p.state = StateStoring
		if err := p.storeBatch(ctx, batch, texts, results); err != nil {
			return p.fail(&summary, batch, err)
		}

		summary.Processed += len(batch)
		summary.Committed += len(batch)
		slog.Info("[Pipeline] Batch committed",
			slog.String("run_id", summary.RunID),
			slog.Int("processed", summary.Processed),
			slog.Int("max_tweets", p.cfg.MaxTweets))

		// A source that broke mid-stream is fatal once the rows it did
		// deliver are safely committed.
		if srcErr != nil {
			return p.failSource(&summary, srcErr)
		}
	}
}

// loadBatch pulls up to BatchSize rows, bounded by the remaining budget.
// Malformed rows are absorbed and counted, never fatal. A non-nil error
// means the source itself broke; the rows pulled before the break are
// still returned so they can be committed.
func (p *Pipeline) loadBatch(summary *RunSummary) ([]models.RawTweet, error) {
	remaining := p.cfg.MaxTweets - summary.Processed
	size := p.cfg.BatchSize
	if remaining < size {
		size = remaining
	}
	if size <= 0 {
		return nil, nil
	}

	batch := make([]models.RawTweet, 0, size)
	for len(batch) < size {
		tweet, err := p.source.Next()
		if err == io.EOF {
			break
		}
		if errors.Is(err, loader.ErrMalformedRecord) {
			summary.Skipped++
			slog.Warn("[Pipeline] Skipping malformed record",
				slog.String("error", err.Error()))
			continue
		}
		if err != nil {
			return batch, err
		}
		batch = append(batch, tweet)
	}
	return batch, nil
}

// classifyBatch invokes the analyzer with bounded retry. The batch is
// the unit of failure: one bad attempt corrupts nothing.
func (p *Pipeline) classifyBatch(ctx context.Context, texts []string) ([]models.ClassificationResult, error) {
	var lastErr error
	delay := p.backoff
	for attempt := 1; attempt <= p.cfg.MaxRetries; attempt++ {
		results, err := p.analyzer.ClassifyBatch(ctx, texts)
		if err == nil {
			return results, nil
		}
		lastErr = err
		slog.Warn("[Pipeline] Batch classification failed",
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()))
		if attempt < p.cfg.MaxRetries {
			time.Sleep(delay)
			delay *= 2
		}
	}
	return nil, lastErr
}

// storeBatch upserts the classified batch. Lock contention retries with
// backoff; anything else fails the batch immediately.
func (p *Pipeline) storeBatch(ctx context.Context, batch []models.RawTweet, texts []string, results []models.ClassificationResult) error {
	now := time.Now().UTC()
	rows := make([]models.StoredTweet, len(batch))
	for i, tweet := range batch {
		rows[i] = models.StoredTweet{
			ID:          tweet.SourceID,
			Text:        texts[i],
			Label:       results[i].Label,
			Score:       results[i].Score,
			ProcessedAt: now,
		}
	}

	var lastErr error
	delay := p.backoff
	for attempt := 1; attempt <= p.cfg.MaxRetries; attempt++ {
		err := p.store.UpsertBatch(ctx, rows)
		if err == nil {
			return nil
		}
		lastErr = err
		if !errors.Is(err, store.ErrLockContention) {
			return err
		}
		slog.Warn("[Pipeline] Store contention, retrying",
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()))
		if attempt < p.cfg.MaxRetries {
			time.Sleep(delay)
			delay *= 2
		}
	}
	return lastErr
}

// failSource ends the run after a mid-stream source failure. Unlike fail,
// no batch is reported lost: everything pulled before the break is
// already committed.
func (p *Pipeline) failSource(summary *RunSummary, err error) RunSummary {
	p.state = StateError
	summary.State = StateError
	summary.Err = err
	slog.Error("[Pipeline] Source failed mid-stream",
		slog.String("run_id", summary.RunID),
		slog.Int("committed", summary.Committed),
		slog.String("error", err.Error()))
	return *summary
}

func (p *Pipeline) fail(summary *RunSummary, batch []models.RawTweet, err error) RunSummary {
	p.state = StateError
	summary.State = StateError
	summary.Err = err
	for _, tweet := range batch {
		summary.FailedIDs = append(summary.FailedIDs, tweet.SourceID)
	}
	slog.Error("[Pipeline] Run failed",
		slog.String("run_id", summary.RunID),
		slog.Int("committed", summary.Committed),
		slog.Int("failed_batch_size", len(batch)),
		slog.String("error", err.Error()))
	return *summary
}
