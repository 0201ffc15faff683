// Package store owns all durable state: an embedded SQLite file holding
// classified tweets, written in atomic batches and read back as
// aggregates by the dashboard.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	sqlite "modernc.org/sqlite"

	"github.com/spacesedan/tweetflow/internal/models"
)

var (
	// ErrStorageUnavailable is fatal for the run: disk full, bad path,
	// corrupted file.
	ErrStorageUnavailable = errors.New("store: storage unavailable")
	// ErrLockContention is transient: another process holds the write
	// lock. Callers retry with backoff.
	ErrLockContention = errors.New("store: database locked")
)

// SQLite extended result codes for busy/locked.
const (
	codeBusy   = 5
	codeLocked = 6
)

const schema = `
CREATE TABLE IF NOT EXISTS tweets (
	id           TEXT PRIMARY KEY,
	text         TEXT NOT NULL,
	label        TEXT NOT NULL CHECK (label IN ('positive', 'negative', 'neutral')),
	score        REAL NOT NULL CHECK (score >= 0 AND score <= 1),
	processed_at INTEGER NOT NULL
)`

// aggregateOrder fixes the output order of label aggregates.
var aggregateOrder = []models.Label{models.LabelPositive, models.LabelNegative, models.LabelNeutral}

// LabelCount is one row of a label aggregate.
type LabelCount struct {
	Label models.Label `json:"label"`
	Count int          `json:"count"`
}

// BucketCount is one row of a time-trend aggregate.
type BucketCount struct {
	Bucket string `json:"bucket"`
	Count  int    `json:"count"`
}

// Store wraps the embedded database. SQLite is a single-writer engine, so
// the pool is capped at one connection; the orchestrator additionally
// guarantees one outstanding write batch at a time.
type Store struct {
	db *sql.DB
}

// Open creates or opens the database file and ensures the schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrStorageUnavailable, path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 2000"); err != nil {
		db.Close()
		return nil, wrapStorageErr("set busy timeout", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, wrapStorageErr("create schema", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// insertChunkRows caps rows per INSERT statement. At 5 bound parameters
// per row this stays well under SQLite's 999-variable floor, so arbitrary
// caller batch sizes cannot fail on parameter count.
const insertChunkRows = 100

// UpsertBatch writes all rows in a single transaction. Either every row
// is durably visible afterwards or none is; an existing id has all fields
// overwritten. Large batches are split over several statements but still
// commit as one unit.
func (s *Store) UpsertBatch(ctx context.Context, rows []models.StoredTweet) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapStorageErr("begin tx", err)
	}

	for start := 0; start < len(rows); start += insertChunkRows {
		end := start + insertChunkRows
		if end > len(rows) {
			end = len(rows)
		}

		builder := sq.Insert("tweets").
			Columns("id", "text", "label", "score", "processed_at").
			Suffix(`ON CONFLICT(id) DO UPDATE SET
				text = excluded.text,
				label = excluded.label,
				score = excluded.score,
				processed_at = excluded.processed_at`)
		for _, row := range rows[start:end] {
			builder = builder.Values(row.ID, row.Text, string(row.Label), row.Score, row.ProcessedAt.Unix())
		}

		query, args, err := builder.ToSql()
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("store: build upsert: %w", err)
		}

		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			tx.Rollback()
			return wrapStorageErr("upsert batch", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return wrapStorageErr("commit batch", err)
	}
	return nil
}

// AggregateByLabel counts committed rows per label. The result always
// contains every label, zero-filled, in the order positive, negative,
// neutral.
func (s *Store) AggregateByLabel(ctx context.Context) ([]LabelCount, error) {
	query, args, err := sq.Select("label", "COUNT(*)").
		From("tweets").
		GroupBy("label").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("store: build aggregate: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapStorageErr("aggregate by label", err)
	}
	defer rows.Close()

	counts := make(map[models.Label]int, len(aggregateOrder))
	for rows.Next() {
		var label string
		var count int
		if err := rows.Scan(&label, &count); err != nil {
			return nil, wrapStorageErr("scan aggregate", err)
		}
		counts[models.Label(label)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, wrapStorageErr("iterate aggregate", err)
	}

	result := make([]LabelCount, 0, len(aggregateOrder))
	for _, label := range aggregateOrder {
		result = append(result, LabelCount{Label: label, Count: counts[label]})
	}
	return result, nil
}

// AggregateByHour counts committed rows per UTC hour bucket, ascending.
func (s *Store) AggregateByHour(ctx context.Context) ([]BucketCount, error) {
	const query = `
		SELECT strftime('%Y-%m-%d %H:00', processed_at, 'unixepoch') AS bucket, COUNT(*)
		FROM tweets
		GROUP BY bucket
		ORDER BY bucket ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, wrapStorageErr("aggregate by hour", err)
	}
	defer rows.Close()

	var result []BucketCount
	for rows.Next() {
		var bc BucketCount
		if err := rows.Scan(&bc.Bucket, &bc.Count); err != nil {
			return nil, wrapStorageErr("scan bucket", err)
		}
		result = append(result, bc)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapStorageErr("iterate buckets", err)
	}
	return result, nil
}

// RecentByLabel returns the most recently processed rows, optionally
// filtered to one label and/or a keyword substring of the stored text.
// Feeds the dashboard's tweet table.
func (s *Store) RecentByLabel(ctx context.Context, label models.Label, keyword string, limit int) ([]models.StoredTweet, error) {
	builder := sq.Select("id", "text", "label", "score", "processed_at").
		From("tweets").
		OrderBy("processed_at DESC", "id ASC").
		Limit(uint64(limit))
	if label != "" {
		builder = builder.Where(sq.Eq{"label": string(label)})
	}
	if keyword != "" {
		builder = builder.Where(sq.Like{"text": "%" + keyword + "%"})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("store: build recent query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapStorageErr("query recent", err)
	}
	defer rows.Close()

	var result []models.StoredTweet
	for rows.Next() {
		var t models.StoredTweet
		var label string
		var processedAt int64
		if err := rows.Scan(&t.ID, &t.Text, &label, &t.Score, &processedAt); err != nil {
			return nil, wrapStorageErr("scan tweet", err)
		}
		t.Label = models.Label(label)
		t.ProcessedAt = time.Unix(processedAt, 0).UTC()
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapStorageErr("iterate recent", err)
	}
	return result, nil
}

// Count returns the number of committed rows.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tweets").Scan(&n); err != nil {
		return 0, wrapStorageErr("count rows", err)
	}
	return n, nil
}

// wrapStorageErr classifies driver errors: busy/locked result codes are
// transient contention, everything else is fatal.
func wrapStorageErr(op string, err error) error {
	var se *sqlite.Error
	if errors.As(err, &se) {
		code := se.Code() & 0xff
		if code == codeBusy || code == codeLocked {
			return fmt.Errorf("%w: %s: %v", ErrLockContention, op, err)
		}
	}
	return fmt.Errorf("%w: %s: %v", ErrStorageUnavailable, op, err)
}
