// Package loader streams raw tweet rows out of a Sentiment140 CSV dump.
// Rows are validated at this boundary so loosely-typed source data never
// propagates past it.
package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/text/encoding/charmap"

	"github.com/spacesedan/tweetflow/internal/models"
)

var (
	// ErrSourceUnavailable means the source file could not be opened at all.
	ErrSourceUnavailable = errors.New("loader: source unavailable")
	// ErrMalformedRecord marks a single unparseable row. Callers skip and
	// count it; the stream continues.
	ErrMalformedRecord = errors.New("loader: malformed record")
)

// Sentiment140 column layout: polarity, id, date, query, user, text.
const (
	colID   = 1
	colDate = 2
	colText = 5

	requiredColumns = 6

	// Date format used by the dataset, e.g. "Mon Apr 06 22:19:45 PDT 2009".
	dateLayout = "Mon Jan 02 15:04:05 MST 2006"
)

// CSVLoader reads one row at a time; the whole file is never held in
// memory. A loader is single-use: once Next returns io.EOF it stays
// exhausted.
type CSVLoader struct {
	file    *os.File
	reader  *csv.Reader
	budget  int
	yielded int
}

// Open prepares a loader over the CSV file at path, yielding at most
// maxTweets rows. Sentiment140 ships latin-1 encoded, so the stream is
// decoded before parsing.
func Open(path string, maxTweets int) (*CSVLoader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	r := csv.NewReader(charmap.ISO8859_1.NewDecoder().Reader(f))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	return &CSVLoader{file: f, reader: r, budget: maxTweets}, nil
}

// Next returns the next valid row. It returns io.EOF once the source or
// the row budget is exhausted, and ErrMalformedRecord for rows that
// cannot be converted; the loader remains usable after a malformed row.
func (l *CSVLoader) Next() (models.RawTweet, error) {
	if l.yielded >= l.budget {
		return models.RawTweet{}, io.EOF
	}

	record, err := l.reader.Read()
	if err == io.EOF {
		return models.RawTweet{}, io.EOF
	}
	if err != nil {
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			return models.RawTweet{}, fmt.Errorf("%w: line %d: %v", ErrMalformedRecord, parseErr.Line, parseErr.Err)
		}
		return models.RawTweet{}, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	tweet, err := convertRecord(record)
	if err != nil {
		return models.RawTweet{}, err
	}

	l.yielded++
	return tweet, nil
}

// Close releases the underlying file handle.
func (l *CSVLoader) Close() error {
	return l.file.Close()
}

func convertRecord(record []string) (models.RawTweet, error) {
	if len(record) < requiredColumns {
		return models.RawTweet{}, fmt.Errorf("%w: got %d columns, want %d", ErrMalformedRecord, len(record), requiredColumns)
	}

	id := strings.TrimSpace(record[colID])
	text := record[colText]
	if id == "" || strings.TrimSpace(text) == "" {
		return models.RawTweet{}, fmt.Errorf("%w: missing id or text", ErrMalformedRecord)
	}

	tweet := models.RawTweet{SourceID: id, Text: text}

	// The timestamp is optional metadata; a bad date does not disqualify
	// the row.
	if ts, err := time.Parse(dateLayout, strings.TrimSpace(record[colDate])); err == nil {
		tweet.Timestamp = ts
	}

	return tweet, nil
}
