package models

import "time"

// RawTweet is a single source row after boundary validation. It lives only
// for the duration of a pipeline run.
type RawTweet struct {
	SourceID  string    `json:"source_id"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// StoredTweet is the persisted form of a classified tweet. ID is derived
// from the source row id, so reprocessing overwrites instead of duplicating.
type StoredTweet struct {
	ID          string    `json:"id"`
	Text        string    `json:"text"`
	Label       Label     `json:"label"`
	Score       float64   `json:"score"`
	ProcessedAt time.Time `json:"processed_at"`
}
