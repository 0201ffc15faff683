package config

import (
	"os"
	"strconv"
)

const (
	BackendTransformer = "transformer"
	BackendVader       = "vader"
)

// Config carries every knob the pipeline and dashboard need. It is built
// once in main and passed down explicitly; nothing reads the environment
// after Load returns.
type Config struct {
	CSVPath   string
	DBPath    string
	MaxTweets int
	BatchSize int

	Backend    string
	ModelDir   string
	MaxRetries int

	DashboardAddr string
}

// Load reads recognized environment variables and falls back to defaults.
func Load() Config {
	cfg := Config{
		CSVPath:       "data/sentiment140.csv",
		DBPath:        "tweets.db",
		MaxTweets:     100,
		BatchSize:     32,
		Backend:       BackendTransformer,
		ModelDir:      "models",
		MaxRetries:    3,
		DashboardAddr: ":8080",
	}

	if v := os.Getenv("CSV_PATH"); v != "" {
		cfg.CSVPath = v
	}
	if v := os.Getenv("SQLITE_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("MAX_TWEETS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxTweets = n
		}
	}
	if v := os.Getenv("BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.BatchSize = n
		}
	}
	if v := os.Getenv("SENTIMENT_BACKEND"); v == BackendVader || v == BackendTransformer {
		cfg.Backend = v
	}
	if v := os.Getenv("MODEL_DIR"); v != "" {
		cfg.ModelDir = v
	}
	if v := os.Getenv("MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxRetries = n
		}
	}
	if v := os.Getenv("DASHBOARD_ADDR"); v != "" {
		cfg.DashboardAddr = v
	}

	return cfg
}
