package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "tweets.db", cfg.DBPath)
	assert.Equal(t, 100, cfg.MaxTweets)
	assert.Equal(t, 32, cfg.BatchSize)
	assert.Equal(t, BackendTransformer, cfg.Backend)
	assert.Equal(t, 3, cfg.MaxRetries)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SQLITE_DB", "/tmp/other.db")
	t.Setenv("MAX_TWEETS", "250")
	t.Setenv("BATCH_SIZE", "16")
	t.Setenv("SENTIMENT_BACKEND", BackendVader)

	cfg := Load()

	assert.Equal(t, "/tmp/other.db", cfg.DBPath)
	assert.Equal(t, 250, cfg.MaxTweets)
	assert.Equal(t, 16, cfg.BatchSize)
	assert.Equal(t, BackendVader, cfg.Backend)
}

func TestLoadIgnoresInvalidNumbers(t *testing.T) {
	t.Setenv("MAX_TWEETS", "not-a-number")
	t.Setenv("BATCH_SIZE", "-5")
	t.Setenv("SENTIMENT_BACKEND", "astrology")

	cfg := Load()

	assert.Equal(t, 100, cfg.MaxTweets)
	assert.Equal(t, 32, cfg.BatchSize)
	assert.Equal(t, BackendTransformer, cfg.Backend)
}
