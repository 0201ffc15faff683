package preprocess

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTweet(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain text", "Just a normal tweet", "just a normal tweet"},
		{"strips urls", "check this http://t.co/abc123 out", "check this out"},
		{"strips www urls", "see www.example.com now", "see now"},
		{"strips mentions", "@someone thanks for the follow", "thanks for the follow"},
		{"strips hashtags", "great game #sports #win", "great game"},
		{"strips punctuation", "wow!!! so good...", "wow so good"},
		{"strips control chars", "hello\x01\x02world", "helloworld"},
		{"collapses whitespace", "too   many\t\tspaces\nhere", "too many spaces here"},
		{"empty input", "", NeutralPlaceholder},
		{"whitespace only", "   \t\n  ", NeutralPlaceholder},
		{"only url", "http://t.co/abc", NeutralPlaceholder},
		{"only mention and hashtag", "@user #topic", NeutralPlaceholder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeTweet(tt.input))
		})
	}
}

func TestNormalizeTweetDeterministic(t *testing.T) {
	input := "Deterministic? YES!! @user http://t.co/x #always the same"
	first := NormalizeTweet(input)
	second := NormalizeTweet(input)
	assert.Equal(t, first, second)
}

func TestNormalizeTweetTruncatesAtTokenBoundary(t *testing.T) {
	long := strings.Repeat("word ", MaxTokens+20)
	got := NormalizeTweet(long)

	tokens := strings.Fields(got)
	assert.Len(t, tokens, MaxTokens)
	// Truncation never cuts inside a token.
	for _, tok := range tokens {
		assert.Equal(t, "word", tok)
	}
}

func TestNormalizeTweetUnderLimitUntouched(t *testing.T) {
	short := "only five tokens right here"
	assert.Equal(t, short, NormalizeTweet(short))
}
