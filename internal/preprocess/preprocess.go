// Package preprocess turns raw tweet text into model-ready input.
package preprocess

import (
	"regexp"
	"strings"
)

// MaxTokens bounds normalized output, measured in whitespace-delimited
// tokens. 96 stays safely under the RoBERTa 128-wordpiece input window.
const MaxTokens = 96

// NeutralPlaceholder replaces text that is empty after cleaning. The
// classifier recognizes it and never sends it to the model.
const NeutralPlaceholder = "[no content]"

var (
	urlPattern     = regexp.MustCompile(`https?://\S+|www\.\S+`)
	mentionPattern = regexp.MustCompile(`[@#]\w+`)
	symbolPattern  = regexp.MustCompile(`[^\w\s]`)
)

// NormalizeTweet cleans raw tweet text: URLs, mentions, hashtags and
// non-word symbols (control characters included) are stripped, whitespace
// is collapsed, the result is lowercased and truncated at a token
// boundary. Deterministic, never fails; degenerate input becomes
// NeutralPlaceholder.
func NormalizeTweet(raw string) string {
	text := urlPattern.ReplaceAllString(raw, "")
	text = mentionPattern.ReplaceAllString(text, "")
	text = symbolPattern.ReplaceAllString(text, "")

	tokens := strings.Fields(strings.ToLower(text))
	if len(tokens) == 0 {
		return NeutralPlaceholder
	}
	if len(tokens) > MaxTokens {
		tokens = tokens[:MaxTokens]
	}

	return strings.Join(tokens, " ")
}
