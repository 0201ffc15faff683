package classifier

import (
	"context"
	"math"

	"github.com/jonreiter/govader"

	"github.com/spacesedan/tweetflow/internal/models"
	"github.com/spacesedan/tweetflow/internal/preprocess"
)

// Compound-score cutoffs for assigning a label.
const (
	positiveThreshold = 0.20
	negativeThreshold = -0.20
)

// Vader is the lexicon backend. It needs no model files, which also makes
// it the backend of choice in tests.
type Vader struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

func NewVader() *Vader {
	return &Vader{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

// ClassifyBatch scores each text independently; VADER has no batching of
// its own, so order preservation is direct.
func (v *Vader) ClassifyBatch(ctx context.Context, texts []string) ([]models.ClassificationResult, error) {
	results := make([]models.ClassificationResult, len(texts))
	for i, text := range texts {
		if text == preprocess.NeutralPlaceholder {
			results[i] = models.ClassificationResult{Label: models.LabelNeutral, Score: 1.0}
			continue
		}
		results[i] = scoreText(v.analyzer, text)
	}
	return results, nil
}

func (v *Vader) Close() error {
	return nil
}

func scoreText(analyzer *govader.SentimentIntensityAnalyzer, text string) models.ClassificationResult {
	compound := analyzer.PolarityScores(text).Compound

	// Confidence is the distance from the neutral band, folded into [0,1];
	// neutral text gets the complement.
	switch {
	case compound >= positiveThreshold:
		return models.ClassificationResult{Label: models.LabelPositive, Score: math.Abs(compound)}
	case compound <= negativeThreshold:
		return models.ClassificationResult{Label: models.LabelNegative, Score: math.Abs(compound)}
	default:
		return models.ClassificationResult{Label: models.LabelNeutral, Score: 1 - math.Abs(compound)}
	}
}
