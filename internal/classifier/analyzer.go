// Package classifier maps normalized tweet text to sentiment labels.
// Two backends exist: an ONNX transformer held resident for the process
// lifetime, and a VADER lexicon analyzer that needs no model files.
package classifier

import (
	"context"
	"errors"

	"github.com/spacesedan/tweetflow/internal/models"
)

// ErrModelUnavailable means the backend could not initialize. Fatal: no
// partial classifier state is kept.
var ErrModelUnavailable = errors.New("classifier: model unavailable")

// Analyzer classifies a batch of normalized texts. Output order matches
// input order, result[i] belonging to texts[i]. A failed call classifies
// nothing; previously returned batches are unaffected.
type Analyzer interface {
	ClassifyBatch(ctx context.Context, texts []string) ([]models.ClassificationResult, error)
	Close() error
}

// pickLabel selects the arg-max label from per-label scores. Ties resolve
// by models.LabelPriority so repeated runs stay deterministic.
func pickLabel(scores map[models.Label]float64) models.ClassificationResult {
	best := models.ClassificationResult{Label: models.LabelNeutral}
	for _, label := range models.LabelPriority {
		if score, ok := scores[label]; ok && score > best.Score {
			best = models.ClassificationResult{Label: label, Score: score}
		}
	}
	return best
}
