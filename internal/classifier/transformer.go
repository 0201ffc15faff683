package classifier

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"

	"github.com/spacesedan/tweetflow/internal/models"
	"github.com/spacesedan/tweetflow/internal/preprocess"
)

const modelName = "cardiffnlp/twitter-roberta-base-sentiment"

// The checkpoint emits index labels; LABEL_0..2 are negative/neutral/positive.
var modelLabels = map[string]models.Label{
	"LABEL_0": models.LabelNegative,
	"LABEL_1": models.LabelNeutral,
	"LABEL_2": models.LabelPositive,
}

// Transformer runs the pretrained RoBERTa sentiment model through an ONNX
// runtime session. Weights are loaded once and reused for every batch.
type Transformer struct {
	session  *hugot.Session
	pipeline *pipelines.TextClassificationPipeline
}

// NewTransformer initializes the session, downloading the model on first
// use. Any failure here is ErrModelUnavailable; nothing partial survives.
func NewTransformer(modelDir string) (*Transformer, error) {
	if err := os.MkdirAll(modelDir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("%w: create model dir: %v", ErrModelUnavailable, err)
	}

	modelPath := filepath.Join(modelDir, strings.ReplaceAll(modelName, "/", "_"))
	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		slog.Info("[Classifier] Model not found, downloading...",
			slog.String("model", modelName))
		downloaded, err := hugot.DownloadModel(modelName, modelDir, hugot.NewDownloadOptions())
		if err != nil {
			return nil, fmt.Errorf("%w: download: %v", ErrModelUnavailable, err)
		}
		modelPath = downloaded
		slog.Info("[Classifier] Model downloaded successfully",
			slog.String("path", modelPath))
	}

	session, err := hugot.NewORTSession()
	if err != nil {
		return nil, fmt.Errorf("%w: session: %v", ErrModelUnavailable, err)
	}

	config := hugot.TextClassificationConfig{
		ModelPath: modelPath,
		Name:      "tweetSentimentPipeline",
	}
	pipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		session.Destroy()
		return nil, fmt.Errorf("%w: pipeline: %v", ErrModelUnavailable, err)
	}

	return &Transformer{session: session, pipeline: pipeline}, nil
}

// ClassifyBatch runs one model invocation over the batch. Placeholder
// rows resolve to (neutral, 1.0) without touching the model.
func (t *Transformer) ClassifyBatch(ctx context.Context, texts []string) ([]models.ClassificationResult, error) {
	results := make([]models.ClassificationResult, len(texts))

	var live []string
	var liveIdx []int
	for i, text := range texts {
		if text == preprocess.NeutralPlaceholder {
			results[i] = models.ClassificationResult{Label: models.LabelNeutral, Score: 1.0}
			continue
		}
		live = append(live, text)
		liveIdx = append(liveIdx, i)
	}
	if len(live) == 0 {
		return results, nil
	}

	output, err := t.pipeline.RunPipeline(live)
	if err != nil {
		return nil, fmt.Errorf("classifier: batch of %d: %w", len(live), err)
	}
	if len(output.ClassificationOutputs) != len(live) {
		return nil, fmt.Errorf("classifier: got %d outputs for %d inputs",
			len(output.ClassificationOutputs), len(live))
	}

	for j, candidates := range output.ClassificationOutputs {
		scores := make(map[models.Label]float64, len(candidates))
		for _, candidate := range candidates {
			scores[mapModelLabel(candidate.Label)] = float64(candidate.Score)
		}
		results[liveIdx[j]] = pickLabel(scores)
	}

	return results, nil
}

// Close tears down the ONNX session.
func (t *Transformer) Close() error {
	return t.session.Destroy()
}

func mapModelLabel(raw string) models.Label {
	if mapped, ok := modelLabels[raw]; ok {
		return mapped
	}
	switch strings.ToLower(raw) {
	case "negative":
		return models.LabelNegative
	case "positive":
		return models.LabelPositive
	default:
		return models.LabelNeutral
	}
}
