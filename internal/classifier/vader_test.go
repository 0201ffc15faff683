package classifier

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/tweetflow/internal/models"
	"github.com/spacesedan/tweetflow/internal/preprocess"
)

func TestVaderLabels(t *testing.T) {
	v := NewVader()

	tests := []struct {
		name     string
		text     string
		expected models.Label
	}{
		{"positive", "i love this it is wonderful and great", models.LabelPositive},
		{"negative", "i hate this it is terrible and awful", models.LabelNegative},
		{"neutral", "the meeting is at three in building two", models.LabelNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := v.ClassifyBatch(context.Background(), []string{tt.text})
			require.NoError(t, err)
			require.Len(t, results, 1)
			assert.Equal(t, tt.expected, results[0].Label)
			assert.GreaterOrEqual(t, results[0].Score, 0.0)
			assert.LessOrEqual(t, results[0].Score, 1.0)
		})
	}
}

func TestVaderPreservesOrder(t *testing.T) {
	v := NewVader()
	texts := []string{
		"i love this it is wonderful and great",
		"i hate this it is terrible and awful",
		"the meeting is at three in building two",
	}

	results, err := v.ClassifyBatch(context.Background(), texts)
	require.NoError(t, err)
	require.Len(t, results, len(texts))

	assert.Equal(t, models.LabelPositive, results[0].Label)
	assert.Equal(t, models.LabelNegative, results[1].Label)
	assert.Equal(t, models.LabelNeutral, results[2].Label)
}

func TestVaderDeterministic(t *testing.T) {
	v := NewVader()
	texts := []string{"what a fantastic and happy day", "this is the worst thing ever"}

	first, err := v.ClassifyBatch(context.Background(), texts)
	require.NoError(t, err)
	second, err := v.ClassifyBatch(context.Background(), texts)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestVaderPlaceholderShortCircuits(t *testing.T) {
	v := NewVader()
	results, err := v.ClassifyBatch(context.Background(), []string{preprocess.NeutralPlaceholder})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, models.LabelNeutral, results[0].Label)
	assert.Equal(t, 1.0, results[0].Score)
}

func TestPickLabelArgMax(t *testing.T) {
	result := pickLabel(map[models.Label]float64{
		models.LabelNegative: 0.1,
		models.LabelNeutral:  0.2,
		models.LabelPositive: 0.7,
	})
	assert.Equal(t, models.LabelPositive, result.Label)
	assert.Equal(t, 0.7, result.Score)
}

func TestPickLabelTieBreak(t *testing.T) {
	// Equal scores resolve by fixed priority: negative first.
	result := pickLabel(map[models.Label]float64{
		models.LabelNegative: 0.5,
		models.LabelPositive: 0.5,
	})
	assert.Equal(t, models.LabelNegative, result.Label)
}

func TestMapModelLabel(t *testing.T) {
	assert.Equal(t, models.LabelNegative, mapModelLabel("LABEL_0"))
	assert.Equal(t, models.LabelNeutral, mapModelLabel("LABEL_1"))
	assert.Equal(t, models.LabelPositive, mapModelLabel("LABEL_2"))
	assert.Equal(t, models.LabelPositive, mapModelLabel("Positive"))
	assert.Equal(t, models.LabelNeutral, mapModelLabel("anything else"))
}
