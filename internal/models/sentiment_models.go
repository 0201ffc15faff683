package models

// Label is one of the fixed sentiment classes.
type Label string

const (
	LabelNegative Label = "negative"
	LabelNeutral  Label = "neutral"
	LabelPositive Label = "positive"
)

// LabelPriority is the fixed order used to break score ties during label
// selection: on equal scores the earlier label wins.
var LabelPriority = []Label{LabelNegative, LabelNeutral, LabelPositive}

// ClassificationResult carries the predicted label and the model's
// calibrated probability for it. Immutable once produced.
type ClassificationResult struct {
	Label Label   `json:"sentiment_label"`
	Score float64 `json:"sentiment_score"`
}
