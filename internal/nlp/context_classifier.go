package nlp

import "context"

// Context labels the probabilistic classifier ranks each text against.
const (
	CONTEXT_LABEL_HAZARD    = "natural disaster"
	CONTEXT_LABEL_UNRELATED = "unrelated"
)

// CandidateLabels returns the candidate label set for hazard context scoring.
func CandidateLabels() []string {
	return []string{CONTEXT_LABEL_HAZARD, CONTEXT_LABEL_UNRELATED}
}

// Prediction is one candidate label with its confidence in [0,1].
type Prediction struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// ContextClassifier is the opaque probabilistic capability behind stage two of
// the hybrid classifier: given a text it returns label predictions ordered by
// confidence, highest first. Any model satisfying this contract is
// substitutable; the candidate label set is fixed at construction.
type ContextClassifier interface {
	Classify(ctx context.Context, text string) ([]Prediction, error)
}
