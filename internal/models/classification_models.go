package models

const (
	LabelNotHazard = "not_hazard"
	LabelUnknown   = "unknown"
)

// ClassificationResult is one classifier verdict for a single text. Label is
// either a hazard category name, LabelUnknown, or LabelNotHazard.
type ClassificationResult struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// IsHazard reports whether the label names a specific hazard category.
// Unknown and not_hazard results gate the post out of any result set.
func (r ClassificationResult) IsHazard() bool {
	return r.Label != LabelNotHazard && r.Label != LabelUnknown
}

// AlertSummary is the aggregated hazard-keyword signal published for
// downstream alerting after each pipeline run.
type AlertSummary struct {
	Query          string         `json:"query"`
	GeneratedAt    string         `json:"generated_at"`
	PostCount      int            `json:"post_count"`
	KeywordSummary map[string]int `json:"keyword_summary"`
}
