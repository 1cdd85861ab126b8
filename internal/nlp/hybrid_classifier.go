package nlp

import (
	"context"
	"log/slog"
	"strings"

	"github.com/spacesedan/oceanwatch/internal/hazards"
	"github.com/spacesedan/oceanwatch/internal/models"
	"github.com/spacesedan/oceanwatch/internal/monitoring"
)

const (
	DEFAULT_CONTEXT_THRESHOLD = 0.7
	DEFAULT_CACHE_SIZE        = 10000
)

// HybridClassifier labels a text through three short-circuiting stages:
// a negative-context rule filter, probabilistic context scoring, and a
// priority-ordered keyword-to-category table. Results are memoized per exact
// text in a bounded LRU cache, so the context model runs at most once per
// distinct text within cache capacity.
type HybridClassifier struct {
	contextClassifier ContextClassifier
	threshold         float64
	cache             *lruCache
	metrics           *monitoring.Metrics
}

// NewHybridClassifier builds a classifier around the injected context model.
// Non-positive threshold or cacheSize fall back to the defaults.
func NewHybridClassifier(cc ContextClassifier, threshold float64, cacheSize int, metrics *monitoring.Metrics) *HybridClassifier {
	if threshold <= 0 {
		threshold = DEFAULT_CONTEXT_THRESHOLD
	}
	if cacheSize <= 0 {
		cacheSize = DEFAULT_CACHE_SIZE
	}
	return &HybridClassifier{
		contextClassifier: cc,
		threshold:         threshold,
		cache:             newLRUCache(cacheSize),
		metrics:           metrics,
	}
}

// Classify returns the hazard label for text. Context-model failures degrade
// to a zero-confidence result locally; they are logged, counted, and never
// propagated.
func (c *HybridClassifier) Classify(ctx context.Context, text string) models.ClassificationResult {
	if cached, ok := c.cache.get(text); ok {
		c.countCache("hit")
		return cached
	}
	c.countCache("miss")

	result := c.classify(ctx, text)
	c.cache.put(text, result)
	return result
}

func (c *HybridClassifier) classify(ctx context.Context, text string) models.ClassificationResult {
	textLower := strings.ToLower(text)

	// Stage 1: rule filter for idiomatic non-disaster phrasing.
	for _, phrase := range hazards.NegativeContexts {
		if strings.Contains(textLower, phrase) {
			return models.ClassificationResult{Label: models.LabelNotHazard, Confidence: 1}
		}
	}

	// Stage 2: context scoring via the injected model.
	var topLabel string
	var score float64
	predictions, err := c.contextClassifier.Classify(ctx, text)
	if err != nil {
		slog.Warn("[HybridClassifier] Context model failed, degrading to keyword evidence",
			slog.String("error", err.Error()))
		if c.metrics != nil {
			c.metrics.ClassifierDegraded.Inc()
		}
	} else if len(predictions) > 0 {
		topLabel = predictions[0].Label
		score = predictions[0].Score
	}

	if topLabel == CONTEXT_LABEL_UNRELATED && score > c.threshold {
		return models.ClassificationResult{Label: models.LabelNotHazard, Confidence: score}
	}

	// Stage 3: first matching category wins; the table order is stable.
	for _, cat := range hazards.Categories {
		for _, syn := range cat.Synonyms {
			if strings.Contains(textLower, syn) {
				return models.ClassificationResult{Label: cat.Name, Confidence: score}
			}
		}
	}

	// No keyword evidence. Hazard-related per the model but of indeterminate
	// type reads as unknown; anything weaker is not a hazard.
	if topLabel == CONTEXT_LABEL_HAZARD && score >= c.threshold {
		return models.ClassificationResult{Label: models.LabelUnknown, Confidence: score}
	}
	return models.ClassificationResult{Label: models.LabelNotHazard, Confidence: score}
}

func (c *HybridClassifier) countCache(result string) {
	if c.metrics != nil {
		c.metrics.ClassifierCache.WithLabelValues(result).Inc()
	}
}
