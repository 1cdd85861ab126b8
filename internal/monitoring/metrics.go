package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus instruments for the fetch-and-classify pipeline.
type Metrics struct {
	FetchAttempts      *prometheus.CounterVec // labels: outcome={success,throttled,error,exhausted}
	ThrottleRejections prometheus.Counter     // local rate-limiter rejections

	ClassifierCache    *prometheus.CounterVec // labels: result={hit,miss}
	ClassifierDegraded prometheus.Counter

	PostsProcessed *prometheus.CounterVec // labels: decision={kept,dropped}

	AlertsPublished  prometheus.Counter
	PipelineDuration prometheus.Histogram
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.FetchAttempts,
		m.ThrottleRejections,
		m.ClassifierCache,
		m.ClassifierDegraded,
		m.PostsProcessed,
		m.AlertsPublished,
		m.PipelineDuration,
	)
	return m
}

// NewMetricsForTesting creates Metrics without touching the default registry,
// avoiding "already registered" panics across tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		FetchAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "oceanwatch",
			Name:      "fetch_attempts_total",
			Help:      "Upstream search attempts by outcome.",
		}, []string{"outcome"}),
		ThrottleRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "oceanwatch",
			Name:      "throttle_rejections_total",
			Help:      "Requests rejected by the local per-query rate limiter.",
		}),
		ClassifierCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "oceanwatch",
			Name:      "classifier_cache_total",
			Help:      "Classifier memoization lookups by result.",
		}, []string{"result"}),
		ClassifierDegraded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "oceanwatch",
			Name:      "classifier_degraded_total",
			Help:      "Context-classifier failures recovered with a safe default.",
		}),
		PostsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "oceanwatch",
			Name:      "posts_processed_total",
			Help:      "Posts kept as hazard signal vs dropped by classification.",
		}, []string{"decision"}),
		AlertsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "oceanwatch",
			Name:      "alerts_published_total",
			Help:      "Keyword summaries published to the alerts topic.",
		}),
		PipelineDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "oceanwatch",
			Name:      "pipeline_duration_seconds",
			Help:      "Duration of a complete fetch-classify-aggregate invocation.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}
}
