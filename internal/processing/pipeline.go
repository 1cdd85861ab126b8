package processing

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/spacesedan/oceanwatch/internal/clients"
	"github.com/spacesedan/oceanwatch/internal/hazards"
	"github.com/spacesedan/oceanwatch/internal/models"
	"github.com/spacesedan/oceanwatch/internal/monitoring"
	"github.com/spacesedan/oceanwatch/internal/sentiment"
)

const DEFAULT_REPLY_LIMIT = 5

// PostFetcher is the resilient search client surface the pipeline consumes.
type PostFetcher interface {
	SearchRecent(ctx context.Context, query string, maxResults int, startTime string) ([]models.Post, error)
	FetchDirectReplies(ctx context.Context, conversationID, authorID string, maxResults int) ([]models.Post, error)
}

type Classifier interface {
	Classify(ctx context.Context, text string) models.ClassificationResult
}

type RateLimiter interface {
	Check(query string) error
}

type AlertPublisher interface {
	PublishSummary(summary models.AlertSummary) error
}

type PipelineConfig struct {
	// Window is how far back the search reaches; defaults to 2h.
	Window time.Duration
	// ReplyLimit caps direct replies fetched per kept post; 0 disables.
	ReplyLimit int
}

// Pipeline wires query building, rate limiting, fetching, classification, and
// keyword aggregation into one invocation. Each call is independent and never
// mutates the upstream source; partial results are not salvaged.
type Pipeline struct {
	fetcher    PostFetcher
	classifier Classifier
	limiter    RateLimiter
	publisher  AlertPublisher
	metrics    *monitoring.Metrics
	clock      clockwork.Clock
	window     time.Duration
	replyLimit int
}

// NewPipeline builds a pipeline instance. publisher and metrics may be nil;
// a nil clock falls back to real time.
func NewPipeline(fetcher PostFetcher, classifier Classifier, limiter RateLimiter, publisher AlertPublisher, metrics *monitoring.Metrics, clock clockwork.Clock, cfg PipelineConfig) *Pipeline {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if cfg.Window <= 0 {
		cfg.Window = clients.DEFAULT_TIME_WINDOW
	}
	return &Pipeline{
		fetcher:    fetcher,
		classifier: classifier,
		limiter:    limiter,
		publisher:  publisher,
		metrics:    metrics,
		clock:      clock,
		window:     cfg.Window,
		replyLimit: cfg.ReplyLimit,
	}
}

// FetchAndAnalyze runs one fetch-classify-aggregate invocation. Only two
// failures surface: a local throttle (ratelimit.ThrottledError) and exhausted
// fetch retries; classifier trouble degrades per post and is absorbed.
func (p *Pipeline) FetchAndAnalyze(ctx context.Context, hazard, location string, maxResults int) (*models.FetchResponse, error) {
	start := p.clock.Now()
	query := hazards.BuildQuery(hazard, location)

	if err := p.limiter.Check(query); err != nil {
		slog.Warn("[Pipeline] Query throttled locally", slog.String("query", query))
		if p.metrics != nil {
			p.metrics.ThrottleRejections.Inc()
		}
		return nil, err
	}

	startTime := clients.StartTime(p.clock.Now(), p.window)
	posts, err := p.fetcher.SearchRecent(ctx, query, maxResults, startTime)
	if err != nil {
		return nil, err
	}

	// Posts keep their fetch order; aggregation is order-independent anyway.
	kept := make([]models.Post, 0, len(posts))
	batch := make([]map[string]int, 0, len(posts))
	for _, post := range posts {
		result := p.classifier.Classify(ctx, post.Text)
		if !result.IsHazard() {
			p.countPost("dropped")
			continue
		}
		p.countPost("kept")

		post.HazardClassification = result.Label
		post.KeywordFrequency = hazards.ExtractKeywords(post.Text)
		post.SentimentScore, post.SentimentLabel = sentiment.AnalyzeWithVADER(post.Text)
		if p.replyLimit > 0 {
			post.DirectReplies = p.fetchReplies(ctx, post)
		}

		kept = append(kept, post)
		batch = append(batch, post.KeywordFrequency)
	}

	summary := hazards.SummarizeKeywords(batch)
	p.publishSummary(query, len(kept), summary)

	if p.metrics != nil {
		p.metrics.PipelineDuration.Observe(p.clock.Now().Sub(start).Seconds())
	}

	slog.Info("[Pipeline] Fetch-and-analyze complete",
		slog.String("query", query),
		slog.Int("fetched", len(posts)),
		slog.Int("kept", len(kept)))

	return &models.FetchResponse{
		Query:          query,
		TimeWindow:     startTime,
		HazardFilter:   hazard,
		LocationFilter: location,
		Posts:          kept,
		KeywordSummary: summary,
	}, nil
}

// fetchReplies attaches direct replies to a kept post. Reply fetch failures
// are absorbed: replies are context, not signal.
func (p *Pipeline) fetchReplies(ctx context.Context, post models.Post) []models.Reply {
	raw, err := p.fetcher.FetchDirectReplies(ctx, post.ConversationID, post.AuthorID, p.replyLimit)
	if err != nil {
		slog.Warn("[Pipeline] Failed to fetch direct replies",
			slog.String("conversation_id", post.ConversationID),
			slog.String("error", err.Error()))
		return nil
	}

	replies := make([]models.Reply, 0, len(raw))
	for _, r := range raw {
		result := p.classifier.Classify(ctx, r.Text)
		replies = append(replies, models.Reply{
			ID:                   r.ID,
			Text:                 r.Text,
			CreatedAt:            r.CreatedAt,
			AuthorID:             r.AuthorID,
			HazardClassification: result.Label,
			Engagement:           r.Engagement,
			KeywordFrequency:     hazards.ExtractKeywords(r.Text),
		})
	}
	return replies
}

func (p *Pipeline) publishSummary(query string, postCount int, summary map[string]int) {
	if p.publisher == nil || len(summary) == 0 {
		return
	}

	err := p.publisher.PublishSummary(models.AlertSummary{
		Query:          query,
		GeneratedAt:    p.clock.Now().UTC().Format(time.RFC3339),
		PostCount:      postCount,
		KeywordSummary: summary,
	})
	if err != nil {
		slog.Warn("[Pipeline] Failed to publish keyword summary",
			slog.String("error", err.Error()))
		return
	}
	if p.metrics != nil {
		p.metrics.AlertsPublished.Inc()
	}
}

func (p *Pipeline) countPost(decision string) {
	if p.metrics != nil {
		p.metrics.PostsProcessed.WithLabelValues(decision).Inc()
	}
}
