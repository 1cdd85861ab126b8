package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/oauth2"

	"github.com/spacesedan/oceanwatch/internal/models"
	"github.com/spacesedan/oceanwatch/internal/monitoring"
)

const (
	TWITTER_SEARCH_URL = "https://api.twitter.com/2/tweets/search/recent"
	TWEET_FIELDS       = "id,text,author_id,created_at,conversation_id,public_metrics"

	// Server-enforced result cap, clamped client-side.
	MAX_RESULTS_CAP     = 50
	DEFAULT_MAX_RESULTS = 20
	DEFAULT_TIME_WINDOW = 2 * time.Hour

	MAX_FETCH_ATTEMPTS     = 5
	THROTTLE_BACKOFF_STEP  = 60 * time.Second
	THROTTLE_BACKOFF_FLOOR = 15 * time.Second
	ERROR_COOLDOWN         = 5 * time.Second

	RATE_LIMIT_RESET_HEADER = "x-rate-limit-reset"
)

// ErrRetriesExhausted is the terminal fetch failure after the attempt ceiling.
// It propagates to the caller and is never retried again internally.
var ErrRetriesExhausted = errors.New("search request failed after max retries")

// fetchState drives the bounded retry machine for one fetch call.
type fetchState int

const (
	stateAttempting fetchState = iota
	stateBackoff
	stateSucceeded
	stateExhausted
)

// TwitterClient performs recent-search requests under retry-with-backoff
// discipline. Sleeps go through the injected clock and suspend only the
// calling goroutine; independent fetches never block each other.
type TwitterClient struct {
	client  *http.Client
	baseURL string
	clock   clockwork.Clock
	metrics *monitoring.Metrics
}

func NewTwitterClient(bearerToken string, clock clockwork.Clock, metrics *monitoring.Metrics) *TwitterClient {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	tokenSource := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: bearerToken,
		TokenType:   "Bearer",
	})
	httpClient := oauth2.NewClient(context.Background(), tokenSource)
	httpClient.Timeout = 15 * time.Second

	return &TwitterClient{
		client:  httpClient,
		baseURL: TWITTER_SEARCH_URL,
		clock:   clock,
		metrics: metrics,
	}
}

// StartTime formats the lower time bound for a search window, ISO-8601 UTC.
func StartTime(now time.Time, window time.Duration) string {
	if window <= 0 {
		window = DEFAULT_TIME_WINDOW
	}
	return now.UTC().Add(-window).Format("2006-01-02T15:04:05Z")
}

// SearchRecent fetches recent posts matching query, created at or after
// startTime. maxResults is clamped to the server's cap.
func (tc *TwitterClient) SearchRecent(ctx context.Context, query string, maxResults int, startTime string) ([]models.Post, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("tweet.fields", TWEET_FIELDS)
	params.Set("max_results", strconv.Itoa(clampMaxResults(maxResults)))
	params.Set("start_time", startTime)

	return tc.fetch(ctx, tc.baseURL+"?"+params.Encode())
}

// FetchDirectReplies fetches direct replies within a conversation, addressed
// to the original author.
func (tc *TwitterClient) FetchDirectReplies(ctx context.Context, conversationID, authorID string, maxResults int) ([]models.Post, error) {
	params := url.Values{}
	params.Set("query", fmt.Sprintf("conversation_id:%s to:%s", conversationID, authorID))
	params.Set("tweet.fields", TWEET_FIELDS)
	params.Set("max_results", strconv.Itoa(clampMaxResults(maxResults)))

	return tc.fetch(ctx, tc.baseURL+"?"+params.Encode())
}

// fetch runs the retry state machine: attempting -> backoff -> attempting,
// terminating in succeeded or exhausted. A throttled attempt waits for the
// server-provided reset when present, else a linear backoff floored at
// THROTTLE_BACKOFF_FLOOR; any other failed attempt waits ERROR_COOLDOWN.
func (tc *TwitterClient) fetch(ctx context.Context, fullURL string) ([]models.Post, error) {
	state := stateAttempting
	attempt := 0
	var wait time.Duration
	var posts []models.Post

	for {
		switch state {
		case stateAttempting:
			attempt++
			result, retryWait, retry, err := tc.attempt(ctx, fullURL, attempt)
			switch {
			case err != nil:
				return nil, err
			case !retry:
				posts = result
				state = stateSucceeded
			case attempt >= MAX_FETCH_ATTEMPTS:
				state = stateExhausted
			default:
				wait = retryWait
				state = stateBackoff
			}
		case stateBackoff:
			slog.Warn("[TwitterClient] Backing off before retry",
				slog.Int("attempt", attempt),
				slog.Duration("wait", wait))
			if err := tc.sleep(ctx, wait); err != nil {
				return nil, err
			}
			state = stateAttempting
		case stateSucceeded:
			tc.countFetch("success")
			return posts, nil
		case stateExhausted:
			tc.countFetch("exhausted")
			slog.Error("[TwitterClient] Giving up on search request",
				slog.Int("attempts", attempt))
			return nil, fmt.Errorf("giving up after %d attempts: %w", attempt, ErrRetriesExhausted)
		}
	}
}

// attempt issues one request. retry=true means the attempt failed transiently
// and retryWait is how long to back off; err is terminal and ends the fetch.
func (tc *TwitterClient) attempt(ctx context.Context, fullURL string, attempt int) (posts []models.Post, retryWait time.Duration, retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, 0, false, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := tc.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, 0, false, ctx.Err()
		}
		slog.Warn("[TwitterClient] Request failed, will retry",
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()))
		tc.countFetch("error")
		return nil, ERROR_COOLDOWN, true, nil
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, 0, false, fmt.Errorf("failed to read response: %w", err)
		}
		var search models.TwitterSearchResponse
		if err := json.Unmarshal(body, &search); err != nil {
			return nil, 0, false, fmt.Errorf("failed to parse response: %w", err)
		}
		results := make([]models.Post, 0, len(search.Data))
		for _, raw := range search.Data {
			results = append(results, raw.ToPost())
		}
		return results, 0, false, nil

	case http.StatusTooManyRequests:
		wait := tc.throttleWait(resp, attempt)
		slog.Warn("[TwitterClient] 429 Too Many Requests",
			slog.Int("attempt", attempt),
			slog.Duration("wait", wait))
		tc.countFetch("throttled")
		io.Copy(io.Discard, resp.Body) //nolint:errcheck // draining for connection reuse
		return nil, wait, true, nil

	default:
		slog.Warn("[TwitterClient] Unexpected status, will retry",
			slog.Int("attempt", attempt),
			slog.Int("status", resp.StatusCode))
		tc.countFetch("error")
		io.Copy(io.Discard, resp.Body) //nolint:errcheck // draining for connection reuse
		return nil, ERROR_COOLDOWN, true, nil
	}
}

// throttleWait derives the backoff from the server reset timestamp when
// present, else a linear step per attempt, floored at THROTTLE_BACKOFF_FLOOR.
func (tc *TwitterClient) throttleWait(resp *http.Response, attempt int) time.Duration {
	wait := THROTTLE_BACKOFF_STEP * time.Duration(attempt)
	if header := resp.Header.Get(RATE_LIMIT_RESET_HEADER); header != "" {
		if reset, err := strconv.ParseInt(header, 10, 64); err == nil {
			if until := time.Unix(reset, 0).Sub(tc.clock.Now()); until > 0 {
				wait = until
			}
		}
	}
	if wait < THROTTLE_BACKOFF_FLOOR {
		wait = THROTTLE_BACKOFF_FLOOR
	}
	return wait
}

func (tc *TwitterClient) sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-tc.clock.After(d):
		return nil
	}
}

func (tc *TwitterClient) countFetch(outcome string) {
	if tc.metrics != nil {
		tc.metrics.FetchAttempts.WithLabelValues(outcome).Inc()
	}
}

func clampMaxResults(maxResults int) int {
	if maxResults <= 0 {
		return DEFAULT_MAX_RESULTS
	}
	if maxResults > MAX_RESULTS_CAP {
		return MAX_RESULTS_CAP
	}
	return maxResults
}
