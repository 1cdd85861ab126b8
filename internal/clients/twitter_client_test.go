package clients

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/oceanwatch/internal/models"
)

const searchBody = `{
	"data": [
		{
			"id": "1790000000000000001",
			"text": "storm surge warning issued for the coast",
			"author_id": "4242",
			"created_at": "2025-09-18T06:12:00.000Z",
			"conversation_id": "1790000000000000001",
			"public_metrics": {"retweet_count": 3, "reply_count": 1, "like_count": 9, "quote_count": 0}
		}
	],
	"meta": {"result_count": 1}
}`

func newTestClient(t *testing.T, handler http.Handler, clock clockwork.Clock) *TwitterClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	tc := NewTwitterClient("test-token", clock, nil)
	tc.baseURL = server.URL
	return tc
}

func TestSearchRecent_Success(t *testing.T) {
	var gotQuery atomic.Value
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery.Store(r.URL.Query())
		w.Write([]byte(searchBody)) //nolint:errcheck
	})

	tc := newTestClient(t, handler, clockwork.NewFakeClock())

	posts, err := tc.SearchRecent(context.Background(), `("flood") lang:en -is:retweet`, 100, "2025-09-18T04:00:00Z")
	require.NoError(t, err)
	require.Len(t, posts, 1)

	assert.Equal(t, "storm surge warning issued for the coast", posts[0].Text)
	assert.Equal(t, "4242", posts[0].AuthorID)
	assert.Equal(t, models.Engagement{RetweetCount: 3, ReplyCount: 1, LikeCount: 9}, posts[0].Engagement)

	params := gotQuery.Load().(url.Values)
	assert.Equal(t, `("flood") lang:en -is:retweet`, params.Get("query"))
	assert.Equal(t, "50", params.Get("max_results"), "requested 100 must clamp to the server cap")
	assert.Equal(t, "2025-09-18T04:00:00Z", params.Get("start_time"))
	assert.Equal(t, TWEET_FIELDS, params.Get("tweet.fields"))
}

func TestSearchRecent_SuccessShortCircuits(t *testing.T) {
	var requests atomic.Int64
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Write([]byte(searchBody)) //nolint:errcheck
	})

	tc := newTestClient(t, handler, clockwork.NewFakeClock())

	_, err := tc.SearchRecent(context.Background(), "flood", 10, "2025-09-18T04:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, int64(1), requests.Load())
}

func TestSearchRecent_ThrottledThenSuccess(t *testing.T) {
	var requests atomic.Int64
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(searchBody)) //nolint:errcheck
	})

	clock := clockwork.NewFakeClock()
	tc := newTestClient(t, handler, clock)

	type fetchResult struct {
		posts []models.Post
		err   error
	}
	done := make(chan fetchResult, 1)
	go func() {
		posts, err := tc.SearchRecent(context.Background(), "flood", 10, "2025-09-18T04:00:00Z")
		done <- fetchResult{posts, err}
	}()

	// No reset header: linear backoff of 60s x attempt 1.
	clock.BlockUntil(1)
	select {
	case <-done:
		t.Fatal("client retried before the backoff elapsed")
	case <-time.After(50 * time.Millisecond):
	}

	clock.Advance(60 * time.Second)
	result := <-done
	require.NoError(t, result.err)
	assert.Len(t, result.posts, 1)
	assert.Equal(t, int64(2), requests.Load())
}

func TestSearchRecent_ResetHeaderHonored(t *testing.T) {
	clock := clockwork.NewFakeClock()
	reset := clock.Now().Add(20 * time.Second).Unix()

	var requests atomic.Int64
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) == 1 {
			w.Header().Set(RATE_LIMIT_RESET_HEADER, strconv.FormatInt(reset, 10))
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(searchBody)) //nolint:errcheck
	})

	tc := newTestClient(t, handler, clock)

	done := make(chan error, 1)
	go func() {
		_, err := tc.SearchRecent(context.Background(), "flood", 10, "2025-09-18T04:00:00Z")
		done <- err
	}()

	clock.BlockUntil(1)
	clock.Advance(20 * time.Second)
	require.NoError(t, <-done)
	assert.Equal(t, int64(2), requests.Load())
}

func TestSearchRecent_ThrottleWaitFloor(t *testing.T) {
	clock := clockwork.NewFakeClock()
	// A reset only 1s away still waits the 15s floor.
	reset := clock.Now().Add(1 * time.Second).Unix()

	var requests atomic.Int64
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) == 1 {
			w.Header().Set(RATE_LIMIT_RESET_HEADER, strconv.FormatInt(reset, 10))
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(searchBody)) //nolint:errcheck
	})

	tc := newTestClient(t, handler, clock)

	done := make(chan error, 1)
	go func() {
		_, err := tc.SearchRecent(context.Background(), "flood", 10, "2025-09-18T04:00:00Z")
		done <- err
	}()

	clock.BlockUntil(1)
	clock.Advance(14 * time.Second)
	select {
	case <-done:
		t.Fatal("client retried before the floor wait elapsed")
	case <-time.After(50 * time.Millisecond):
	}

	clock.Advance(1 * time.Second)
	require.NoError(t, <-done)
}

func TestSearchRecent_ExhaustsAfterMaxAttempts(t *testing.T) {
	var requests atomic.Int64
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	clock := clockwork.NewFakeClock()
	tc := newTestClient(t, handler, clock)

	done := make(chan error, 1)
	go func() {
		_, err := tc.SearchRecent(context.Background(), "flood", 10, "2025-09-18T04:00:00Z")
		done <- err
	}()

	// Four 5s cooldowns separate the five attempts; no sixth attempt follows.
	for i := 0; i < MAX_FETCH_ATTEMPTS-1; i++ {
		clock.BlockUntil(1)
		clock.Advance(ERROR_COOLDOWN)
	}

	err := <-done
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRetriesExhausted))
	assert.Equal(t, int64(MAX_FETCH_ATTEMPTS), requests.Load())
}

func TestSearchRecent_MalformedSuccessIsTerminal(t *testing.T) {
	var requests atomic.Int64
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Write([]byte("{not json")) //nolint:errcheck
	})

	tc := newTestClient(t, handler, clockwork.NewFakeClock())

	_, err := tc.SearchRecent(context.Background(), "flood", 10, "2025-09-18T04:00:00Z")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrRetriesExhausted))
	assert.Equal(t, int64(1), requests.Load())
}

func TestFetchDirectReplies_QueryShape(t *testing.T) {
	var gotQuery atomic.Value
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery.Store(r.URL.Query().Get("query"))
		w.Write([]byte(`{"data": [], "meta": {"result_count": 0}}`)) //nolint:errcheck
	})

	tc := newTestClient(t, handler, clockwork.NewFakeClock())

	replies, err := tc.FetchDirectReplies(context.Background(), "1790000000000000001", "4242", 5)
	require.NoError(t, err)
	assert.Empty(t, replies)
	assert.Equal(t, "conversation_id:1790000000000000001 to:4242", gotQuery.Load())
}

func TestStartTime_Format(t *testing.T) {
	now := time.Date(2025, 9, 18, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025-09-18T06:00:00Z", StartTime(now, 2*time.Hour))
	// Non-positive window falls back to the default.
	assert.Equal(t, "2025-09-18T06:00:00Z", StartTime(now, 0))
}
