package ratelimit

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

const DEFAULT_MIN_INTERVAL = 60 * time.Second

// ThrottledError is the caller-visible rejection for a query re-issued too
// soon. It is never retried internally; callers wait and try again.
type ThrottledError struct {
	Wait time.Duration
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("rate limit: please wait %d seconds before retrying this query", e.WaitSeconds())
}

// WaitSeconds rounds the remaining wait up so a rejection never reports zero.
func (e *ThrottledError) WaitSeconds() int {
	return int(math.Ceil(e.Wait.Seconds()))
}

// Limiter enforces a minimum interval between accepted requests per exact
// query string. This sits above the fetch client's own backoff: it protects
// against a caller re-issuing the same logical query too often, not against
// upstream throttling. The timestamp map grows for the process lifetime.
type Limiter struct {
	mu       sync.Mutex
	interval time.Duration
	clock    clockwork.Clock
	lastSeen map[string]time.Time
}

func NewLimiter(interval time.Duration, clock clockwork.Clock) *Limiter {
	if interval <= 0 {
		interval = DEFAULT_MIN_INTERVAL
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Limiter{
		interval: interval,
		clock:    clock,
		lastSeen: make(map[string]time.Time),
	}
}

// Check accepts the query and records the current time, or rejects with a
// ThrottledError carrying the remaining wait.
func (l *Limiter) Check(query string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	if last, ok := l.lastSeen[query]; ok {
		if elapsed := now.Sub(last); elapsed < l.interval {
			return &ThrottledError{Wait: l.interval - elapsed}
		}
	}

	l.lastSeen[query] = now
	return nil
}
