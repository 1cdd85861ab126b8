package ratelimit

import (
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiter_FirstCheckPasses(t *testing.T) {
	clock := clockwork.NewFakeClock()
	l := NewLimiter(60*time.Second, clock)

	require.NoError(t, l.Check("flood Chennai"))
}

func TestLimiter_SecondCheckWithinIntervalThrottled(t *testing.T) {
	clock := clockwork.NewFakeClock()
	l := NewLimiter(60*time.Second, clock)

	require.NoError(t, l.Check("flood Chennai"))
	clock.Advance(10 * time.Second)

	err := l.Check("flood Chennai")
	require.Error(t, err)

	var throttled *ThrottledError
	require.True(t, errors.As(err, &throttled))
	assert.Greater(t, throttled.WaitSeconds(), 0)
	assert.LessOrEqual(t, throttled.WaitSeconds(), 60)
	assert.Equal(t, 50*time.Second, throttled.Wait)
}

func TestLimiter_PassesAfterFullInterval(t *testing.T) {
	clock := clockwork.NewFakeClock()
	l := NewLimiter(60*time.Second, clock)

	require.NoError(t, l.Check("flood Chennai"))
	clock.Advance(60 * time.Second)
	require.NoError(t, l.Check("flood Chennai"))
}

func TestLimiter_QueriesAreIndependent(t *testing.T) {
	clock := clockwork.NewFakeClock()
	l := NewLimiter(60*time.Second, clock)

	require.NoError(t, l.Check("flood Chennai"))
	require.NoError(t, l.Check("cyclone Visakhapatnam"))

	// Throttling one query must not touch the other's record.
	require.Error(t, l.Check("flood Chennai"))
	clock.Advance(60 * time.Second)
	require.NoError(t, l.Check("cyclone Visakhapatnam"))
}

func TestLimiter_RejectionDoesNotResetWindow(t *testing.T) {
	clock := clockwork.NewFakeClock()
	l := NewLimiter(60*time.Second, clock)

	require.NoError(t, l.Check("q"))
	clock.Advance(40 * time.Second)
	require.Error(t, l.Check("q"))
	clock.Advance(20 * time.Second)

	// 60s after the accepted request, not 60s after the rejection.
	require.NoError(t, l.Check("q"))
}

func TestLimiter_SubSecondWaitRoundsUp(t *testing.T) {
	clock := clockwork.NewFakeClock()
	l := NewLimiter(60*time.Second, clock)

	require.NoError(t, l.Check("q"))
	clock.Advance(59*time.Second + 700*time.Millisecond)

	err := l.Check("q")
	var throttled *ThrottledError
	require.True(t, errors.As(err, &throttled))
	assert.Equal(t, 1, throttled.WaitSeconds())
}
