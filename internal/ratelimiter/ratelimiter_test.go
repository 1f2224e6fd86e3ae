package ratelimiter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllow_WithinBurst(t *testing.T) {
	limiter := New(10, 5)

	for i := 0; i < 5; i++ {
		assert.True(t, limiter.Allow(), "request %d should be allowed", i)
	}
	assert.False(t, limiter.Allow(), "request over burst should be rejected")
}

func TestAllow_Unlimited(t *testing.T) {
	limiter := New(0, 0)

	for i := 0; i < 1000; i++ {
		require.True(t, limiter.Allow())
	}
}

func TestBurstRaisedToRate(t *testing.T) {
	// A burst below the sustained rate would make full-rate traffic
	// impossible, so it is raised.
	limiter := New(10, 1)

	for i := 0; i < 10; i++ {
		assert.True(t, limiter.Allow(), "request %d should be allowed", i)
	}
	assert.False(t, limiter.Allow())
}

func TestTokensRefill(t *testing.T) {
	limiter := New(100, 100)

	for i := 0; i < 100; i++ {
		require.True(t, limiter.Allow())
	}
	require.False(t, limiter.Allow())

	time.Sleep(50 * time.Millisecond)
	assert.True(t, limiter.Allow(), "tokens should refill over time")
}

func TestWait_ContextCancelled(t *testing.T) {
	limiter := New(1, 1)
	require.True(t, limiter.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := limiter.Wait(ctx)
	assert.Error(t, err)
}

func TestTokens(t *testing.T) {
	limiter := New(10, 10)
	assert.InDelta(t, 10, limiter.Tokens(), 1)

	limiter.Allow()
	assert.Less(t, limiter.Tokens(), 10.0)
}
