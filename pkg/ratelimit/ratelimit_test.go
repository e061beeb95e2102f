package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(sendLimit, verifyLimit int) (*Limiter, *MemoryStore) {
	store := NewMemoryStore()
	return NewLimiter(store, 15*time.Minute, sendLimit, verifyLimit), store
}

func TestLimiter_AllowsUpToLimit(t *testing.T) {
	limiter, _ := newTestLimiter(5, 10)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		res, err := limiter.Allow(ctx, "10.0.0.1", OpSendCode)
		require.NoError(t, err)
		assert.True(t, res.Allowed, "attempt %d should be allowed", i+1)
	}

	res, err := limiter.Allow(ctx, "10.0.0.1", OpSendCode)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Greater(t, res.RetryAfter, time.Duration(0))
}

func TestLimiter_SeparateBudgetsPerOperation(t *testing.T) {
	limiter, _ := newTestLimiter(1, 2)
	ctx := context.Background()

	res, err := limiter.Allow(ctx, "10.0.0.1", OpSendCode)
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	res, err = limiter.Allow(ctx, "10.0.0.1", OpSendCode)
	require.NoError(t, err)
	assert.False(t, res.Allowed)

	// Verify budget for the same address is untouched
	res, err = limiter.Allow(ctx, "10.0.0.1", OpVerifyCode)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestLimiter_SeparateBudgetsPerAddress(t *testing.T) {
	limiter, _ := newTestLimiter(1, 1)
	ctx := context.Background()

	res, err := limiter.Allow(ctx, "10.0.0.1", OpSendCode)
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	res, err = limiter.Allow(ctx, "10.0.0.2", OpSendCode)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestMemoryStore_ResetsAfterWindow(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now()
	store.nowFn = func() time.Time { return now }

	limiter := NewLimiter(store, 15*time.Minute, 1, 1)
	ctx := context.Background()

	res, err := limiter.Allow(ctx, "10.0.0.1", OpSendCode)
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	res, err = limiter.Allow(ctx, "10.0.0.1", OpSendCode)
	require.NoError(t, err)
	assert.False(t, res.Allowed)

	now = now.Add(16 * time.Minute)

	res, err = limiter.Allow(ctx, "10.0.0.1", OpSendCode)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestLimiter_UnknownOperation(t *testing.T) {
	limiter, _ := newTestLimiter(1, 1)
	_, err := limiter.Allow(context.Background(), "10.0.0.1", Operation("bogus"))
	assert.Error(t, err)
}
