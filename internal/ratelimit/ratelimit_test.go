package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiterAllowsUpToLimit(t *testing.T) {
	lim := NewMemory(Config{Limit: 5, Window: time.Hour})

	for i := 0; i < 5; i++ {
		ok, _, err := lim.Allow(context.Background(), "visitor-1")
		require.NoError(t, err)
		assert.True(t, ok, "request %d should pass", i+1)
	}

	ok, retryAfter, err := lim.Allow(context.Background(), "visitor-1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Greater(t, retryAfter, time.Duration(0))
	assert.LessOrEqual(t, retryAfter, time.Hour)
}

func TestMemoryLimiterKeysAreIndependent(t *testing.T) {
	lim := NewMemory(Config{Limit: 1, Window: time.Hour})

	ok, _, err := lim.Allow(context.Background(), "a")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _, err = lim.Allow(context.Background(), "a")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, _, err = lim.Allow(context.Background(), "b")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryLimiterWindowResets(t *testing.T) {
	lim := NewMemory(Config{Limit: 1, Window: time.Hour})
	now := time.Unix(1_700_000_000, 0)
	lim.now = func() time.Time { return now }

	ok, _, err := lim.Allow(context.Background(), "a")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _, err = lim.Allow(context.Background(), "a")
	require.NoError(t, err)
	assert.False(t, ok)

	now = now.Add(time.Hour + time.Second)
	ok, _, err = lim.Allow(context.Background(), "a")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryLimiterCleanup(t *testing.T) {
	lim := NewMemory(Config{Limit: 1, Window: time.Hour})
	now := time.Unix(1_700_000_000, 0)
	lim.now = func() time.Time { return now }

	_, _, err := lim.Allow(context.Background(), "a")
	require.NoError(t, err)
	_, _, err = lim.Allow(context.Background(), "b")
	require.NoError(t, err)
	assert.Len(t, lim.windows, 2)

	now = now.Add(2 * time.Hour)
	lim.Cleanup()
	assert.Empty(t, lim.windows)
}
