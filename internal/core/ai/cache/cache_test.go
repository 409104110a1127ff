package cache

import (
	"context"
	"testing"
	"time"

	"chuckle-chow/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(max int) config.CacheConfig {
	return config.CacheConfig{Enabled: true, Driver: "memory", MaxSize: max, TTL: time.Minute}
}

func TestManagerGetSet(t *testing.T) {
	ctx := context.Background()
	m := NewManager(testConfig(10))
	defer m.Close()

	_, err := m.Get(ctx, "grits")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, m.Set(ctx, "grits", `{"title":"Grits"}`))
	v, err := m.Get(ctx, "grits")
	require.NoError(t, err)
	assert.Equal(t, `{"title":"Grits"}`, v)

	s := m.GetStats()
	assert.Equal(t, int64(1), s.Hits)
	assert.Equal(t, int64(1), s.Misses)
	assert.InDelta(t, 0.5, s.HitRatio, 0.001)
}

func TestManagerExpiry(t *testing.T) {
	ctx := context.Background()
	m := NewManager(testConfig(10))
	defer m.Close()

	now := time.Now()
	m.now = func() time.Time { return now }
	require.NoError(t, m.Set(ctx, "okra", "x"))

	m.now = func() time.Time { return now.Add(2 * time.Minute) }
	_, err := m.Get(ctx, "okra")
	assert.ErrorIs(t, err, ErrMiss)
	assert.Equal(t, 0, m.GetStats().Size)
}

func TestManagerEvictsLeastUsed(t *testing.T) {
	ctx := context.Background()
	m := NewManager(testConfig(2))
	defer m.Close()

	require.NoError(t, m.Set(ctx, "a", "1"))
	require.NoError(t, m.Set(ctx, "b", "2"))
	_, err := m.Get(ctx, "a")
	require.NoError(t, err)

	require.NoError(t, m.Set(ctx, "c", "3"))
	_, err = m.Get(ctx, "b")
	assert.ErrorIs(t, err, ErrMiss)
	_, err = m.Get(ctx, "a")
	assert.NoError(t, err)
	assert.Equal(t, 2, m.GetStats().Size)
}

func TestNewDisabled(t *testing.T) {
	c, err := New(config.CacheConfig{Enabled: false})
	require.NoError(t, err)
	assert.Nil(t, c)

	_, err = New(config.CacheConfig{Enabled: true, Driver: "memcached"})
	assert.Error(t, err)
}
