package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/questboard/internal/calendar"
	"github.com/iliyamo/questboard/internal/model"
)

func newTestCache(t *testing.T) (*StatsCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewStatsCache(rdb, "test", time.Minute, nil), mr
}

func TestStatsCache_PutThenGet(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	day := calendar.New(2026, time.March, 10)
	snap := model.StatsSnapshot{Experience: 105, Coins: 35, Level: 2, ProgressPercent: 3, CurrentStreak: 4, LongestStreak: 9}

	_, ok := c.Get(ctx, 7, day)
	assert.False(t, ok)

	c.Put(ctx, 7, day, snap)
	got, ok := c.Get(ctx, 7, day)
	require.True(t, ok)
	assert.Equal(t, snap, got)

	assert.True(t, mr.Exists("test:7:2026-03-10"))
	assert.Equal(t, time.Minute, mr.TTL("test:7:2026-03-10"))
}

func TestStatsCache_KeyedByDay(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	day := calendar.New(2026, time.March, 10)
	c.Put(ctx, 7, day, model.StatsSnapshot{Level: 1, CurrentStreak: 1})

	_, ok := c.Get(ctx, 7, day.AddDays(1))
	assert.False(t, ok)
	_, ok = c.Get(ctx, 8, day)
	assert.False(t, ok)
}

func TestStatsCache_ExpiresAndSurvivesGarbage(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	day := calendar.New(2026, time.March, 10)
	c.Put(ctx, 7, day, model.StatsSnapshot{Level: 1})

	mr.FastForward(2 * time.Minute)
	_, ok := c.Get(ctx, 7, day)
	assert.False(t, ok)

	require.NoError(t, mr.Set("test:7:2026-03-10", "{not json"))
	_, ok = c.Get(ctx, 7, day)
	assert.False(t, ok)
}

func TestStatsCache_NilIsAlwaysMiss(t *testing.T) {
	var c *StatsCache
	assert.Nil(t, NewStatsCache(nil, "", 0, nil))
	c.Put(context.Background(), 1, calendar.New(2026, 1, 1), model.StatsSnapshot{})
	_, ok := c.Get(context.Background(), 1, calendar.New(2026, 1, 1))
	assert.False(t, ok)
}
