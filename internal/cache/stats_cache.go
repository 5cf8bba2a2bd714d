// Package cache keeps the last-known-good stats snapshot of each user in
// Redis so repeated dashboard reads skip MySQL.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/questboard/internal/calendar"
	"github.com/iliyamo/questboard/internal/model"
)

const defaultTTL = 10 * time.Minute

// StatsCache stores model.StatsSnapshot values as JSON under
// "<prefix>:<user id>:<local date>".  Keying by date lets a lapsed streak
// read as zero on the next day without an explicit invalidation.
type StatsCache struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

// NewStatsCache returns nil when rdb is nil; a nil *StatsCache is a valid
// cache that never hits.
func NewStatsCache(rdb *redis.Client, prefix string, ttl time.Duration, logger *slog.Logger) *StatsCache {
	if rdb == nil {
		return nil
	}
	if prefix == "" {
		prefix = "stats"
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &StatsCache{rdb: rdb, prefix: prefix, ttl: ttl, logger: logger}
}

func (c *StatsCache) key(userID uint64, day calendar.Date) string {
	return fmt.Sprintf("%s:%d:%s", c.prefix, userID, day)
}

// Get reports a miss on any Redis or decoding error.
func (c *StatsCache) Get(ctx context.Context, userID uint64, day calendar.Date) (model.StatsSnapshot, bool) {
	if c == nil {
		return model.StatsSnapshot{}, false
	}
	bs, err := c.rdb.Get(ctx, c.key(userID, day)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("stats cache get failed", slog.Uint64("user_id", userID), slog.Any("error", err))
		}
		return model.StatsSnapshot{}, false
	}
	var snap model.StatsSnapshot
	if err := json.Unmarshal(bs, &snap); err != nil {
		return model.StatsSnapshot{}, false
	}
	return snap, true
}

// Put overwrites the entry.  Errors are logged only.
func (c *StatsCache) Put(ctx context.Context, userID uint64, day calendar.Date, snap model.StatsSnapshot) {
	if c == nil {
		return
	}
	bs, err := json.Marshal(snap)
	if err != nil {
		return
	}
	if err := c.rdb.SetEx(ctx, c.key(userID, day), bs, c.ttl).Err(); err != nil {
		c.logger.Warn("stats cache put failed", slog.Uint64("user_id", userID), slog.Any("error", err))
	}
}
