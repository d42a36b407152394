package shipment

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	StatusCacheKeyPrefix = "shipment:status:"
	statusCacheTTL       = 3 * time.Second
)

func statusCacheKey(id string) string {
	return StatusCacheKeyPrefix + id
}

// StatusCache serves polled status snapshots. Concurrent misses for the same
// shipment share one load.
type StatusCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	sf     *singleflight.Group
	logger *zap.Logger
}

func NewStatusCache(rdb *redis.Client, logger *zap.Logger) *StatusCache {
	if logger == nil {
		logger = zap.L()
	}
	return &StatusCache{
		rdb:    rdb,
		ttl:    statusCacheTTL,
		sf:     &singleflight.Group{},
		logger: logger.Named("shipment.status_cache"),
	}
}

func (c *StatusCache) Get(ctx context.Context, id string, load func(ctx context.Context) (StatusSnapshot, error)) (StatusSnapshot, error) {
	key := statusCacheKey(id)

	if c.rdb != nil {
		if cached, err := c.rdb.Get(ctx, key).Result(); err == nil {
			var snap StatusSnapshot
			if json.Unmarshal([]byte(cached), &snap) == nil {
				return snap, nil
			}
		}
	}

	v, err, _ := c.sf.Do(key, func() (interface{}, error) {
		snap, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if c.rdb != nil {
			if body, err := json.Marshal(snap); err == nil {
				if err := c.rdb.Set(ctx, key, body, c.ttl).Err(); err != nil {
					c.logger.Warn("cache status snapshot failed", zap.String("shipment_id", id), zap.Error(err))
				}
			}
		}
		return snap, nil
	})
	if err != nil {
		return StatusSnapshot{}, err
	}
	return v.(StatusSnapshot), nil
}

func (c *StatusCache) Invalidate(ctx context.Context, id string) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, statusCacheKey(id)).Err(); err != nil {
		c.logger.Error("failed to invalidate shipment status cache",
			zap.String("shipment_id", id),
			zap.Error(err),
		)
	}
}
