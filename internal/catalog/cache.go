package catalog

import (
	"context"
	"encoding/json"
	"time"

	"ordersvc/internal/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// cachedClient is a read-through cache in front of another Client.
// Only resolved products are cached, so unknown ids always reach the
// underlying client and fail there. Redis being down degrades to a
// plain pass-through.
type cachedClient struct {
	next Client
	rdb  *redis.Client
	ttl  time.Duration
}

func NewCachedClient(next Client, rdb *redis.Client, ttl time.Duration) Client {
	return &cachedClient{
		next: next,
		rdb:  rdb,
		ttl:  ttl,
	}
}

func cacheKey(id string) string {
	return "catalog:product:" + id
}

func (c *cachedClient) Validate(ctx context.Context, ids []string) ([]Product, error) {
	log := logger.FromCtx(ctx)

	products := make([]Product, 0, len(ids))
	missing := make([]string, 0, len(ids))

	for _, id := range ids {
		raw, err := c.rdb.Get(ctx, cacheKey(id)).Result()
		if err != nil {
			if err != redis.Nil {
				log.Warn("catalog cache read failed", zap.String("product_id", id), zap.Error(err))
			}
			missing = append(missing, id)
			continue
		}

		var p Product
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			log.Warn("corrupt catalog cache entry", zap.String("product_id", id), zap.Error(err))
			missing = append(missing, id)
			continue
		}
		products = append(products, p)
	}

	if len(missing) == 0 {
		return products, nil
	}

	fetched, err := c.next.Validate(ctx, missing)
	if err != nil {
		return nil, err
	}

	for _, p := range fetched {
		data, err := json.Marshal(p)
		if err != nil {
			continue
		}
		if err := c.rdb.Set(ctx, cacheKey(p.ID), data, c.ttl).Err(); err != nil {
			log.Warn("catalog cache write failed", zap.String("product_id", p.ID), zap.Error(err))
		}
	}

	return append(products, fetched...), nil
}
