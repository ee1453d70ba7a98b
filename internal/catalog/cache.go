package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/quizforge/packadmin/internal/pack"
)

const defaultCacheTTL = 5 * time.Minute

// PackCache holds persisted records keyed by pack id. A miss returns
// (nil, nil).
type PackCache interface {
	Get(ctx context.Context, id string) (*pack.Record, error)
	Set(ctx context.Context, rec pack.Record) error
	Invalidate(ctx context.Context, ids ...string) error
}

// Cache is the Redis-backed PackCache.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ PackCache = (*Cache)(nil)

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) key(id string) string {
	return "packadmin:pack:" + id
}

func (c *Cache) Get(ctx context.Context, id string) (*pack.Record, error) {
	data, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var rec pack.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *Cache) Set(ctx context.Context, rec pack.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(rec.ID), data, c.ttl).Err()
}

func (c *Cache) Invalidate(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = c.key(id)
	}
	return c.client.Del(ctx, keys...).Err()
}

type noopCache struct{}

func (noopCache) Get(context.Context, string) (*pack.Record, error) { return nil, nil }
func (noopCache) Set(context.Context, pack.Record) error            { return nil }
func (noopCache) Invalidate(context.Context, ...string) error       { return nil }
