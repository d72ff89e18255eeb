package library

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultCacheTTL = 5 * time.Minute

// PageKey identifies a cached list page. Version is bumped on every save by
// the owner so older pages are never read again.
type PageKey struct {
	Owner    uuid.UUID
	Wisebase string
	Page     int
	PageSize int
	Version  int64
}

// PageCache caches list pages per owner.
type PageCache interface {
	Version(ctx context.Context, owner uuid.UUID) (int64, error)
	Get(ctx context.Context, key PageKey) (*Page, error)
	Set(ctx context.Context, key PageKey, page Page) error
	Invalidate(ctx context.Context, owner uuid.UUID) error
}

// RedisPageCache keeps list pages in Redis.
type RedisPageCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ PageCache = (*RedisPageCache)(nil)

func NewRedisPageCache(client *redis.Client, ttl time.Duration) *RedisPageCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &RedisPageCache{client: client, ttl: ttl}
}

func versionKey(owner uuid.UUID) string {
	return "quizlib:ver:" + owner.String()
}

func (k PageKey) String() string {
	return fmt.Sprintf("quizlib:page:%s:%s:v%d:%d:%d", k.Owner, k.Wisebase, k.Version, k.Page, k.PageSize)
}

func (c *RedisPageCache) Version(ctx context.Context, owner uuid.UUID) (int64, error) {
	v, err := c.client.Get(ctx, versionKey(owner)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

func (c *RedisPageCache) Get(ctx context.Context, key PageKey) (*Page, error) {
	data, err := c.client.Get(ctx, key.String()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var page Page
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *RedisPageCache) Set(ctx context.Context, key PageKey, page Page) error {
	data, err := json.Marshal(page)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key.String(), data, c.ttl).Err()
}

// Invalidate bumps the owner's version; stale pages expire on their own.
func (c *RedisPageCache) Invalidate(ctx context.Context, owner uuid.UUID) error {
	return c.client.Incr(ctx, versionKey(owner)).Err()
}
