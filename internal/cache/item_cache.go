package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"sweetshop/internal/model"
)

const (
	itemListKey       = "sweetshop:items:all"
	itemGenerationKey = "sweetshop:items:gen"
)

// storeIfCurrent writes the listing only while the generation read before the
// database query is still current. KEYS: list, generation. ARGV: generation,
// payload, ttl in milliseconds.
const storeIfCurrent = `local current = redis.call('GET', KEYS[2])
if (current or '0') ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1`

// ItemCache keeps the full catalog listing in Redis. Any mutation of the
// catalog must call Invalidate, which bumps the generation so a listing read
// before the mutation can no longer be stored.
type ItemCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewItemCache(client redis.Cmdable, ttl time.Duration) *ItemCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &ItemCache{client: client, ttl: ttl}
}

// Load reports ok=false on a cache miss.
func (c *ItemCache) Load(ctx context.Context) ([]model.Item, bool, error) {
	raw, err := c.client.Get(ctx, itemListKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get cached items: %w", err)
	}

	var items []model.Item
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false, fmt.Errorf("decode cached items: %w", err)
	}
	return items, true, nil
}

// Generation returns the current invalidation counter. Pass it to Store
// together with a listing read after this call.
func (c *ItemCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, itemGenerationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get cache generation: %w", err)
	}
	return gen, nil
}

// Store caches items unless Invalidate ran since gen was read, in which case
// it reports stored=false and leaves the cache empty.
func (c *ItemCache) Store(ctx context.Context, items []model.Item, gen int64) (bool, error) {
	raw, err := json.Marshal(items)
	if err != nil {
		return false, fmt.Errorf("encode items: %w", err)
	}

	stored, err := c.client.Eval(ctx, storeIfCurrent,
		[]string{itemListKey, itemGenerationKey},
		strconv.FormatInt(gen, 10), string(raw), c.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("set cached items: %w", err)
	}
	return stored == 1, nil
}

func (c *ItemCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, itemGenerationKey).Err(); err != nil {
		return fmt.Errorf("bump cache generation: %w", err)
	}
	if err := c.client.Del(ctx, itemListKey).Err(); err != nil {
		return fmt.Errorf("invalidate cached items: %w", err)
	}
	return nil
}
