package cache

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"
)

// GetOrLoadJSON 带 JSON 编解码的读缓存。TTL 加最多 10% 抖动，
// 避免同一批列表页在同一秒集体过期打到 DB。
func GetOrLoadJSON[T any](
	c *Cache,
	ctx context.Context,
	key string,
	ttl time.Duration,
	load func(ctx context.Context) (*T, error),
) (*T, error) {
	if ttl > time.Second {
		ttl += time.Duration(rand.Int63n(int64(ttl) / 10))
	}
	b, err := c.GetOrLoad(ctx, key, ttl, func(ctx context.Context) ([]byte, error) {
		v, e := load(ctx)
		if e != nil {
			return nil, e
		}
		return json.Marshal(v)
	})
	if err != nil {
		return nil, err
	}
	var out T
	if e := json.Unmarshal(b, &out); e != nil {
		return nil, e
	}
	return &out, nil
}
