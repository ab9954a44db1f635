package cache

import (
	"context"
	"encoding/json"
	"time"
)

// GetJSON decodes the cached value for key into a T. Undecodable entries are
// treated as misses.
func GetJSON[T any](ctx context.Context, c Cache, key string) (T, bool) {
	var out T
	b, ok := c.Get(ctx, key)
	if !ok {
		return out, false
	}
	if err := json.Unmarshal(b, &out); err != nil {
		var zero T
		return zero, false
	}
	return out, true
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, c Cache, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return &CacheError{Op: "encode", Key: key, Err: err}
	}
	return c.Set(ctx, key, b, ttl)
}
