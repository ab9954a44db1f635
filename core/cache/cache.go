package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrUnavailable is reported while the backend is marked disconnected.
var ErrUnavailable = errors.New("cache unavailable")

// Backend is a TTL key/value store. A missing key is reported with ok=false
// and a nil error.
type Backend interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

// Cache is the capability consumed by the engine. Get never fails: any
// backend problem is reported as a miss. Set and Del return a *CacheError
// which callers are expected to log and ignore.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// CacheError describes a failed cache operation.
type CacheError struct {
	Op  string
	Key string
	Err error
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("cache %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *CacheError) Unwrap() error { return e.Err }

// Nop is a Cache that stores nothing.
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, bool)               { return nil, false }
func (Nop) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (Nop) Del(context.Context, string) error                        { return nil }
