package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBackend_TTL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemoryBackend()
	m.SetClock(func() time.Time { return now })

	require.NoError(t, m.Set(ctx, "k", []byte("v"), time.Minute))
	v, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), v)

	now = now.Add(time.Minute)
	_, ok, err = m.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok, "entry should expire at its deadline")
	assert.Equal(t, 0, m.Len())
}

func TestMemoryBackend_NoTTLAndDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryBackend()
	require.NoError(t, m.Set(ctx, "k", []byte("v"), 0))
	_, ok, _ := m.Get(ctx, "k")
	assert.True(t, ok)
	require.NoError(t, m.Del(ctx, "k"))
	_, ok, _ = m.Get(ctx, "k")
	assert.False(t, ok)
	assert.NoError(t, m.Ping(ctx))
}

func TestMemoryBackend_CopiesValues(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryBackend()
	in := []byte("abc")
	require.NoError(t, m.Set(ctx, "k", in, time.Minute))
	in[0] = 'x'
	out, _, _ := m.Get(ctx, "k")
	assert.Equal(t, "abc", string(out))
}

func TestRedisBackend_Unreachable(t *testing.T) {
	r := NewRedisBackend(RedisConfig{Addr: "127.0.0.1:1", TimeoutMS: 50})
	defer func() { _ = r.Close() }()
	ctx := context.Background()
	if err := r.Ping(ctx); err == nil {
		t.Fatalf("expected ping error on closed port")
	}
	if _, _, err := r.Get(ctx, "k"); err == nil {
		t.Fatalf("expected get error on closed port")
	}
}
