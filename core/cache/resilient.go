package cache

import (
	"context"
	"sync"
	"time"

	"github.com/kilianp07/crewplan/core/logger"
)

// State is the connection state tracked by Resilient.
type State int

const (
	Connected State = iota
	Disconnected
)

func (s State) String() string {
	if s == Connected {
		return "connected"
	}
	return "disconnected"
}

// DefaultCooldown is how long a failed backend is left alone before it is
// probed again.
const DefaultCooldown = 30 * time.Second

// Resilient wraps a Backend and degrades every failure to "no cache". After a
// failure the backend is marked disconnected; once the cooldown has elapsed
// the next operation probes it with Ping and reconnects on success.
type Resilient struct {
	backend  Backend
	cooldown time.Duration
	log      logger.Logger
	now      func() time.Time

	mu      sync.Mutex
	state   State
	retryAt time.Time
}

// NewResilient wraps backend. A nil backend yields a permanently
// disconnected cache.
func NewResilient(backend Backend, cooldown time.Duration, log logger.Logger) *Resilient {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	r := &Resilient{backend: backend, cooldown: cooldown, log: log, now: time.Now}
	if backend == nil {
		r.state = Disconnected
	}
	cacheUp.Set(boolGauge(r.state == Connected))
	return r
}

// State returns the current connection state.
func (r *Resilient) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Get returns the cached value. Failures and disconnection are misses.
func (r *Resilient) Get(ctx context.Context, key string) ([]byte, bool) {
	if !r.available(ctx) {
		cacheMisses.Inc()
		return nil, false
	}
	v, ok, err := r.backend.Get(ctx, key)
	if err != nil {
		r.fail("get", key, err)
		cacheMisses.Inc()
		return nil, false
	}
	if !ok {
		cacheMisses.Inc()
		return nil, false
	}
	cacheHits.Inc()
	return v, true
}

// Set stores value under key with the given TTL.
func (r *Resilient) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if !r.available(ctx) {
		return &CacheError{Op: "set", Key: key, Err: ErrUnavailable}
	}
	if err := r.backend.Set(ctx, key, value, ttl); err != nil {
		r.fail("set", key, err)
		return &CacheError{Op: "set", Key: key, Err: err}
	}
	return nil
}

// Del removes key.
func (r *Resilient) Del(ctx context.Context, key string) error {
	if !r.available(ctx) {
		return &CacheError{Op: "del", Key: key, Err: ErrUnavailable}
	}
	if err := r.backend.Del(ctx, key); err != nil {
		r.fail("del", key, err)
		return &CacheError{Op: "del", Key: key, Err: err}
	}
	return nil
}

// available reports whether the backend may be used, probing it when the
// cooldown of a previous failure has elapsed.
func (r *Resilient) available(ctx context.Context) bool {
	if r.backend == nil {
		return false
	}
	r.mu.Lock()
	if r.state == Connected {
		r.mu.Unlock()
		return true
	}
	if r.now().Before(r.retryAt) {
		r.mu.Unlock()
		return false
	}
	// push retryAt forward so concurrent callers do not all probe
	r.retryAt = r.now().Add(r.cooldown)
	r.mu.Unlock()

	if err := r.backend.Ping(ctx); err != nil {
		cacheFailures.WithLabelValues("ping").Inc()
		r.log.Debugf("cache still unavailable: %v", err)
		return false
	}
	r.mu.Lock()
	r.state = Connected
	r.mu.Unlock()
	cacheUp.Set(1)
	r.log.Infof("cache reconnected")
	return true
}

func (r *Resilient) fail(op, key string, err error) {
	cacheFailures.WithLabelValues(op).Inc()
	r.mu.Lock()
	wasConnected := r.state == Connected
	r.state = Disconnected
	r.retryAt = r.now().Add(r.cooldown)
	r.mu.Unlock()
	cacheUp.Set(0)
	if wasConnected {
		r.log.Warnf("cache %s %q failed, continuing without cache: %v", op, key, err)
	}
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
