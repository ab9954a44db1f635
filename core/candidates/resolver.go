// Package candidates resolves the pool of crew members able to relieve a
// given rank, fronted by a cache.
package candidates

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/crewplan/core/cache"
	"github.com/kilianp07/crewplan/core/logger"
	"github.com/kilianp07/crewplan/core/model"
	"github.com/kilianp07/crewplan/core/store"
)

// DefaultTTL is how long a resolved pool stays cached.
const DefaultTTL = 1800 * time.Second

// Resolver returns eligible candidates for a tenant and rank.
type Resolver struct {
	store store.CandidateStore
	cache cache.Cache
	ttl   time.Duration
	log   logger.Logger
}

// NewResolver creates a Resolver. A nil cache disables caching; a zero ttl
// selects DefaultTTL.
func NewResolver(s store.CandidateStore, c cache.Cache, ttl time.Duration, log logger.Logger) *Resolver {
	if c == nil {
		c = cache.Nop{}
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Resolver{store: s, cache: c, ttl: ttl, log: log}
}

// Key returns the cache key of the pool for tenant and rank.
func Key(tenantID, rank string) string {
	return fmt.Sprintf("candidates:%s:%s", tenantID, rank)
}

// Resolve returns the candidates matching the tenant, the exact rank and an
// available status. Empty pools are cached too.
func (r *Resolver) Resolve(ctx context.Context, tenantID, rank string) ([]model.CandidateProfile, error) {
	key := Key(tenantID, rank)
	if pool, ok := cache.GetJSON[[]model.CandidateProfile](ctx, r.cache, key); ok {
		return eligible(pool, rank), nil
	}
	pool, err := r.store.FindAvailable(ctx, tenantID, rank, model.AvailableStatuses)
	if err != nil {
		return nil, &model.DataAccessError{TenantID: tenantID, Op: "resolve candidates for " + rank, Err: err}
	}
	pool = eligible(pool, rank)
	if err := cache.SetJSON(ctx, r.cache, key, pool, r.ttl); err != nil {
		r.log.Debugf("candidate pool not cached: %v", err)
	}
	return pool, nil
}

// eligible drops members violating the rank or status requirement. The
// result is never nil so that empty pools round-trip through the cache.
func eligible(pool []model.CandidateProfile, rank string) []model.CandidateProfile {
	out := make([]model.CandidateProfile, 0, len(pool))
	for _, p := range pool {
		if p.Rank == rank && p.Status.IsAvailable() {
			out = append(out, p)
		}
	}
	return out
}
