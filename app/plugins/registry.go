// Package plugins maps backend names of the configuration to constructors.
package plugins

import (
	"fmt"
	"sort"

	"github.com/kilianp07/crewplan/config"
	"github.com/kilianp07/crewplan/core/cache"
	"github.com/kilianp07/crewplan/core/logger"
	"github.com/kilianp07/crewplan/core/store"
	infraevents "github.com/kilianp07/crewplan/infra/events"
	infrastore "github.com/kilianp07/crewplan/infra/store"
)

// AuditBackend stores and lists audit entries.
type AuditBackend interface {
	store.AuditStore
	store.AuditReader
}

// CacheFactory builds a cache backend. A nil backend disables caching.
type CacheFactory func(cfg config.CacheConfig) (cache.Backend, error)

// PublisherFactory builds an event publisher. A nil publisher disables the
// relay.
type PublisherFactory func(cfg config.EventsConfig, log logger.Logger) (infraevents.Publisher, error)

// AuditFactory builds an audit backend. db is the primary SQL store.
type AuditFactory func(cfg config.AuditConfig, db *infrastore.SQLStore) (AuditBackend, error)

var (
	CacheBackends = map[string]CacheFactory{}
	Publishers    = map[string]PublisherFactory{}
	AuditStores   = map[string]AuditFactory{}
)

func RegisterCache(name string, f CacheFactory)         { CacheBackends[name] = f }
func RegisterPublisher(name string, f PublisherFactory) { Publishers[name] = f }
func RegisterAudit(name string, f AuditFactory)         { AuditStores[name] = f }

// NewCacheBackend builds the backend named by cfg.Backend.
func NewCacheBackend(cfg config.CacheConfig) (cache.Backend, error) {
	f, ok := CacheBackends[cfg.Backend]
	if !ok {
		return nil, unknown("cache backend", cfg.Backend, CacheBackends)
	}
	return f(cfg)
}

// NewPublisher builds the publisher named by cfg.Backend.
func NewPublisher(cfg config.EventsConfig, log logger.Logger) (infraevents.Publisher, error) {
	f, ok := Publishers[cfg.Backend]
	if !ok {
		return nil, unknown("events backend", cfg.Backend, Publishers)
	}
	return f(cfg, log)
}

// NewAuditBackend builds the audit store named by cfg.Backend.
func NewAuditBackend(cfg config.AuditConfig, db *infrastore.SQLStore) (AuditBackend, error) {
	f, ok := AuditStores[cfg.Backend]
	if !ok {
		return nil, unknown("audit backend", cfg.Backend, AuditStores)
	}
	return f(cfg, db)
}

func unknown[F any](kind, name string, m map[string]F) error {
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}
	sort.Strings(names)
	return fmt.Errorf("unknown %s %q (known: %v)", kind, name, names)
}
