package plugins

import (
	"path/filepath"
	"testing"

	"github.com/kilianp07/crewplan/config"
	infraaudit "github.com/kilianp07/crewplan/infra/audit"
	infracache "github.com/kilianp07/crewplan/infra/cache"
)

func TestBuiltinsRegistered(t *testing.T) {
	for _, name := range []string{"none", "memory", "redis"} {
		if _, ok := CacheBackends[name]; !ok {
			t.Fatalf("cache backend %s not registered", name)
		}
	}
	for _, name := range []string{"none", "kafka", "mqtt"} {
		if _, ok := Publishers[name]; !ok {
			t.Fatalf("publisher %s not registered", name)
		}
	}
	for _, name := range []string{"sql", "jsonl"} {
		if _, ok := AuditStores[name]; !ok {
			t.Fatalf("audit store %s not registered", name)
		}
	}
}

func TestNewCacheBackend(t *testing.T) {
	b, err := NewCacheBackend(config.CacheConfig{Backend: "memory"})
	if err != nil {
		t.Fatalf("memory: %v", err)
	}
	if _, ok := b.(*infracache.MemoryBackend); !ok {
		t.Fatalf("unexpected backend %T", b)
	}
	if b, err := NewCacheBackend(config.CacheConfig{Backend: "none"}); err != nil || b != nil {
		t.Fatalf("none should yield no backend, got %T %v", b, err)
	}
	if _, err := NewCacheBackend(config.CacheConfig{Backend: "memcached"}); err == nil {
		t.Fatalf("expected unknown backend error")
	}
}

func TestNewPublisher(t *testing.T) {
	p, err := NewPublisher(config.EventsConfig{Backend: "none"}, nil)
	if err != nil || p != nil {
		t.Fatalf("none should yield no publisher, got %T %v", p, err)
	}
	if _, err := NewPublisher(config.EventsConfig{Backend: "kafka"}, nil); err == nil {
		t.Fatalf("expected error without brokers")
	}
}

func TestNewAuditBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	a, err := NewAuditBackend(config.AuditConfig{Backend: "jsonl", Path: path, MaxSizeMB: 1}, nil)
	if err != nil {
		t.Fatalf("jsonl: %v", err)
	}
	if _, ok := a.(*infraaudit.JSONLStore); !ok {
		t.Fatalf("unexpected backend %T", a)
	}
	if _, err := NewAuditBackend(config.AuditConfig{Backend: "sql"}, nil); err == nil {
		t.Fatalf("expected error without database")
	}
}
