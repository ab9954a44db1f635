package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

//nolint:gocyclo
func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `database:
  driver: "postgres"
  dsn: "postgres://crewplan@localhost/crewplan?sslmode=disable"
  migrate: true
cache:
  backend: "redis"
  ttl: "10m"
  redis:
    addr: "redis:6379"
    db: 2
reasoning:
  url: "https://llm.example.com/v1"
  model: "planner"
  api_key: "secret"
  timeout: "5s"
  max_concurrency: 8
scheduler:
  enabled: true
  schedule: "*/30 * * * *"
events:
  backend: "kafka"
  kafka:
    brokers: ["kafka:9092"]
  topics:
    proposals: "relief.proposals"
metrics:
  sinks:
    - type: "nop"
audit:
  backend: "jsonl"
  path: "/var/log/crewplan/audit.jsonl"
  max_backups: 5
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"database.driver", cfg.Database.Driver, "postgres"},
		{"database.migrate", cfg.Database.Migrate, true},
		{"cache.backend", cfg.Cache.Backend, "redis"},
		{"cache.ttl", cfg.Cache.TTL, 10 * time.Minute},
		{"cache.redis.addr", cfg.Cache.Redis.Addr, "redis:6379"},
		{"cache.redis.db", cfg.Cache.Redis.DB, 2},
		{"cache.reconnect_cooldown", cfg.Cache.ReconnectCooldown, 30 * time.Second},
		{"reasoning.model", cfg.Reasoning.Model, "planner"},
		{"reasoning.timeout", cfg.Reasoning.Timeout, 5 * time.Second},
		{"reasoning.max_concurrency", cfg.Reasoning.MaxConcurrency, 8},
		{"scheduler.enabled", cfg.Scheduler.Enabled, true},
		{"scheduler.schedule", cfg.Scheduler.Schedule, "*/30 * * * *"},
		{"scheduler.timezone", cfg.Scheduler.Timezone, "UTC"},
		{"events.backend", cfg.Events.Backend, "kafka"},
		{"events.kafka.brokers", strings.Join(cfg.Events.Kafka.Brokers, ","), "kafka:9092"},
		{"events.topics.proposals", cfg.Events.Topics.Proposals, "relief.proposals"},
		{"metrics_sink", len(cfg.Metrics.Sinks) == 1 && cfg.Metrics.Sinks[0].Type == "nop", true},
		{"audit.max_backups", cfg.Audit.MaxBackups, 5},
		{"http.address", cfg.HTTP.Address, ":8080"},
		{"logging.level", cfg.Logging.Level, "info"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: %v", c.name, c.got)
		}
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{"database":{"driver":"sqlite","dsn":"a.db"}}`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CREWPLAN_DATABASE__DSN", "b.db")
	t.Setenv("CREWPLAN_REASONING__MAX_CONCURRENCY", "2")
	t.Setenv("CREWPLAN_LOGGING__LEVEL", "debug")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Database.DSN != "b.db" {
		t.Errorf("dsn override not applied: %s", cfg.Database.DSN)
	}
	if cfg.Reasoning.MaxConcurrency != 2 {
		t.Errorf("max_concurrency override not applied: %d", cfg.Reasoning.MaxConcurrency)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("level override not applied: %s", cfg.Logging.Level)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Database.Driver != "sqlite" || cfg.Database.DSN == "" {
		t.Errorf("database defaults not applied: %+v", cfg.Database)
	}
	if cfg.Cache.Backend != "memory" || cfg.Cache.TTL != 30*time.Minute {
		t.Errorf("cache defaults not applied: %+v", cfg.Cache)
	}
	if cfg.Events.Backend != "none" || cfg.Audit.Backend != "sql" {
		t.Errorf("backend defaults not applied")
	}
	if len(cfg.Metrics.Sinks) != 1 || cfg.Metrics.Sinks[0].Type != "prometheus" {
		t.Errorf("metrics default not applied: %+v", cfg.Metrics.Sinks)
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"driver":   `{"database":{"driver":"mysql","dsn":"x"}}`,
		"cache":    `{"cache":{"backend":"memcached"}}`,
		"schedule": `{"scheduler":{"schedule":"every day"}}`,
		"events":   `{"events":{"backend":"kafka"}}`,
		"audit":    `{"audit":{"backend":"s3"}}`,
		"level":    `{"logging":{"level":"loud"}}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.json")
			if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			if _, err := Load(path); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestLoad_UnsupportedFormat(t *testing.T) {
	if _, err := Load("config.toml"); err == nil {
		t.Fatalf("expected error for toml")
	}
}
