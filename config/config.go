package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/crewplan/core/metrics"
	"github.com/kilianp07/crewplan/core/scheduler"
)

// EnvPrefix prefixes environment overrides. Nested keys are separated by a
// double underscore: CREWPLAN_DATABASE__DSN sets database.dsn.
const EnvPrefix = "CREWPLAN_"

type Config struct {
	Database  DatabaseConfig            `json:"database"`
	Cache     CacheConfig               `json:"cache"`
	Reasoning ReasoningConfig           `json:"reasoning"`
	Scheduler scheduler.SchedulerConfig `json:"scheduler"`
	HTTP      HTTPConfig                `json:"http"`
	Metrics   metrics.Config            `json:"metrics"`
	Events    EventsConfig              `json:"events"`
	Audit     AuditConfig               `json:"audit"`
	Logging   LoggingConfig             `json:"logging"`
	Sentry    SentryConfig              `json:"sentry"`
}

// Load reads the YAML or JSON file at path, applies environment overrides,
// defaults and validation. An empty path loads from the environment only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, EnvPrefix)
		return strings.ReplaceAll(strings.ToLower(s), "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults applies the defaults of every section.
func (c *Config) SetDefaults() {
	c.Database.SetDefaults()
	c.Cache.SetDefaults()
	c.Reasoning.SetDefaults()
	c.Scheduler.SetDefaults()
	c.HTTP.SetDefaults()
	if len(c.Metrics.Sinks) == 0 {
		c.Metrics.Sinks = DefaultMetricsSinks()
	}
	c.Events.SetDefaults()
	c.Audit.SetDefaults()
	c.Logging.SetDefaults()
}

// Validate checks every section and names the first invalid one.
func (c Config) Validate() error {
	sections := []struct {
		name string
		v    interface{ Validate() error }
	}{
		{"database", c.Database},
		{"cache", c.Cache},
		{"reasoning", c.Reasoning},
		{"scheduler", c.Scheduler},
		{"http", c.HTTP},
		{"events", c.Events},
		{"audit", c.Audit},
		{"logging", c.Logging},
	}
	for _, s := range sections {
		if err := s.v.Validate(); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return nil
}
