package config

import (
	"fmt"
	"time"

	"github.com/kilianp07/crewplan/auth"
	"github.com/kilianp07/crewplan/core/factory"
	"github.com/kilianp07/crewplan/infra/events"
)

// DatabaseConfig selects the SQL backend.
type DatabaseConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver string `json:"driver"`
	DSN    string `json:"dsn"`
	// Migrate applies the embedded schema on startup.
	Migrate bool `json:"migrate"`
}

func (c *DatabaseConfig) SetDefaults() {
	if c.Driver == "" {
		c.Driver = "sqlite"
	}
	if c.DSN == "" && c.Driver == "sqlite" {
		c.DSN = "crewplan.db"
	}
}

func (c DatabaseConfig) Validate() error {
	if c.Driver != "sqlite" && c.Driver != "postgres" {
		return fmt.Errorf("unknown driver %s", c.Driver)
	}
	if c.DSN == "" {
		return fmt.Errorf("dsn is required")
	}
	return nil
}

// RedisConfig holds the redis connection settings.
type RedisConfig struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

// CacheConfig configures the candidate pool cache.
type CacheConfig struct {
	// Backend is "memory", "redis" or "none".
	Backend string        `json:"backend"`
	TTL     time.Duration `json:"ttl"`
	Redis   RedisConfig   `json:"redis"`
	// ReconnectCooldown is the wait before a disconnected backend is probed
	// again.
	ReconnectCooldown time.Duration `json:"reconnect_cooldown"`
}

func (c *CacheConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "memory"
	}
	if c.TTL <= 0 {
		c.TTL = 30 * time.Minute
	}
	if c.ReconnectCooldown <= 0 {
		c.ReconnectCooldown = 30 * time.Second
	}
	if c.Backend == "redis" && c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
}

func (c CacheConfig) Validate() error {
	switch c.Backend {
	case "memory", "redis", "none":
		return nil
	default:
		return fmt.Errorf("unknown backend %s", c.Backend)
	}
}

// ReasoningConfig configures the scoring provider. An empty URL scores every
// candidate with the fallback heuristic.
type ReasoningConfig struct {
	URL            string        `json:"url"`
	Model          string        `json:"model"`
	APIKey         string        `json:"api_key"`
	OAuth2         auth.Conf     `json:"oauth2"`
	Timeout        time.Duration `json:"timeout"`
	MaxConcurrency int           `json:"max_concurrency"`
}

func (c *ReasoningConfig) SetDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = 20 * time.Second
	}
	if c.MaxConcurrency <= 0 {
		c.MaxConcurrency = 4
	}
}

func (c ReasoningConfig) Validate() error {
	if c.OAuth2.Enabled() && c.OAuth2.ClientID == "" {
		return fmt.Errorf("oauth2.client_id is required with oauth2.token_url")
	}
	return nil
}

// HTTPConfig configures the trigger API.
type HTTPConfig struct {
	Address      string        `json:"address"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	// Token protects the /api routes when set.
	Token string `json:"token"`
}

func (c *HTTPConfig) SetDefaults() {
	if c.Address == "" {
		c.Address = ":8080"
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 10 * time.Second
	}
	if c.WriteTimeout <= 0 {
		// A manual run scores a whole tenant before answering.
		c.WriteTimeout = 5 * time.Minute
	}
}

func (c HTTPConfig) Validate() error {
	if c.Address == "" {
		return fmt.Errorf("address is required")
	}
	return nil
}

// EventsConfig selects the broker planning events are relayed to.
type EventsConfig struct {
	// Backend is "none", "kafka" or "mqtt".
	Backend string             `json:"backend"`
	Topics  events.Topics      `json:"topics"`
	Kafka   events.KafkaConfig `json:"kafka"`
	MQTT    events.MQTTConfig  `json:"mqtt"`
}

func (c *EventsConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "none"
	}
}

func (c EventsConfig) Validate() error {
	switch c.Backend {
	case "none":
	case "kafka":
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka.brokers is required")
		}
	case "mqtt":
		if c.MQTT.Broker == "" {
			return fmt.Errorf("mqtt.broker is required")
		}
	default:
		return fmt.Errorf("unknown backend %s", c.Backend)
	}
	return nil
}

// DefaultMetricsSinks exposes cycle metrics on the Prometheus endpoint.
func DefaultMetricsSinks() []factory.ModuleConfig {
	return []factory.ModuleConfig{{Type: "prometheus"}}
}
