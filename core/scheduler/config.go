package scheduler

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// DefaultSchedule runs every six hours.
const DefaultSchedule = "0 */6 * * *"

// SchedulerConfig defines when scheduled runs happen.
type SchedulerConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled" koanf:"enabled"`
	// Schedule is a standard five-field cron expression.
	Schedule   string `json:"schedule" yaml:"schedule" koanf:"schedule"`
	Timezone   string `json:"timezone" yaml:"timezone" koanf:"timezone"`
	RunOnStart bool   `json:"run_on_start" yaml:"run_on_start" koanf:"run_on_start"`
}

// SetDefaults applies sane defaults.
func (c *SchedulerConfig) SetDefaults() {
	if c.Schedule == "" {
		c.Schedule = DefaultSchedule
	}
	if c.Timezone == "" {
		c.Timezone = "UTC"
	}
}

// Validate checks the schedule expression and timezone.
func (c SchedulerConfig) Validate() error {
	if _, err := cron.ParseStandard(c.Schedule); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", c.Schedule, err)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return nil
}

// LoadConfig loads SchedulerConfig from a JSON or YAML file.
func LoadConfig(path string) (SchedulerConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return SchedulerConfig{}, err
	}
	defer f.Close()
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	return DecodeConfig(f, ext)
}

// DecodeConfig reads from r to decode a SchedulerConfig. Defaults are
// applied and the result validated.
func DecodeConfig(r io.Reader, format string) (SchedulerConfig, error) {
	var cfg SchedulerConfig
	switch strings.ToLower(format) {
	case "yaml", "yml":
		if err := yaml.NewDecoder(r).Decode(&cfg); err != nil {
			return cfg, err
		}
	case "json":
		if err := json.NewDecoder(r).Decode(&cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config format: %s", format)
	}
	cfg.SetDefaults()
	return cfg, cfg.Validate()
}
