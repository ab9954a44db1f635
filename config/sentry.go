package config

import "time"

// SentryConfig defines settings for Sentry error monitoring. Tenant cycle
// failures are reported when DSN is set.
type SentryConfig struct {
	DSN              string        `json:"dsn"`
	Environment      string        `json:"environment"`
	TracesSampleRate float64       `json:"traces_sample_rate"`
	Release          string        `json:"release"`
	FlushTimeout     time.Duration `json:"flush_timeout"`
}

// Enabled reports whether a DSN is configured.
func (c SentryConfig) Enabled() bool { return c.DSN != "" }

// Flush returns the shutdown flush timeout.
func (c SentryConfig) Flush() time.Duration {
	if c.FlushTimeout <= 0 {
		return 2 * time.Second
	}
	return c.FlushTimeout
}
