package model

import "fmt"

// ConfigError reports that a tenant is not configured for relief planning.
// It is returned to manual trigger callers and never retried.
type ConfigError struct {
	TenantID string
	Reason   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("tenant %s: relief planning not allowed: %s", e.TenantID, e.Reason)
}

// DataAccessError reports a failed read of tenant configuration or relief
// needs. It aborts the current tenant's cycle only.
type DataAccessError struct {
	TenantID string
	Op       string
	Err      error
}

func (e *DataAccessError) Error() string {
	return fmt.Sprintf("tenant %s: %s: %v", e.TenantID, e.Op, e.Err)
}

func (e *DataAccessError) Unwrap() error { return e.Err }
