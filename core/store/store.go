// Package store defines the persistence ports of the planning engine.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/kilianp07/crewplan/core/model"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicatePending is returned by ProposalStore.Insert when a pending
	// proposal already exists for the relief need.
	ErrDuplicatePending = errors.New("pending proposal already exists for relief need")
)

// TenantStore reads tenant AI configuration.
type TenantStore interface {
	// ListEnabled returns the tenants with AI enabled, ordered by tenant id.
	ListEnabled(ctx context.Context) ([]model.TenantConfig, error)
	Get(ctx context.Context, tenantID string) (model.TenantConfig, error)
}

// ReliefStore reads crew assignments.
type ReliefStore interface {
	// ActiveSigningOffBefore returns the active assignments of the tenant whose
	// sign-off date is at or before cutoff, ordered by sign-off date.
	ActiveSigningOffBefore(ctx context.Context, tenantID string, cutoff time.Time) ([]model.ReliefNeed, error)
}

// CandidateStore reads crew profiles.
type CandidateStore interface {
	FindAvailable(ctx context.Context, tenantID, rank string, statuses []model.CrewStatus) ([]model.CandidateProfile, error)
}

// ProposalStore persists assignment proposals. Implementations must enforce
// at most one pending proposal per relief need and report violations with
// ErrDuplicatePending.
type ProposalStore interface {
	HasPending(ctx context.Context, reliefNeedID string) (bool, error)
	Insert(ctx context.Context, p model.Proposal) error
}

// AuditStore appends decision records.
type AuditStore interface {
	Append(ctx context.Context, e model.AuditLogEntry) error
}

// AuditReader lists decision records. Empty filters match everything;
// entries are returned oldest first.
type AuditReader interface {
	Query(ctx context.Context, tenantID, entityID string) ([]model.AuditLogEntry, error)
}
