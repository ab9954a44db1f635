package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/kilianp07/crewplan/core/model"
)

// Assignment is a crew assignment as held by MemoryStore.
type Assignment struct {
	Need   model.ReliefNeed
	Active bool
}

// MemoryStore implements every store port in memory. It enforces the pending
// proposal uniqueness the same way the SQL schema does.
type MemoryStore struct {
	mu          sync.RWMutex
	tenants     map[string]model.TenantConfig
	assignments []Assignment
	crew        []model.CandidateProfile
	proposals   []model.Proposal
	audit       []model.AuditLogEntry

	candidateQueries int
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tenants: map[string]model.TenantConfig{}}
}

// PutTenant adds or replaces a tenant configuration.
func (s *MemoryStore) PutTenant(c model.TenantConfig) {
	s.mu.Lock()
	s.tenants[c.TenantID] = c
	s.mu.Unlock()
}

// AddAssignment records an assignment.
func (s *MemoryStore) AddAssignment(n model.ReliefNeed, active bool) {
	s.mu.Lock()
	s.assignments = append(s.assignments, Assignment{Need: n, Active: active})
	s.mu.Unlock()
}

// AddCrew records a crew profile.
func (s *MemoryStore) AddCrew(p model.CandidateProfile) {
	s.mu.Lock()
	s.crew = append(s.crew, p)
	s.mu.Unlock()
}

func (s *MemoryStore) ListEnabled(context.Context) ([]model.TenantConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]model.TenantConfig, 0, len(s.tenants))
	for _, t := range s.tenants {
		if t.Enabled {
			res = append(res, t)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].TenantID < res[j].TenantID })
	return res, nil
}

func (s *MemoryStore) Get(_ context.Context, tenantID string) (model.TenantConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tenants[tenantID]
	if !ok {
		return model.TenantConfig{}, fmt.Errorf("tenant %s: %w", tenantID, ErrNotFound)
	}
	return t, nil
}

func (s *MemoryStore) ActiveSigningOffBefore(_ context.Context, tenantID string, cutoff time.Time) ([]model.ReliefNeed, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var res []model.ReliefNeed
	for _, a := range s.assignments {
		if !a.Active || a.Need.TenantID != tenantID || a.Need.SignOffDate.After(cutoff) {
			continue
		}
		res = append(res, a.Need)
	}
	sort.SliceStable(res, func(i, j int) bool { return res[i].SignOffDate.Before(res[j].SignOffDate) })
	return res, nil
}

func (s *MemoryStore) FindAvailable(_ context.Context, tenantID, rank string, statuses []model.CrewStatus) ([]model.CandidateProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.candidateQueries++
	allowed := make(map[model.CrewStatus]bool, len(statuses))
	for _, st := range statuses {
		allowed[st] = true
	}
	res := []model.CandidateProfile{}
	for _, p := range s.crew {
		if p.TenantID == tenantID && p.Rank == rank && allowed[p.Status] {
			res = append(res, p)
		}
	}
	return res, nil
}

// CandidateQueries returns how many times FindAvailable was called.
func (s *MemoryStore) CandidateQueries() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.candidateQueries
}

func (s *MemoryStore) HasPending(_ context.Context, reliefNeedID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hasPendingLocked(reliefNeedID), nil
}

func (s *MemoryStore) hasPendingLocked(reliefNeedID string) bool {
	for _, p := range s.proposals {
		if p.ReliefNeedID == reliefNeedID && p.Status == model.ProposalPendingReview {
			return true
		}
	}
	return false
}

func (s *MemoryStore) Insert(_ context.Context, p model.Proposal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.Status == model.ProposalPendingReview && s.hasPendingLocked(p.ReliefNeedID) {
		return ErrDuplicatePending
	}
	s.proposals = append(s.proposals, p)
	return nil
}

// Proposals returns a copy of the stored proposals.
func (s *MemoryStore) Proposals() []model.Proposal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Proposal(nil), s.proposals...)
}

// SetProposalStatus changes the status of a stored proposal, as a reviewer would.
func (s *MemoryStore) SetProposalStatus(id string, st model.ProposalStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.proposals {
		if s.proposals[i].ID == id {
			s.proposals[i].Status = st
			return nil
		}
	}
	return fmt.Errorf("proposal %s: %w", id, ErrNotFound)
}

func (s *MemoryStore) Append(_ context.Context, e model.AuditLogEntry) error {
	s.mu.Lock()
	s.audit = append(s.audit, e)
	s.mu.Unlock()
	return nil
}

// AuditEntries returns a copy of the audit log.
func (s *MemoryStore) AuditEntries() []model.AuditLogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.AuditLogEntry(nil), s.audit...)
}

func (s *MemoryStore) Query(_ context.Context, tenantID, entityID string) ([]model.AuditLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := []model.AuditLogEntry{}
	for _, e := range s.audit {
		if (tenantID == "" || e.TenantID == tenantID) && (entityID == "" || e.EntityID == entityID) {
			res = append(res, e)
		}
	}
	return res, nil
}
