// Package store implements the planning store ports over database/sql for
// Postgres and SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/kilianp07/crewplan/core/model"
	corestore "github.com/kilianp07/crewplan/core/store"
)

// SQLStore implements every store port of core/store.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
}

var (
	_ corestore.TenantStore    = (*SQLStore)(nil)
	_ corestore.ReliefStore    = (*SQLStore)(nil)
	_ corestore.CandidateStore = (*SQLStore)(nil)
	_ corestore.ProposalStore  = (*SQLStore)(nil)
	_ corestore.AuditStore     = (*SQLStore)(nil)
	_ corestore.AuditReader    = (*SQLStore)(nil)
)

// Open connects to the database.
func Open(driver, dsn string) (*SQLStore, error) {
	d, err := ParseDialect(driver)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(d.DriverName(), dsn)
	if err != nil {
		return nil, err
	}
	if d == SQLite {
		// a single connection serialises writers and keeps the pending
		// uniqueness check consistent
		db.SetMaxOpenConns(1)
	}
	return &SQLStore{db: db, dialect: d}, nil
}

// New wraps an existing connection pool.
func New(db *sql.DB, d Dialect) *SQLStore {
	return &SQLStore{db: db, dialect: d}
}

// Ping verifies connectivity.
func (s *SQLStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// Close closes the underlying pool.
func (s *SQLStore) Close() error { return s.db.Close() }

// DB exposes the pool.
func (s *SQLStore) DB() *sql.DB { return s.db }

func (s *SQLStore) q(query string) string { return s.dialect.rebind(query) }

const tenantColumns = `tenant_id, ai_enabled, autonomy_level, min_match_score, horizon_days, features`

func scanTenant(row interface{ Scan(...any) error }) (model.TenantConfig, error) {
	var (
		c        model.TenantConfig
		autonomy string
		features string
	)
	if err := row.Scan(&c.TenantID, &c.Enabled, &autonomy, &c.MinMatchScore, &c.HorizonDays, &features); err != nil {
		return c, err
	}
	c.AutonomyLevel = model.AutonomyLevel(autonomy)
	c.Features = map[string]bool{}
	if features != "" {
		if err := json.Unmarshal([]byte(features), &c.Features); err != nil {
			return c, fmt.Errorf("tenant %s: decode features: %w", c.TenantID, err)
		}
	}
	return c, nil
}

// ListEnabled returns the tenants with AI enabled, ordered by tenant id.
func (s *SQLStore) ListEnabled(ctx context.Context) ([]model.TenantConfig, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`SELECT `+tenantColumns+` FROM tenant_ai_configs WHERE ai_enabled = ? ORDER BY tenant_id`), true)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	res := []model.TenantConfig{}
	for rows.Next() {
		c, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

// Get returns the configuration of one tenant.
func (s *SQLStore) Get(ctx context.Context, tenantID string) (model.TenantConfig, error) {
	row := s.db.QueryRowContext(ctx, s.q(`SELECT `+tenantColumns+` FROM tenant_ai_configs WHERE tenant_id = ?`), tenantID)
	c, err := scanTenant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.TenantConfig{}, fmt.Errorf("tenant %s: %w", tenantID, corestore.ErrNotFound)
	}
	return c, err
}

// PutTenant inserts or replaces a tenant configuration.
func (s *SQLStore) PutTenant(ctx context.Context, c model.TenantConfig) error {
	features, err := json.Marshal(c.Features)
	if err != nil {
		return err
	}
	if c.Features == nil {
		features = []byte("{}")
	}
	_, err = s.db.ExecContext(ctx, s.q(`INSERT INTO tenant_ai_configs (`+tenantColumns+`) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (tenant_id) DO UPDATE SET ai_enabled = excluded.ai_enabled, autonomy_level = excluded.autonomy_level,
		min_match_score = excluded.min_match_score, horizon_days = excluded.horizon_days, features = excluded.features`),
		c.TenantID, c.Enabled, string(c.AutonomyLevel), c.MinMatchScore, c.HorizonDays, string(features))
	return err
}

// ActiveSigningOffBefore returns active assignments of the tenant signing
// off at or before cutoff, ordered by sign-off date.
func (s *SQLStore) ActiveSigningOffBefore(ctx context.Context, tenantID string, cutoff time.Time) ([]model.ReliefNeed, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`SELECT id, tenant_id, vessel_id, vessel_name, crew_rank, crew_id, crew_name,
		sign_on_date, sign_off_date, contract_months
		FROM assignments WHERE tenant_id = ? AND status = ? AND sign_off_date <= ?
		ORDER BY sign_off_date, id`), tenantID, "active", cutoff.UTC())
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	res := []model.ReliefNeed{}
	for rows.Next() {
		var n model.ReliefNeed
		if err := rows.Scan(&n.AssignmentID, &n.TenantID, &n.VesselID, &n.VesselName, &n.Rank,
			&n.CurrentCrewID, &n.CurrentCrewName, &n.SignOnDate, &n.SignOffDate, &n.ContractMonths); err != nil {
			return nil, err
		}
		n.SignOnDate, n.SignOffDate = n.SignOnDate.UTC(), n.SignOffDate.UTC()
		res = append(res, n)
	}
	return res, rows.Err()
}

// AddAssignment records an assignment. status is "active" or "completed".
func (s *SQLStore) AddAssignment(ctx context.Context, n model.ReliefNeed, status string) error {
	_, err := s.db.ExecContext(ctx, s.q(`INSERT INTO assignments (id, tenant_id, vessel_id, vessel_name, crew_rank,
		crew_id, crew_name, sign_on_date, sign_off_date, contract_months, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		n.AssignmentID, n.TenantID, n.VesselID, n.VesselName, n.Rank, n.CurrentCrewID, n.CurrentCrewName,
		n.SignOnDate.UTC(), n.SignOffDate.UTC(), n.ContractMonths, status)
	return err
}

// FindAvailable returns tenant crew of exactly rank whose status is one of
// statuses, ordered by crew id.
func (s *SQLStore) FindAvailable(ctx context.Context, tenantID, rank string, statuses []model.CrewStatus) ([]model.CandidateProfile, error) {
	res := []model.CandidateProfile{}
	if len(statuses) == 0 {
		return res, nil
	}
	args := []any{tenantID, rank}
	marks := make([]string, len(statuses))
	for i, st := range statuses {
		marks[i] = "?"
		args = append(args, string(st))
	}
	rows, err := s.db.QueryContext(ctx, s.q(`SELECT id, tenant_id, full_name, crew_rank, nationality, status, available_from
		FROM crew_profiles WHERE tenant_id = ? AND crew_rank = ? AND status IN (`+strings.Join(marks, ", ")+`)
		ORDER BY id`), args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var (
			p      model.CandidateProfile
			status string
			from   sql.NullTime
		)
		if err := rows.Scan(&p.CrewID, &p.TenantID, &p.FullName, &p.Rank, &p.Nationality, &status, &from); err != nil {
			return nil, err
		}
		p.Status = model.CrewStatus(status)
		if from.Valid {
			t := from.Time.UTC()
			p.AvailableFrom = &t
		}
		res = append(res, p)
	}
	return res, rows.Err()
}

// AddCrew records a crew profile.
func (s *SQLStore) AddCrew(ctx context.Context, p model.CandidateProfile) error {
	var from any
	if p.AvailableFrom != nil {
		from = p.AvailableFrom.UTC()
	}
	_, err := s.db.ExecContext(ctx, s.q(`INSERT INTO crew_profiles (id, tenant_id, full_name, crew_rank, nationality, status, available_from)
		VALUES (?, ?, ?, ?, ?, ?, ?)`),
		p.CrewID, p.TenantID, p.FullName, p.Rank, p.Nationality, string(p.Status), from)
	return err
}

// HasPending reports whether a pending proposal exists for the relief need.
func (s *SQLStore) HasPending(ctx context.Context, reliefNeedID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, s.q(`SELECT COUNT(*) FROM proposals WHERE relief_need_id = ? AND status = ?`),
		reliefNeedID, string(model.ProposalPendingReview)).Scan(&n)
	return n > 0, err
}

// Insert stores a proposal. A second pending proposal for the same relief
// need is rejected by the partial unique index and reported as
// corestore.ErrDuplicatePending.
func (s *SQLStore) Insert(ctx context.Context, p model.Proposal) error {
	payload, err := json.Marshal(p.Payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	_, err = s.db.ExecContext(ctx, s.q(`INSERT INTO proposals (id, tenant_id, relief_need_id, vessel_id, candidate_id,
		score, payload, status, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		p.ID, p.TenantID, p.ReliefNeedID, p.VesselID, p.CandidateID, p.Score, string(payload), string(p.Status), p.CreatedAt.UTC())
	if err != nil && isUniqueViolation(err) {
		return fmt.Errorf("relief need %s: %w", p.ReliefNeedID, corestore.ErrDuplicatePending)
	}
	return err
}

// ListProposals returns the proposals of a relief need, oldest first.
func (s *SQLStore) ListProposals(ctx context.Context, reliefNeedID string) ([]model.Proposal, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`SELECT id, tenant_id, relief_need_id, vessel_id, candidate_id, score,
		payload, status, created_at FROM proposals WHERE relief_need_id = ? ORDER BY created_at, id`), reliefNeedID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	res := []model.Proposal{}
	for rows.Next() {
		var (
			p       model.Proposal
			payload string
			status  string
		)
		if err := rows.Scan(&p.ID, &p.TenantID, &p.ReliefNeedID, &p.VesselID, &p.CandidateID, &p.Score,
			&payload, &status, &p.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(payload), &p.Payload); err != nil {
			return nil, fmt.Errorf("proposal %s: decode payload: %w", p.ID, err)
		}
		p.Status = model.ProposalStatus(status)
		p.CreatedAt = p.CreatedAt.UTC()
		res = append(res, p)
	}
	return res, rows.Err()
}

// SetProposalStatus records a review decision.
func (s *SQLStore) SetProposalStatus(ctx context.Context, id string, st model.ProposalStatus) error {
	res, err := s.db.ExecContext(ctx, s.q(`UPDATE proposals SET status = ? WHERE id = ?`), string(st), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("proposal %s: %w", id, corestore.ErrNotFound)
	}
	return nil
}

// Append stores an audit entry.
func (s *SQLStore) Append(ctx context.Context, e model.AuditLogEntry) error {
	details, err := json.Marshal(e.Details)
	if err != nil {
		return fmt.Errorf("encode details: %w", err)
	}
	_, err = s.db.ExecContext(ctx, s.q(`INSERT INTO audit_logs (id, tenant_id, action, entity_type, entity_id, details, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`),
		e.ID, e.TenantID, e.Action, e.EntityType, e.EntityID, string(details), e.CreatedAt.UTC())
	return err
}

// CountAudit returns the number of audit entries for an entity.
func (s *SQLStore) CountAudit(ctx context.Context, entityType, entityID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, s.q(`SELECT COUNT(*) FROM audit_logs WHERE entity_type = ? AND entity_id = ?`),
		entityType, entityID).Scan(&n)
	return n, err
}

// Query lists audit entries, oldest first. Empty filters match everything.
func (s *SQLStore) Query(ctx context.Context, tenantID, entityID string) ([]model.AuditLogEntry, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`SELECT id, tenant_id, action, entity_type, entity_id, details, created_at
		FROM audit_logs WHERE (? = '' OR tenant_id = ?) AND (? = '' OR entity_id = ?) ORDER BY created_at, id`),
		tenantID, tenantID, entityID, entityID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	res := []model.AuditLogEntry{}
	for rows.Next() {
		var (
			e       model.AuditLogEntry
			details string
		)
		if err := rows.Scan(&e.ID, &e.TenantID, &e.Action, &e.EntityType, &e.EntityID, &details, &e.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(details), &e.Details); err != nil {
			return nil, fmt.Errorf("audit %s: decode details: %w", e.ID, err)
		}
		e.CreatedAt = e.CreatedAt.UTC()
		res = append(res, e)
	}
	return res, rows.Err()
}
