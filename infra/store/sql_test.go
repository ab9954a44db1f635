package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/crewplan/core/model"
	corestore "github.com/kilianp07/crewplan/core/store"
)

func newMock(t *testing.T) (*SQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return New(db, Postgres), mock
}

func TestRebind(t *testing.T) {
	q := "SELECT a FROM t WHERE x = ? AND y IN (?, ?)"
	assert.Equal(t, "SELECT a FROM t WHERE x = $1 AND y IN ($2, $3)", Postgres.rebind(q))
	assert.Equal(t, q, SQLite.rebind(q))
}

func TestParseDialect(t *testing.T) {
	d, err := ParseDialect("postgresql")
	require.NoError(t, err)
	assert.Equal(t, Postgres, d)
	d, err = ParseDialect("")
	require.NoError(t, err)
	assert.Equal(t, SQLite, d)
	_, err = ParseDialect("mysql")
	assert.Error(t, err)
}

func TestPostgres_ActiveSigningOffBefore(t *testing.T) {
	s, mock := newMock(t)
	cutoff := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	signOn := time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)
	signOff := time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "tenant_id", "vessel_id", "vessel_name", "crew_rank", "crew_id", "crew_name", "sign_on_date", "sign_off_date", "contract_months"}).
		AddRow("asg-1", "t1", "v1", "MV Aurora", "Master", "c0", "Old Master", signOn, signOff, 6)
	mock.ExpectQuery(regexp.QuoteMeta("FROM assignments WHERE tenant_id = $1 AND status = $2 AND sign_off_date <= $3")).
		WithArgs("t1", "active", cutoff).
		WillReturnRows(rows)

	needs, err := s.ActiveSigningOffBefore(context.Background(), "t1", cutoff)
	require.NoError(t, err)
	require.Len(t, needs, 1)
	assert.Equal(t, "asg-1", needs[0].AssignmentID)
	assert.Equal(t, "Master", needs[0].Rank)
	assert.Equal(t, 6, needs[0].ContractMonths)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_FindAvailable(t *testing.T) {
	s, mock := newMock(t)
	from := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "tenant_id", "full_name", "crew_rank", "nationality", "status", "available_from"}).
		AddRow("c1", "t1", "Ana Reyes", "Master", "PH", "on_shore", from).
		AddRow("c2", "t1", "Bo Lind", "Master", "SE", "on_leave", nil)
	mock.ExpectQuery(regexp.QuoteMeta("crew_rank = $2 AND status IN ($3, $4)")).
		WithArgs("t1", "Master", "on_shore", "on_leave").
		WillReturnRows(rows)

	pool, err := s.FindAvailable(context.Background(), "t1", "Master", model.AvailableStatuses)
	require.NoError(t, err)
	require.Len(t, pool, 2)
	require.NotNil(t, pool[0].AvailableFrom)
	assert.True(t, pool[0].AvailableFrom.Equal(from))
	assert.Nil(t, pool[1].AvailableFrom)
	assert.Equal(t, model.StatusOnLeave, pool[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_InsertDuplicatePending(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectExec("INSERT INTO proposals").
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint \"uniq_proposals_pending_need\""})

	err := s.Insert(context.Background(), model.Proposal{ID: "p2", ReliefNeedID: "asg-1", Status: model.ProposalPendingReview})
	assert.ErrorIs(t, err, corestore.ErrDuplicatePending)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_InsertOtherFailure(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectExec("INSERT INTO proposals").WillReturnError(errors.New("connection refused"))
	err := s.Insert(context.Background(), model.Proposal{ID: "p2", ReliefNeedID: "asg-1"})
	require.Error(t, err)
	assert.False(t, errors.Is(err, corestore.ErrDuplicatePending))
}

func TestPostgres_GetNotFound(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery("FROM tenant_ai_configs WHERE tenant_id = \\$1").
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{"tenant_id", "ai_enabled", "autonomy_level", "min_match_score", "horizon_days", "features"}))
	_, err := s.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, corestore.ErrNotFound)
}

func TestPostgres_ListEnabled(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery("FROM tenant_ai_configs WHERE ai_enabled = \\$1 ORDER BY tenant_id").
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows([]string{"tenant_id", "ai_enabled", "autonomy_level", "min_match_score", "horizon_days", "features"}).
			AddRow("t1", true, "assisted", 75, 45, `{"relief_planning": true}`))
	tenants, err := s.ListEnabled(context.Background())
	require.NoError(t, err)
	require.Len(t, tenants, 1)
	assert.True(t, tenants[0].PlanningAllowed())
	assert.Equal(t, model.AutonomyAssisted, tenants[0].AutonomyLevel)
	assert.Equal(t, 45, tenants[0].HorizonDays)
}

func TestPostgres_HasPending(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM proposals WHERE relief_need_id = $1 AND status = $2")).
		WithArgs("asg-1", "pending_review").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	ok, err := s.HasPending(context.Background(), "asg-1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPostgres_AppendAudit(t *testing.T) {
	s, mock := newMock(t)
	at := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec("INSERT INTO audit_logs").
		WithArgs("a1", "t1", model.AuditActionProposalCreated, model.AuditEntityProposal, "p1", `{"score":88}`, at).
		WillReturnResult(sqlmock.NewResult(1, 1))
	err := s.Append(context.Background(), model.AuditLogEntry{
		ID: "a1", TenantID: "t1", Action: model.AuditActionProposalCreated, EntityType: model.AuditEntityProposal,
		EntityID: "p1", Details: map[string]any{"score": 88}, CreatedAt: at,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
