package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/crewplan/config"
	"github.com/kilianp07/crewplan/core/factory"
	coremetrics "github.com/kilianp07/crewplan/core/metrics"
	"github.com/kilianp07/crewplan/core/model"
	"github.com/kilianp07/crewplan/core/planning"
)

func reasoningServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		content := `{"score": 91, "reasoning": "same rank, available now", "strengths": ["rank"], "risks": []}`
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]string{"role": "assistant", "content": content}}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(t *testing.T, reasoningURL string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		Database:  config.DatabaseConfig{Driver: "sqlite", DSN: filepath.Join(dir, "crewplan.db"), Migrate: true},
		Reasoning: config.ReasoningConfig{URL: reasoningURL},
		Metrics:   coremetrics.Config{Sinks: []factory.ModuleConfig{{Type: "nop"}}},
		Audit:     config.AuditConfig{Backend: "jsonl", Path: filepath.Join(dir, "audit.jsonl")},
	}
	cfg.SetDefaults()
	require.NoError(t, cfg.Validate())
	return cfg
}

func seed(t *testing.T, svc *Service) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()
	require.NoError(t, svc.db.PutTenant(ctx, model.TenantConfig{
		TenantID: "t1", Enabled: true, MinMatchScore: 70, HorizonDays: 30,
		Features: map[string]bool{model.FeatureReliefPlanning: true},
	}))
	require.NoError(t, svc.db.AddAssignment(ctx, model.ReliefNeed{
		AssignmentID: "as-1", TenantID: "t1", VesselID: "v1", VesselName: "MV Aurora", Rank: "Master",
		SignOnDate: now.AddDate(0, -4, 0), SignOffDate: now.AddDate(0, 0, 10), ContractMonths: 4,
	}, "active"))
	require.NoError(t, svc.db.AddCrew(ctx, model.CandidateProfile{
		CrewID: "c1", TenantID: "t1", FullName: "Ana Silva", Rank: "Master", Status: model.StatusOnShore,
	}))
}

func TestService_ManualRunOverHTTP(t *testing.T) {
	svc, err := New(testConfig(t, reasoningServer(t).URL))
	require.NoError(t, err)
	defer func() { _ = svc.Close() }()
	seed(t, svc)

	h := svc.Handler()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/tenants/t1/planning-runs", nil))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var rep planning.CycleReport
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rep))
	assert.Equal(t, 1, rep.ProposalsCreated)
	require.Len(t, rep.Outcomes, 1)
	assert.Equal(t, planning.NeedCreated, rep.Outcomes[0].Status)

	props, err := svc.db.ListProposals(context.Background(), "as-1")
	require.NoError(t, err)
	require.Len(t, props, 1)
	assert.Equal(t, 91, props[0].Score)
	assert.False(t, props[0].Payload.Fallback)

	entries, err := svc.audit.Query(context.Background(), "t1", props[0].ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	// a second run finds the pending proposal and writes nothing
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/tenants/t1/planning-runs", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	props, _ = svc.db.ListProposals(context.Background(), "as-1")
	assert.Len(t, props, 1)
}

func TestService_UnknownTenant(t *testing.T) {
	svc, err := New(testConfig(t, ""))
	require.NoError(t, err)
	defer func() { _ = svc.Close() }()

	rr := httptest.NewRecorder()
	svc.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/tenants/nope/planning-runs", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestService_FallbackWithoutProvider(t *testing.T) {
	svc, err := New(testConfig(t, ""))
	require.NoError(t, err)
	defer func() { _ = svc.Close() }()
	seed(t, svc)

	rep, err := svc.Orchestrator().RunTenant(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, 1, rep.ProposalsCreated)
	assert.Equal(t, 1, rep.FallbackScores)
}
