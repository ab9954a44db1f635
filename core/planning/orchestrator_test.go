package planning

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/crewplan/core/events"
	coremetrics "github.com/kilianp07/crewplan/core/metrics"
	"github.com/kilianp07/crewplan/core/model"
	"github.com/kilianp07/crewplan/core/monitoring"
	"github.com/kilianp07/crewplan/core/store"
	"github.com/kilianp07/crewplan/internal/eventbus"
)

type recordingSink struct{ records []coremetrics.CycleRecord }

func (r *recordingSink) RecordCycle(rec coremetrics.CycleRecord) error {
	r.records = append(r.records, rec)
	return nil
}

type panickingRunner struct{ TenantRunner }

func (p panickingRunner) Run(ctx context.Context, t model.TenantConfig) (CycleReport, error) {
	if t.TenantID == "B" {
		panic("nil map")
	}
	return p.TenantRunner.Run(ctx, t)
}

func seedTenants(s *store.MemoryStore) {
	for _, id := range []string{"A", "B", "C"} {
		s.PutTenant(tenant(id, 50))
		addNeed(s, id, "need-"+id, "Master", 7)
		addCrew(s, id, "crew-"+id, "Master")
	}
}

func TestOrchestrator_FailureIsolation(t *testing.T) {
	s := store.NewMemoryStore()
	seedTenants(s)
	c := newCycle(t, failingReliefs{ReliefStore: s, tenantID: "B"}, s, scoreTable{"crew-A": 90, "crew-C": 85})
	mon := &monitoring.Recorder{}
	sink := &recordingSink{}
	o := NewOrchestrator(s, c, WithMonitor(mon), WithMetricsSink(sink))

	run, err := o.RunAll(context.Background(), TriggerScheduled)
	require.NoError(t, err)
	require.Len(t, run.Tenants, 3)
	require.Len(t, run.Failures, 1)
	assert.Equal(t, "B", run.Failures[0].TenantID)
	var dae *model.DataAccessError
	assert.ErrorAs(t, run.Failures[0].Err, &dae)
	assert.Equal(t, 2, run.ProposalsCreated())

	byNeed := map[string]bool{}
	for _, p := range s.Proposals() {
		byNeed[p.ReliefNeedID] = true
	}
	assert.True(t, byNeed["need-A"])
	assert.True(t, byNeed["need-C"])
	assert.False(t, byNeed["need-B"])

	captured := mon.Captured()
	require.Len(t, captured, 1)
	assert.Equal(t, "B", captured[0].Tags["tenant_id"])

	require.Len(t, sink.records, 3)
	assert.True(t, sink.records[1].Failed)
	assert.False(t, sink.records[0].Failed)
}

func TestOrchestrator_PanicIsIsolated(t *testing.T) {
	s := store.NewMemoryStore()
	seedTenants(s)
	c := newCycle(t, s, s, scoreTable{"crew-A": 90, "crew-B": 90, "crew-C": 90})
	o := NewOrchestrator(s, panickingRunner{c})

	run, err := o.RunAll(context.Background(), TriggerScheduled)
	require.NoError(t, err)
	require.Len(t, run.Failures, 1)
	assert.Equal(t, "B", run.Failures[0].TenantID)
	assert.Equal(t, 2, run.ProposalsCreated())
}

func TestOrchestrator_RunAllSkipsFeatureDisabled(t *testing.T) {
	s := store.NewMemoryStore()
	seedTenants(s)
	off := tenant("B", 50)
	off.Features = map[string]bool{}
	s.PutTenant(off)
	disabled := tenant("C", 50)
	disabled.Enabled = false
	s.PutTenant(disabled)

	c := newCycle(t, s, s, scoreTable{"crew-A": 90, "crew-B": 90, "crew-C": 90})
	o := NewOrchestrator(s, c)
	run, err := o.RunAll(context.Background(), TriggerScheduled)
	require.NoError(t, err)
	require.Len(t, run.Tenants, 1)
	assert.Equal(t, "A", run.Tenants[0].TenantID)
	assert.Equal(t, TriggerScheduled, run.Tenants[0].Trigger)
}

func TestOrchestrator_RunTenantConfigErrors(t *testing.T) {
	s := store.NewMemoryStore()
	noFeature := tenant("nofeature", 50)
	noFeature.Features = nil
	s.PutTenant(noFeature)
	disabled := tenant("disabled", 50)
	disabled.Enabled = false
	s.PutTenant(disabled)

	o := NewOrchestrator(s, newCycle(t, s, s, scoreTable{}))
	for _, id := range []string{"nofeature", "disabled", "unknown"} {
		_, err := o.RunTenant(context.Background(), id)
		var ce *model.ConfigError
		require.ErrorAs(t, err, &ce, id)
		assert.Equal(t, id, ce.TenantID)
		assert.Contains(t, err.Error(), id)
	}
}

func TestOrchestrator_RunTenantManual(t *testing.T) {
	s := store.NewMemoryStore()
	seedTenants(s)
	bus := eventbus.NewTyped[events.CycleCompleted]()
	sub := bus.Subscribe()
	o := NewOrchestrator(s, newCycle(t, s, s, scoreTable{"crew-A": 90}), WithCycleEvents(bus))

	rep, err := o.RunTenant(context.Background(), "A")
	require.NoError(t, err)
	assert.Equal(t, TriggerManual, rep.Trigger)
	assert.Equal(t, 1, rep.ProposalsCreated)

	ev := <-sub
	assert.Equal(t, "A", ev.TenantID)
	assert.Equal(t, 1, ev.ProposalsCreated)
	assert.Empty(t, ev.Err)
}

func TestOrchestrator_RunTenantDataAccess(t *testing.T) {
	s := store.NewMemoryStore()
	seedTenants(s)
	o := NewOrchestrator(s, newCycle(t, failingReliefs{ReliefStore: s, tenantID: "A"}, s, scoreTable{}))
	_, err := o.RunTenant(context.Background(), "A")
	var dae *model.DataAccessError
	require.ErrorAs(t, err, &dae)
}
