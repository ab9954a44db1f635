package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kilianp07/crewplan/core/events"
	coremetrics "github.com/kilianp07/crewplan/core/metrics"
	"github.com/kilianp07/crewplan/internal/eventbus"
)

func TestPromSink_RecordCycle(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}
	now := time.Now()
	rec := coremetrics.CycleRecord{TenantID: "t1", StartedAt: now.Add(-time.Second), FinishedAt: now, ProposalsCreated: 2, NeedsSkipped: 1, MeanTopScore: 84}
	if err := sink.RecordCycle(rec); err != nil {
		t.Fatalf("record: %v", err)
	}
	if v := testutil.ToFloat64(sink.needs.WithLabelValues("t1", "created")); v != 2 {
		t.Fatalf("created = %v", v)
	}
	if v := testutil.ToFloat64(sink.meanScore.WithLabelValues("t1")); v != 84 {
		t.Fatalf("mean = %v", v)
	}

	// a second sink on the same registry shares the collectors
	again, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("second sink: %v", err)
	}
	_ = again.RecordCycle(rec)
	if v := testutil.ToFloat64(sink.needs.WithLabelValues("t1", "created")); v != 4 {
		t.Fatalf("created after second sink = %v", v)
	}
}

func TestStartProposalCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}
	bus := eventbus.NewTyped[events.ProposalCreated]()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	StartProposalCollector(ctx, bus, sink)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		bus.Publish(events.ProposalCreated{TenantID: "t1", ProposalID: "p1", Fallback: true})
		if testutil.ToFloat64(sink.proposals.WithLabelValues("t1", "true")) >= 1 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("proposal not recorded")
}
