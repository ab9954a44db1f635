package planning

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kilianp07/crewplan/core/events"
	"github.com/kilianp07/crewplan/core/logger"
	coremetrics "github.com/kilianp07/crewplan/core/metrics"
	"github.com/kilianp07/crewplan/core/model"
	"github.com/kilianp07/crewplan/core/monitoring"
	"github.com/kilianp07/crewplan/core/store"
	"github.com/kilianp07/crewplan/internal/eventbus"
)

// Trigger identifies what started a run.
type Trigger string

const (
	TriggerManual    Trigger = "manual"
	TriggerScheduled Trigger = "scheduled"
)

// TenantRunner runs one tenant cycle.
type TenantRunner interface {
	Run(ctx context.Context, t model.TenantConfig) (CycleReport, error)
}

// Orchestrator runs planning cycles for tenants.
type Orchestrator struct {
	tenants store.TenantStore
	cycle   TenantRunner
	sink    coremetrics.MetricsSink
	monitor monitoring.Monitor
	bus     *eventbus.TypedBus[events.CycleCompleted]
	log     logger.Logger
	now     func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithMetricsSink records every cycle on s.
func WithMetricsSink(s coremetrics.MetricsSink) Option {
	return func(o *Orchestrator) {
		if s != nil {
			o.sink = s
		}
	}
}

// WithMonitor reports tenant failures to m.
func WithMonitor(m monitoring.Monitor) Option {
	return func(o *Orchestrator) {
		if m != nil {
			o.monitor = m
		}
	}
}

// WithCycleEvents publishes a CycleCompleted event after every cycle.
func WithCycleEvents(bus *eventbus.TypedBus[events.CycleCompleted]) Option {
	return func(o *Orchestrator) { o.bus = bus }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.log = l
		}
	}
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(tenants store.TenantStore, cycle TenantRunner, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		tenants: tenants,
		cycle:   cycle,
		sink:    coremetrics.NopSink{},
		monitor: monitoring.NopMonitor{},
		log:     logger.NopLogger{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// RunTenant runs one cycle for tenantID synchronously. It returns a
// *model.ConfigError when the tenant may not be planned and a
// *model.DataAccessError when its configuration or needs cannot be read.
func (o *Orchestrator) RunTenant(ctx context.Context, tenantID string) (CycleReport, error) {
	cfg, err := o.tenants.Get(ctx, tenantID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return CycleReport{TenantID: tenantID}, &model.ConfigError{TenantID: tenantID, Reason: "tenant not configured"}
		}
		return CycleReport{TenantID: tenantID}, &model.DataAccessError{TenantID: tenantID, Op: "read tenant config", Err: err}
	}
	if err := checkAllowed(cfg); err != nil {
		return CycleReport{TenantID: tenantID}, err
	}
	return o.runCycle(ctx, cfg, TriggerManual)
}

func checkAllowed(cfg model.TenantConfig) error {
	switch {
	case !cfg.Enabled:
		return &model.ConfigError{TenantID: cfg.TenantID, Reason: "AI is disabled"}
	case !cfg.FeatureEnabled(model.FeatureReliefPlanning):
		return &model.ConfigError{TenantID: cfg.TenantID, Reason: "feature " + model.FeatureReliefPlanning + " is disabled"}
	}
	return nil
}

// RunAll runs a cycle for every tenant allowed to plan, one after the
// other. A failing tenant is logged, reported and recorded in the report;
// the remaining tenants still run. The error is non-nil only when tenants
// cannot be listed.
func (o *Orchestrator) RunAll(ctx context.Context, trigger Trigger) (RunReport, error) {
	run := RunReport{Trigger: trigger, StartedAt: o.now().UTC(), Tenants: []CycleReport{}, Failures: []TenantFailure{}}
	tenants, err := o.tenants.ListEnabled(ctx)
	if err != nil {
		run.FinishedAt = o.now().UTC()
		err = &model.DataAccessError{TenantID: "*", Op: "list tenants", Err: err}
		monitoring.CaptureTenantError(o.monitor, "*", "list_tenants", err)
		return run, err
	}
	for _, t := range tenants {
		if !t.PlanningAllowed() {
			o.log.Debugf("tenant %s: relief planning not enabled, skipping", t.TenantID)
			continue
		}
		if ctx.Err() != nil {
			break
		}
		rep, err := o.runSafely(ctx, t, trigger)
		run.Tenants = append(run.Tenants, rep)
		if err != nil {
			o.log.Errorf("tenant %s: planning cycle failed: %v", t.TenantID, err)
			monitoring.CaptureTenantError(o.monitor, t.TenantID, "cycle", err)
			run.Failures = append(run.Failures, TenantFailure{TenantID: t.TenantID, Err: err, Error: err.Error()})
		}
	}
	run.FinishedAt = o.now().UTC()
	o.log.Infof("planning run finished: %d tenants, %d failures, %d proposals",
		len(run.Tenants), len(run.Failures), run.ProposalsCreated())
	return run, ctx.Err()
}

func (o *Orchestrator) runSafely(ctx context.Context, t model.TenantConfig, trigger Trigger) (rep CycleReport, err error) {
	defer func() {
		if r := recover(); r != nil {
			rep = CycleReport{TenantID: t.TenantID, Trigger: trigger}
			err = fmt.Errorf("tenant %s: planning cycle panicked: %v", t.TenantID, r)
			cycleFailures.WithLabelValues(string(trigger), "panic").Inc()
		}
	}()
	return o.runCycle(ctx, t, trigger)
}

func (o *Orchestrator) runCycle(ctx context.Context, t model.TenantConfig, trigger Trigger) (CycleReport, error) {
	cyclesRun.WithLabelValues(string(trigger)).Inc()
	rep, err := o.cycle.Run(ctx, t)
	rep.Trigger = trigger
	if err != nil {
		cycleFailures.WithLabelValues(string(trigger), failureKind(err)).Inc()
	}
	if serr := o.sink.RecordCycle(rep.Record(err != nil)); serr != nil {
		o.log.Warnf("tenant %s: metrics sink: %v", t.TenantID, serr)
	}
	if o.bus != nil {
		ev := events.CycleCompleted{
			TenantID:         t.TenantID,
			NeedsProcessed:   rep.NeedsProcessed,
			ProposalsCreated: rep.ProposalsCreated,
			NeedsFailed:      rep.NeedsFailed,
			Duration:         rep.FinishedAt.Sub(rep.StartedAt),
			FinishedAt:       rep.FinishedAt,
		}
		if err != nil {
			ev.Err = err.Error()
		}
		o.bus.Publish(ev)
	}
	return rep, err
}

func failureKind(err error) string {
	var dae *model.DataAccessError
	switch {
	case errors.As(err, &dae):
		return "data_access"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "other"
	}
}
