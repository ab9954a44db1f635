// Package app wires the planning engine from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/kilianp07/crewplan/api"
	"github.com/kilianp07/crewplan/app/plugins"
	"github.com/kilianp07/crewplan/auth"
	"github.com/kilianp07/crewplan/config"
	"github.com/kilianp07/crewplan/core/cache"
	"github.com/kilianp07/crewplan/core/candidates"
	"github.com/kilianp07/crewplan/core/events"
	"github.com/kilianp07/crewplan/core/matching"
	coremetrics "github.com/kilianp07/crewplan/core/metrics"
	coremon "github.com/kilianp07/crewplan/core/monitoring"
	"github.com/kilianp07/crewplan/core/planning"
	"github.com/kilianp07/crewplan/core/proposal"
	"github.com/kilianp07/crewplan/core/relief"
	"github.com/kilianp07/crewplan/core/scheduler"
	infraaudit "github.com/kilianp07/crewplan/infra/audit"
	infraevents "github.com/kilianp07/crewplan/infra/events"
	"github.com/kilianp07/crewplan/infra/logger"
	inframetrics "github.com/kilianp07/crewplan/infra/metrics"
	inframon "github.com/kilianp07/crewplan/infra/monitoring"
	"github.com/kilianp07/crewplan/infra/reasoning"
	infrastore "github.com/kilianp07/crewplan/infra/store"
	"github.com/kilianp07/crewplan/internal/eventbus"
)

// Service holds the wired planning engine.
type Service struct {
	cfg          *config.Config
	db           *infrastore.SQLStore
	audit        plugins.AuditBackend
	orchestrator *planning.Orchestrator
	sink         coremetrics.MetricsSink
	monitor      coremon.Monitor
	proposals    *eventbus.TypedBus[events.ProposalCreated]
	cycles       *eventbus.TypedBus[events.CycleCompleted]
	publisher    infraevents.Publisher
	log          logger.Logger
}

// New creates a Service from the configuration. The schema is migrated first
// when cfg.Database.Migrate is set.
func New(cfg *config.Config) (*Service, error) {
	logger.SetLevel(cfg.Logging.Level)
	log := logger.New("service")

	if cfg.Database.Migrate {
		if err := infrastore.Migrate(cfg.Database.Driver, cfg.Database.DSN); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}
	db, err := infrastore.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	svc := &Service{cfg: cfg, db: db, log: log}
	if err := svc.wire(); err != nil {
		_ = svc.Close()
		return nil, err
	}
	return svc, nil
}

func (s *Service) wire() error {
	cfg := s.cfg
	var err error

	c, err := s.newCache()
	if err != nil {
		return err
	}
	resolver := candidates.NewResolver(s.db, c, cfg.Cache.TTL, logger.New("candidates"))

	var provider matching.Provider
	if cfg.Reasoning.URL != "" {
		client, err := reasoning.NewClient(reasoning.Config{
			URL:   cfg.Reasoning.URL,
			Model: cfg.Reasoning.Model,
			Auth:  auth.New(cfg.Reasoning.APIKey, cfg.Reasoning.OAuth2),
		}, logger.New("reasoning"))
		if err != nil {
			return fmt.Errorf("reasoning client: %w", err)
		}
		provider = client
	} else {
		s.log.Warnf("no reasoning url configured: every candidate is scored by the fallback heuristic")
	}
	scorer := matching.NewScorer(provider, matching.ScorerConfig{
		Timeout:        cfg.Reasoning.Timeout,
		MaxConcurrency: cfg.Reasoning.MaxConcurrency,
	}, logger.New("matching"))

	s.audit, err = plugins.NewAuditBackend(cfg.Audit, s.db)
	if err != nil {
		return fmt.Errorf("audit store: %w", err)
	}
	s.proposals = eventbus.NewTyped[events.ProposalCreated]()
	s.cycles = eventbus.NewTyped[events.CycleCompleted]()
	writer := proposal.NewWriter(s.db, s.audit, s.proposals, logger.New("proposal"))

	cycle := planning.NewCycle(relief.NewLocator(s.db), resolver, scorer, writer, logger.New("cycle"))

	s.monitor, err = inframon.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return fmt.Errorf("sentry: %w", err)
	}
	s.sink, err = coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return fmt.Errorf("metrics sink: %w", err)
	}
	s.orchestrator = planning.NewOrchestrator(s.db, cycle,
		planning.WithMetricsSink(s.sink),
		planning.WithMonitor(s.monitor),
		planning.WithCycleEvents(s.cycles),
		planning.WithLogger(logger.New("orchestrator")),
	)

	s.publisher, err = plugins.NewPublisher(cfg.Events, logger.New("events"))
	if err != nil {
		return fmt.Errorf("event publisher: %w", err)
	}
	return nil
}

func (s *Service) newCache() (cache.Cache, error) {
	backend, err := plugins.NewCacheBackend(s.cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}
	if backend == nil {
		return cache.Nop{}, nil
	}
	return cache.NewResilient(backend, s.cfg.Cache.ReconnectCooldown, logger.New("cache")), nil
}

// Orchestrator returns the tenant orchestrator.
func (s *Service) Orchestrator() *planning.Orchestrator { return s.orchestrator }

// Handler returns the HTTP API.
func (s *Service) Handler() http.Handler {
	return api.NewRouter(api.Deps{
		Runner: s.orchestrator,
		Audit:  s.audit,
		Health: s.db,
		Token:  s.cfg.HTTP.Token,
		Log:    logger.New("api"),
	})
}

// Run starts the event forwarding, the scheduler and the HTTP server, and
// blocks until ctx is canceled or the server fails.
func (s *Service) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	inframetrics.StartProposalCollector(ctx, s.proposals, s.sink)
	var relay *infraevents.Relay
	if s.publisher != nil {
		relay = infraevents.NewRelay(s.publisher, s.cfg.Events.Topics, logger.New("relay"))
		relay.Start(ctx, s.proposals, s.cycles)
	}

	var sched *scheduler.Scheduler
	if s.cfg.Scheduler.Enabled {
		var err error
		sched, err = scheduler.New(s.cfg.Scheduler, s.runScheduled, logger.New("scheduler"))
		if err != nil {
			return fmt.Errorf("scheduler: %w", err)
		}
		if err := sched.Start(ctx); err != nil {
			return err
		}
		s.log.Infof("scheduler started, next run at %s", sched.Next().Format(time.RFC3339))
	}

	srv := &http.Server{
		Addr:         s.cfg.HTTP.Address,
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.HTTP.ReadTimeout,
		WriteTimeout: s.cfg.HTTP.WriteTimeout,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("http server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case err, ok := <-errCh:
		if ok {
			runErr = fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.log.Warnf("http shutdown: %v", err)
	}
	if sched != nil {
		sched.Stop()
	}
	cancel()
	if relay != nil {
		relay.Wait()
	}
	return runErr
}

func (s *Service) runScheduled(ctx context.Context) {
	rep, err := s.orchestrator.RunAll(ctx, planning.TriggerScheduled)
	if err != nil {
		s.log.Errorf("scheduled run: %v", err)
		return
	}
	s.log.Infof("scheduled run: %d tenants, %d failures, %d proposals",
		len(rep.Tenants), len(rep.Failures), rep.ProposalsCreated())
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.proposals != nil {
		s.proposals.Close()
	}
	if s.cycles != nil {
		s.cycles.Close()
	}
	var errs []error
	if s.publisher != nil {
		errs = append(errs, s.publisher.Close())
	}
	if c, ok := s.sink.(interface{ Close() }); ok {
		c.Close()
	}
	if j, ok := s.audit.(*infraaudit.JSONLStore); ok {
		errs = append(errs, j.Close())
	}
	if s.monitor != nil {
		s.monitor.Flush(s.cfg.Sentry.Flush())
	}
	if s.db != nil {
		errs = append(errs, s.db.Close())
	}
	return errors.Join(errs...)
}
