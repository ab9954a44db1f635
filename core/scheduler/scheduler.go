package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/kilianp07/crewplan/core/logger"
)

// Job is the work run on every tick.
type Job func(ctx context.Context)

// Scheduler runs a Job on a cron schedule.
type Scheduler struct {
	cfg   SchedulerConfig
	cron  *cron.Cron
	chain cron.Chain
	fn    Job
	log   logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	job    cron.Job
	entry  cron.EntryID
}

// New validates cfg and prepares a Scheduler for job.
func New(cfg SchedulerConfig, job Job, log logger.Logger) (*Scheduler, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if job == nil {
		return nil, fmt.Errorf("scheduler: nil job")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	loc, _ := time.LoadLocation(cfg.Timezone)
	cl := cronLogger{log: log}
	return &Scheduler{
		cfg:   cfg,
		cron:  cron.New(cron.WithLocation(loc), cron.WithLogger(cl)),
		chain: cron.NewChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		fn:    job,
		log:   log,
	}, nil
}

// Start schedules the job and returns immediately. Runs receive a context
// derived from ctx that is canceled by Stop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return fmt.Errorf("scheduler already started")
	}
	runCtx, cancel := context.WithCancel(ctx)
	job := s.chain.Then(cron.FuncJob(func() {
		if runCtx.Err() == nil {
			s.fn(runCtx)
		}
	}))
	id, err := s.cron.AddJob(s.cfg.Schedule, job)
	if err != nil {
		cancel()
		return err
	}
	s.cancel, s.job, s.entry = cancel, job, id
	s.cron.Start()
	s.log.Infof("scheduler started: %q (%s), next run %s", s.cfg.Schedule, s.cfg.Timezone, s.Next().Format(time.RFC3339))
	if s.cfg.RunOnStart {
		go job.Run()
	}
	return nil
}

// RunNow triggers the job outside the schedule and waits for it. It is
// skipped when a run is already in progress or the scheduler is stopped.
func (s *Scheduler) RunNow() {
	s.mu.Lock()
	job := s.job
	s.mu.Unlock()
	if job != nil {
		job.Run()
	}
}

// Next returns the next scheduled run, or the zero time when not started.
func (s *Scheduler) Next() time.Time {
	return s.cron.Entry(s.entry).Next
}

// Stop cancels in-flight runs and waits for them to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-s.cron.Stop().Done()
	s.mu.Lock()
	s.job = nil
	s.mu.Unlock()
	s.log.Infof("scheduler stopped")
}

// cronLogger adapts logger.Logger to cron.Logger.
type cronLogger struct{ log logger.Logger }

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugw("cron: "+msg, kv(keysAndValues))
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	fields := kv(keysAndValues)
	fields["error"] = err.Error()
	l.log.Warnw("cron: "+msg, fields)
}

func kv(pairs []interface{}) map[string]any {
	out := make(map[string]any, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out[fmt.Sprint(pairs[i])] = pairs[i+1]
	}
	return out
}
