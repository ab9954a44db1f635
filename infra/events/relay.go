package events

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/crewplan/core/events"
	"github.com/kilianp07/crewplan/core/logger"
	"github.com/kilianp07/crewplan/internal/eventbus"
)

type collectors struct {
	published *prometheus.CounterVec
	failed    *prometheus.CounterVec
}

func newCollectors() collectors {
	return collectors{
		published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crewplan_events_published_total",
			Help: "Events relayed to the external broker.",
		}, []string{"topic"}),
		failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crewplan_events_publish_failures_total",
			Help: "Events the external broker rejected.",
		}, []string{"topic"}),
	}
}

var m collectors

func init() {
	m = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers the relay collectors on reg. If reg is nil,
// prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.published, m.failed)
}

// ResetMetrics reinitializes the collectors for tests and registers them on
// reg if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	m = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}

// Relay forwards bus events to a Publisher as JSON. Delivery is best effort:
// failures are logged and counted, never returned to the planning path.
type Relay struct {
	pub    Publisher
	topics Topics
	log    logger.Logger
	wg     sync.WaitGroup
}

// NewRelay creates a Relay.
func NewRelay(pub Publisher, topics Topics, log logger.Logger) *Relay {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Relay{pub: pub, topics: topics.withDefaults(), log: log}
}

// Start subscribes to the given buses. Either bus may be nil. Forwarding
// stops when ctx is canceled or the bus is closed.
func (r *Relay) Start(ctx context.Context, proposals *eventbus.TypedBus[events.ProposalCreated], cycles *eventbus.TypedBus[events.CycleCompleted]) {
	if proposals != nil {
		forward(ctx, r, proposals, r.topics.Proposals, events.ProposalCreated.Key)
	}
	if cycles != nil {
		forward(ctx, r, cycles, r.topics.Cycles, events.CycleCompleted.Key)
	}
}

// Wait blocks until every forwarding goroutine returned.
func (r *Relay) Wait() { r.wg.Wait() }

func forward[T any](ctx context.Context, r *Relay, bus *eventbus.TypedBus[T], topic string, key func(T) string) {
	sub := bus.Subscribe()
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				r.send(ctx, topic, key(ev), ev)
			}
		}
	}()
}

func (r *Relay) send(ctx context.Context, topic, key string, ev any) {
	b, err := json.Marshal(ev)
	if err != nil {
		r.log.Errorf("encode event for %s: %v", topic, err)
		return
	}
	if err := r.pub.Publish(ctx, topic, []byte(key), b); err != nil {
		m.failed.WithLabelValues(topic).Inc()
		r.log.Warnw("event relay failed", map[string]any{"topic": topic, "key": key, "error": err.Error()})
		return
	}
	m.published.WithLabelValues(topic).Inc()
}
