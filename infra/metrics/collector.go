package metrics

import (
	"context"

	"github.com/kilianp07/crewplan/core/events"
	coremetrics "github.com/kilianp07/crewplan/core/metrics"
	"github.com/kilianp07/crewplan/internal/eventbus"
)

// StartProposalCollector subscribes to the proposal bus and forwards each
// event to sink when it records proposals. It stops when the context is
// canceled or the bus is closed.
func StartProposalCollector(ctx context.Context, bus *eventbus.TypedBus[events.ProposalCreated], sink coremetrics.MetricsSink) {
	if bus == nil || sink == nil {
		return
	}
	rec, ok := sink.(coremetrics.ProposalRecorder)
	if !ok {
		return
	}
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				_ = rec.RecordProposal(coremetrics.ProposalRecord{
					TenantID:   ev.TenantID,
					ProposalID: ev.ProposalID,
					VesselID:   ev.VesselID,
					Score:      ev.Score,
					Fallback:   ev.Fallback,
					Time:       ev.CreatedAt,
				})
			}
		}
	}()
}
