// Package events defines the planning events emitted on the event bus.
//
// Available event types:
//   - ProposalCreated: a pending proposal was written for a relief need
//   - CycleCompleted: a tenant planning cycle finished
package events
