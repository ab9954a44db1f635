// Package events relays planning events from the in-process buses to an
// external broker.
package events

import "context"

// Publisher delivers a keyed message to a broker topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
	Close() error
}

// Topics names the destination of each event type.
type Topics struct {
	Proposals string `json:"proposals" koanf:"proposals"`
	Cycles    string `json:"cycles" koanf:"cycles"`
}

// DefaultTopics are used for empty topic names.
var DefaultTopics = Topics{Proposals: "crewplan.proposals", Cycles: "crewplan.cycles"}

func (t Topics) withDefaults() Topics {
	if t.Proposals == "" {
		t.Proposals = DefaultTopics.Proposals
	}
	if t.Cycles == "" {
		t.Cycles = DefaultTopics.Cycles
	}
	return t
}
