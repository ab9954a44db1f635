package events

import (
	"context"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	msgs   []kafka.Message
	closed bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaPublisher_SetsTopicAndKey(t *testing.T) {
	w := &recordingWriter{}
	p := newKafkaPublisher(w)
	at := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return at }

	require.NoError(t, p.Publish(context.Background(), "crewplan.proposals", []byte("t1/n1"), []byte(`{}`)))
	require.NoError(t, p.Close())

	require.Len(t, w.msgs, 1)
	assert.Equal(t, "crewplan.proposals", w.msgs[0].Topic)
	assert.Equal(t, "t1/n1", string(w.msgs[0].Key))
	assert.Equal(t, at, w.msgs[0].Time)
	assert.True(t, w.closed)
}

func TestNewKafkaPublisher_RequiresBrokers(t *testing.T) {
	_, err := NewKafkaPublisher(KafkaConfig{})
	assert.Error(t, err)

	p, err := NewKafkaPublisher(KafkaConfig{Brokers: []string{"localhost:9092"}})
	require.NoError(t, err)
	kw, ok := p.writer.(*kafka.Writer)
	require.True(t, ok)
	assert.Equal(t, 3, kw.MaxAttempts)
	assert.IsType(t, &kafka.Hash{}, kw.Balancer)
}
