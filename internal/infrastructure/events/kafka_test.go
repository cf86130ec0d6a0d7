package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"digimarket.backend/internal/domain/entities"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	failures int
	calls    int
	written  []kafka.Message
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.calls++
	if w.calls <= w.failures {
		return errors.New("leader not available")
	}
	w.written = append(w.written, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaPublisher_PublishRetries(t *testing.T) {
	w := &fakeWriter{failures: 2}
	p := &KafkaPublisher{w: w, attempts: 3}

	evt := entities.NewDomainEvent(entities.EventOrderPaid, "order-1", "default", map[string]interface{}{"amountCents": 1500})
	require.NoError(t, p.Publish(context.Background(), evt))

	assert.Equal(t, 3, w.calls)
	require.Len(t, w.written, 1)
	msg := w.written[0]
	assert.Equal(t, "order-1", string(msg.Key))
	assert.Equal(t, "type", msg.Headers[0].Key)
	assert.Equal(t, entities.EventOrderPaid, string(msg.Headers[0].Value))

	var decoded entities.DomainEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "default", decoded.TenantKey)
	assert.Equal(t, float64(1500), decoded.Data["amountCents"])

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisher_GivesUp(t *testing.T) {
	w := &fakeWriter{failures: 10}
	p := &KafkaPublisher{w: w, attempts: 2}

	err := p.Publish(context.Background(), entities.NewDomainEvent(entities.EventPayoutPaid, "p", "", nil))
	require.Error(t, err)
	assert.Equal(t, 2, w.calls)
	assert.Empty(t, w.written)
}

func TestNopPublisher(t *testing.T) {
	var p NopPublisher
	assert.NoError(t, p.Publish(context.Background(), entities.NewDomainEvent("x", "k", "", nil)))
	assert.NoError(t, p.Close())
}
