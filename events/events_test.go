package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Shashank-1177/SBFood/models"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func sampleOrder() *models.Order {
	return &models.Order{
		ID:           9,
		OrderNumber:  "ORD-123456-789",
		CustomerID:   1,
		RestaurantID: 2,
		Status:       models.StatusPlaced,
		Pricing:      models.Pricing{Total: decimal.RequireFromString("42.79")},
	}
}

func TestKafkaPublisherWritesKeyedMessage(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{w: w}
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, p.Publish(context.Background(), FromOrder(OrderPlaced, sampleOrder(), at)))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "ORD-123456-789", string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "order.placed", string(msg.Headers[0].Value))

	var body map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &body))
	assert.Equal(t, "order.placed", body["type"])
	assert.Equal(t, float64(9), body["orderId"])
	assert.Equal(t, "placed", body["status"])

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisherWrapsWriteError(t *testing.T) {
	boom := errors.New("broker down")
	p := &KafkaPublisher{w: &fakeWriter{err: boom}}
	err := p.Publish(context.Background(), Event{Type: OrderCancelled})
	assert.ErrorIs(t, err, boom)
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	o := sampleOrder()
	require.NoError(t, r.Publish(context.Background(), FromOrder(OrderPlaced, o, time.Now())))
	require.NoError(t, r.Publish(context.Background(), FromOrder(OrderRated, o, time.Now())))
	assert.Equal(t, []Type{OrderPlaced, OrderRated}, r.Types())
}
