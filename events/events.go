// Package events publishes order lifecycle notifications. Publishing happens
// after the database commit and is best effort: a failure is logged by the
// caller, never surfaced to the client.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/Shashank-1177/SBFood/models"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

type Type string

const (
	OrderPlaced        Type = "order.placed"
	OrderStatusChanged Type = "order.status_changed"
	OrderCancelled     Type = "order.cancelled"
	OrderRated         Type = "order.rated"
)

type Event struct {
	Type         Type               `json:"type"`
	OrderID      uint               `json:"orderId"`
	OrderNumber  string             `json:"orderNumber"`
	CustomerID   uint               `json:"customerId"`
	RestaurantID uint               `json:"restaurantId"`
	Status       models.OrderStatus `json:"status"`
	Previous     models.OrderStatus `json:"previousStatus,omitempty"`
	Total        decimal.Decimal    `json:"total"`
	Note         string             `json:"note,omitempty"`
	OccurredAt   time.Time          `json:"occurredAt"`
}

// FromOrder fills the order fields of an event.
func FromOrder(t Type, o *models.Order, at time.Time) Event {
	return Event{
		Type:         t,
		OrderID:      o.ID,
		OrderNumber:  o.OrderNumber,
		CustomerID:   o.CustomerID,
		RestaurantID: o.RestaurantID,
		Status:       o.Status,
		Total:        o.Pricing.Total,
		OccurredAt:   at,
	}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// messageWriter is the part of *kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events keyed by order number, so one order's events
// land on one partition in order.
type KafkaPublisher struct {
	w messageWriter
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{w: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           50 * time.Millisecond,
		WriteTimeout:           5 * time.Second,
		MaxAttempts:            3,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}}
}

func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", e.Type, err)
	}
	msg := kafka.Message{
		Key:   []byte(e.OrderNumber),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(e.Type)},
		},
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s event: %w", e.Type, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	Err    error
}

func (r *Recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.events = append(r.events, e)
	return nil
}

func (r *Recorder) Close() error { return nil }

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Types lists the recorded event types in order.
func (r *Recorder) Types() []Type {
	var ts []Type
	for _, e := range r.Events() {
		ts = append(ts, e.Type)
	}
	return ts
}
