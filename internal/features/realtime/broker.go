package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventTypeNotification EventType = "notification"
	EventTypePong         EventType = "pong"
)

// Envelope is what clients receive over the socket.
type Envelope struct {
	Type      EventType       `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// event travels between instances and carries the recipient next to the envelope.
type event struct {
	UserID   uuid.UUID `json:"user_id"`
	Envelope Envelope  `json:"envelope"`
}

type Broker interface {
	Publish(ctx context.Context, userID uuid.UUID, envelope Envelope) error
}

// LocalBroker delivers straight to this instance's hub. Used when no Redis is configured.
type LocalBroker struct {
	deliverer Deliverer
}

func NewLocalBroker(deliverer Deliverer) *LocalBroker {
	return &LocalBroker{deliverer: deliverer}
}

func (b *LocalBroker) Publish(_ context.Context, userID uuid.UUID, envelope Envelope) error {
	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to encode realtime event: %w", err)
	}

	b.deliverer.Deliver(userID, data)
	return nil
}

// Publisher is the entry point other features use to push events.
type Publisher struct {
	broker Broker
}

func NewPublisher(broker Broker) *Publisher {
	return &Publisher{broker: broker}
}

func (p *Publisher) PublishNotification(ctx context.Context, userID uuid.UUID, notification any) error {
	data, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	return p.broker.Publish(ctx, userID, Envelope{
		Type:      EventTypeNotification,
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
}
