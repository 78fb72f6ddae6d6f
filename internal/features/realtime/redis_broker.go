package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const notificationsChannel = "untitledone:realtime:notifications"

// RedisBroker fans events out to every instance through Redis pub/sub. Each
// instance delivers the events to its own hub.
type RedisBroker struct {
	client    *redis.Client
	deliverer Deliverer
	logger    *slog.Logger

	pubsub *redis.PubSub
	wg     sync.WaitGroup
}

func NewRedisBroker(redisURL string, deliverer Deliverer, logger *slog.Logger) (*RedisBroker, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	return &RedisBroker{
		client:    redis.NewClient(opts),
		deliverer: deliverer,
		logger:    logger,
	}, nil
}

func (b *RedisBroker) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

func (b *RedisBroker) Publish(ctx context.Context, userID uuid.UUID, envelope Envelope) error {
	data, err := json.Marshal(event{UserID: userID, Envelope: envelope})
	if err != nil {
		return fmt.Errorf("failed to encode realtime event: %w", err)
	}

	if err := b.client.Publish(ctx, notificationsChannel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish realtime event: %w", err)
	}

	return nil
}

// Start subscribes and returns once the subscription is confirmed. Events are
// consumed in the background until ctx is cancelled or Close is called.
func (b *RedisBroker) Start(ctx context.Context) error {
	pubsub := b.client.Subscribe(ctx, notificationsChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return fmt.Errorf("failed to subscribe to realtime channel: %w", err)
	}

	b.pubsub = pubsub

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.consume(ctx, pubsub.Channel())
	}()

	return nil
}

func (b *RedisBroker) consume(ctx context.Context, messages <-chan *redis.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case message, ok := <-messages:
			if !ok {
				return
			}

			b.handle(message.Payload)
		}
	}
}

func (b *RedisBroker) handle(payload string) {
	var incoming event
	if err := json.Unmarshal([]byte(payload), &incoming); err != nil {
		b.logger.Warn("dropping malformed realtime event", "error", err)
		return
	}

	data, err := json.Marshal(incoming.Envelope)
	if err != nil {
		b.logger.Warn("failed to re-encode realtime event", "error", err)
		return
	}

	b.deliverer.Deliver(incoming.UserID, data)
}

func (b *RedisBroker) Close() error {
	var err error
	if b.pubsub != nil {
		err = b.pubsub.Close()
	}

	b.wg.Wait()

	if closeErr := b.client.Close(); err == nil {
		err = closeErr
	}

	return err
}
