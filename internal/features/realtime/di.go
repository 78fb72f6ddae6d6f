package realtime

import (
	"context"
	"sync"

	"untitledone/internal/config"
	"untitledone/internal/util/logger"
)

var (
	hub         *Hub
	broker      Broker
	redisBroker *RedisBroker
	publisher   *Publisher
	controller  *RealtimeController
	initOnce    sync.Once
)

func initRealtime() {
	initOnce.Do(func() {
		log := logger.GetLogger()
		env := config.GetEnv()

		hub = NewHub(log)
		broker = NewLocalBroker(hub)

		if env.RedisURL != "" {
			redis, err := NewRedisBroker(env.RedisURL, hub, log)
			if err != nil {
				log.Error("invalid REDIS_URL, realtime stays local to this instance", "error", err)
			} else {
				redisBroker = redis
				broker = redis
			}
		}

		publisher = NewPublisher(broker)
		controller = NewRealtimeController(hub, env.SiteOrigin, log)
	})
}

func GetHub() *Hub {
	initRealtime()
	return hub
}

func GetPublisher() *Publisher {
	initRealtime()
	return publisher
}

func GetRealtimeController() *RealtimeController {
	initRealtime()
	return controller
}

// Start subscribes to the cross-instance channel when Redis is configured.
func Start(ctx context.Context) error {
	initRealtime()
	if redisBroker == nil {
		return nil
	}

	if err := redisBroker.Start(ctx); err != nil {
		publisher.broker = NewLocalBroker(hub)
		_ = redisBroker.Close()
		redisBroker = nil

		return err
	}

	return nil
}

func Shutdown() {
	initRealtime()
	hub.Shutdown()

	if redisBroker != nil {
		if err := redisBroker.Close(); err != nil {
			logger.GetLogger().Warn("failed to close realtime broker", "error", err)
		}
	}
}
