package store

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const changeChannel = "tickets.changed"

// redisNotifier fans collection change signals across instances via
// Redis pub/sub.
type redisNotifier struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisNotifier builds a Notifier on top of the shared Redis client.
func NewRedisNotifier(client *redis.Client, logger *zap.Logger) Notifier {
	return &redisNotifier{client: client, logger: logger}
}

func (n *redisNotifier) Publish(ctx context.Context) error {
	return n.client.Publish(ctx, changeChannel, "changed").Err()
}

func (n *redisNotifier) Subscribe(ctx context.Context) (<-chan struct{}, func(), error) {
	pubsub := n.client.Subscribe(ctx, changeChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, err
	}

	signals := make(chan struct{}, 1)
	go func() {
		defer close(signals)
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-pubsub.Channel():
				if !ok {
					return
				}
				// coalesce: one pending signal is enough, the
				// subscriber re-reads the whole collection anyway
				select {
				case signals <- struct{}{}:
				default:
				}
			}
		}
	}()

	stop := func() {
		if err := pubsub.Close(); err != nil {
			n.logger.Warn("closing ticket change subscription", zap.Error(err))
		}
	}
	return signals, stop, nil
}
