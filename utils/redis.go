package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// OpenRedisPool initializes a Redis connection pool
func OpenRedisPool(ctx context.Context, dsn string) (*redis.Client, error) {
	opt, err := redis.ParseURL(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	// Configure connection pooling
	opt.PoolSize = 20                     // Maximum number of connections in the pool
	opt.MinIdleConns = 2                  // Minimum number of idle connections
	opt.DialTimeout = 5 * time.Second     // Timeout for new connections
	opt.ConnMaxIdleTime = 5 * time.Minute // Close idle connections after this duration

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err = client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return client, nil
}

// RedisNotifier fans task changes out to every process subscribed to the
// same Redis channel.
type RedisNotifier struct {
	client  *redis.Client
	channel string
}

func NewRedisNotifier(client *redis.Client) *RedisNotifier {
	return &RedisNotifier{client: client, channel: ChangeChannel}
}

func (n *RedisNotifier) Publish(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := n.client.Publish(ctx, n.channel, "changed").Err(); err != nil {
		return fmt.Errorf("publish change: %w", err)
	}
	return nil
}

// Listen subscribes to the change channel. Bursts of messages collapse into a
// single pending signal. The channel is closed after stop is called or ctx is
// cancelled.
func (n *RedisNotifier) Listen(ctx context.Context) (<-chan struct{}, func(), error) {
	pubsub := n.client.Subscribe(ctx, n.channel)

	// Wait for the subscription to be confirmed so no publish is missed
	// between Listen returning and the first receive.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("subscribe %s: %w", n.channel, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	signals := make(chan struct{}, 1)
	done := make(chan struct{})
	msgs := pubsub.Channel()

	go func() {
		defer close(done)
		defer close(signals)
		defer pubsub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case signals <- struct{}{}:
				default:
				}
			}
		}
	}()

	stop := func() {
		cancel()
		<-done
	}
	return signals, stop, nil
}
