package queue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"
)

// dialTimeout bounds the connection check at construction.
const dialTimeout = 5 * time.Second

// dial connects to Redis at addr (host:port) and verifies the
// connection before any queue operation runs.
func dial(addr string, logger *slog.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	logger.Info("Connected to Redis for event queue", "addr", addr)
	return rdb, nil
}

// Close releases the queue's Redis connection.
func (eq *EventQueue) Close() error {
	return eq.rdb.Close()
}

// Redis exposes the queue's connection for collaborators that share it,
// such as the Pub/Sub broadcaster.
func (eq *EventQueue) Redis() *redis.Client {
	return eq.rdb
}
