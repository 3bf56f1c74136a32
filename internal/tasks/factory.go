package tasks

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// QueueConfig picks and sizes the task queue. A non-empty RedisURL selects
// the Redis backed queue, otherwise tasks stay in memory.
type QueueConfig struct {
	RedisURL string
	Size     int
	Workers  int
}

func NewQueue(ctx context.Context, cfg QueueConfig, logger zerolog.Logger) (Queue, error) {
	if cfg.RedisURL == "" {
		return NewMemoryQueue(cfg.Size, cfg.Workers, logger), nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info().Msg("using redis task queue")
	return NewRedisQueue(client, RedisOptions{
		MaxLen:      int64(cfg.Size),
		Workers:     cfg.Workers,
		CloseClient: true,
	}, logger), nil
}
