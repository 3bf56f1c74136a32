package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const defaultRedisKey = "whisprdraw:tasks"

type RedisOptions struct {
	Key         string
	MaxLen      int64
	Workers     int
	PollTimeout time.Duration
	// CloseClient makes Close also close the Redis client.
	CloseClient bool
}

// RedisQueue keeps tasks in a Redis list: LPUSH to enqueue, BRPOP to
// dequeue. BRPOP removes the task before it is handled, so a crash mid-task
// loses it.
type RedisQueue struct {
	client      *redis.Client
	key         string
	maxLen      int64
	workers     int
	pollTimeout time.Duration
	closeClient bool
	logger      zerolog.Logger

	mu     sync.RWMutex
	closed bool
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewRedisQueue(client *redis.Client, opts RedisOptions, logger zerolog.Logger) *RedisQueue {
	key := opts.Key
	if key == "" {
		key = defaultRedisKey
	}
	maxLen := opts.MaxLen
	if maxLen < 1 {
		maxLen = 256
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	pollTimeout := opts.PollTimeout
	if pollTimeout <= 0 {
		pollTimeout = time.Second
	}

	return &RedisQueue{
		client:      client,
		key:         key,
		maxLen:      maxLen,
		workers:     workers,
		pollTimeout: pollTimeout,
		closeClient: opts.CloseClient,
		logger:      logger.With().Str("component", "tasks").Str("queue", "redis").Logger(),
	}
}

// Enqueue pushes the task unless the list already holds MaxLen entries. The
// length check and the push are not atomic, so the bound is approximate.
func (q *RedisQueue) Enqueue(ctx context.Context, task Task) error {
	task = prepare(task)

	q.mu.RLock()
	closed := q.closed
	q.mu.RUnlock()
	if closed {
		return ErrQueueClosed
	}

	length, err := q.client.LLen(ctx, q.key).Result()
	if err != nil {
		return fmt.Errorf("failed to read queue length: %w", err)
	}
	if length >= q.maxLen {
		q.logger.Warn().Str("task_id", task.ID).Str("kind", string(task.Kind)).Msg("task queue full, dropping task")
		return ErrQueueFull
	}

	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to encode task: %w", err)
	}
	if err := q.client.LPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("failed to push task: %w", err)
	}

	q.logger.Debug().Str("task_id", task.ID).Str("kind", string(task.Kind)).Msg("task enqueued")
	return nil
}

func (q *RedisQueue) Start(handler Handler) {
	ctx, cancel := context.WithCancel(context.Background())
	q.mu.Lock()
	q.cancel = cancel
	q.mu.Unlock()

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx, handler)
	}
	q.logger.Info().Int("workers", q.workers).Str("key", q.key).Msg("task workers started")
}

func (q *RedisQueue) worker(ctx context.Context, handler Handler) {
	defer q.wg.Done()
	for {
		if ctx.Err() != nil {
			return
		}

		result, err := q.client.BRPop(ctx, q.pollTimeout, q.key).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || ctx.Err() != nil {
				continue
			}
			q.logger.Error().Err(err).Msg("failed to pop task")
			select {
			case <-ctx.Done():
			case <-time.After(q.pollTimeout):
			}
			continue
		}

		// BRPOP answers [key, value].
		if len(result) != 2 {
			continue
		}
		var task Task
		if err := json.Unmarshal([]byte(result[1]), &task); err != nil {
			q.logger.Error().Err(err).Msg("dropping undecodable task")
			continue
		}
		runTask(q.logger, handler, task)
	}
}

// Close stops the workers and waits for in-flight handlers until ctx
// expires. Tasks left in the list stay there for the next process.
func (q *RedisQueue) Close(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	cancel := q.cancel
	q.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	err := waitGroupDone(ctx, done)

	if remaining, lenErr := q.client.LLen(context.Background(), q.key).Result(); lenErr == nil && remaining > 0 {
		q.logger.Warn().Int64("remaining", remaining).Msg("tasks left in redis on shutdown")
	}
	if q.closeClient {
		if closeErr := q.client.Close(); closeErr != nil {
			q.logger.Error().Err(closeErr).Msg("failed to close redis client")
		}
	}
	return err
}
