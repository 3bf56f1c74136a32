package tasks

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// MemoryQueue is an in-process queue: a buffered channel drained by a fixed
// pool of worker goroutines.
type MemoryQueue struct {
	tasks   chan Task
	workers int
	logger  zerolog.Logger

	mu     sync.RWMutex
	closed bool
	stop   chan struct{}
	wg     sync.WaitGroup
}

func NewMemoryQueue(size, workers int, logger zerolog.Logger) *MemoryQueue {
	if size < 1 {
		size = 1
	}
	if workers < 1 {
		workers = 1
	}
	return &MemoryQueue{
		tasks:   make(chan Task, size),
		workers: workers,
		logger:  logger.With().Str("component", "tasks").Str("queue", "memory").Logger(),
		stop:    make(chan struct{}),
	}
}

func (q *MemoryQueue) Enqueue(ctx context.Context, task Task) error {
	task = prepare(task)

	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.tasks <- task:
		q.logger.Debug().Str("task_id", task.ID).Str("kind", string(task.Kind)).Msg("task enqueued")
		return nil
	default:
		q.logger.Warn().Str("task_id", task.ID).Str("kind", string(task.Kind)).Msg("task queue full, dropping task")
		return ErrQueueFull
	}
}

func (q *MemoryQueue) Start(handler Handler) {
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(handler)
	}
	q.logger.Info().Int("workers", q.workers).Int("capacity", cap(q.tasks)).Msg("task workers started")
}

func (q *MemoryQueue) worker(handler Handler) {
	defer q.wg.Done()
	for {
		select {
		case <-q.stop:
			return
		case task := <-q.tasks:
			runTask(q.logger, handler, task)
		}
	}
}

// Close stops accepting tasks and waits for in-flight handlers until ctx
// expires. Tasks still queued are dropped.
func (q *MemoryQueue) Close(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.stop)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	err := waitGroupDone(ctx, done)

	if lost := len(q.tasks); lost > 0 {
		q.logger.Warn().Int("lost", lost).Msg("queued tasks dropped on shutdown")
	}
	return err
}

func (q *MemoryQueue) Len() int {
	return len(q.tasks)
}
