package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/rs/zerolog"
)

type Kind string

const (
	KindPersistPair Kind = "persist_pair"
	KindAutoIcon    Kind = "auto_icon"
)

var (
	ErrQueueFull   = errors.New("task queue is full")
	ErrQueueClosed = errors.New("task queue is closed")
)

// Task is one unit of deferred work scheduled by a request after its
// response has been produced.
type Task struct {
	ID          string    `json:"id"`
	Kind        Kind      `json:"kind"`
	Token       string    `json:"token,omitempty"`
	ProjectID   string    `json:"project_id"`
	Mode        string    `json:"mode,omitempty"`
	Model       string    `json:"model,omitempty"`
	Prompt      string    `json:"prompt,omitempty"`
	InputImage  []byte    `json:"input_image,omitempty"`
	OutputImage []byte    `json:"output_image,omitempty"`
	EnqueuedAt  time.Time `json:"enqueued_at"`
}

type Handler func(ctx context.Context, task Task) error

// Queue delivers each task at most once. A task leaves the queue before its
// handler runs; a failed task is logged and never retried. Enqueue does not
// block: when the queue is full the task is dropped with ErrQueueFull.
type Queue interface {
	Enqueue(ctx context.Context, task Task) error
	Start(handler Handler)
	Close(ctx context.Context) error
}

func prepare(task Task) Task {
	if task.ID == "" {
		task.ID = xid.New().String()
	}
	if task.EnqueuedAt.IsZero() {
		task.EnqueuedAt = time.Now().UTC()
	}
	return task
}

// runTask executes handler on a context detached from any request.
func runTask(logger zerolog.Logger, handler Handler, task Task) {
	log := logger.With().
		Str("task_id", task.ID).
		Str("kind", string(task.Kind)).
		Str("project_id", task.ProjectID).
		Logger()

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("deferred task panicked")
		}
	}()

	start := time.Now()
	if err := handler(log.WithContext(context.Background()), task); err != nil {
		log.Error().Err(err).Dur("duration", time.Since(start)).Msg("deferred task failed")
		return
	}
	log.Info().
		Dur("duration", time.Since(start)).
		Dur("queued_for", start.Sub(task.EnqueuedAt)).
		Msg("deferred task completed")
}

func waitGroupDone(ctx context.Context, done <-chan struct{}) error {
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("workers still running: %w", ctx.Err())
	}
}
