package tasks_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"whisprdraw-backend/internal/tasks"
)

type recorder struct {
	mu    sync.Mutex
	tasks []tasks.Task
	calls int32
	err   error
}

func (r *recorder) handle(ctx context.Context, task tasks.Task) error {
	atomic.AddInt32(&r.calls, 1)
	r.mu.Lock()
	r.tasks = append(r.tasks, task)
	r.mu.Unlock()
	return r.err
}

func (r *recorder) count() int {
	return int(atomic.LoadInt32(&r.calls))
}

func TestMemoryQueue_DeliversTasks(t *testing.T) {
	queue := tasks.NewMemoryQueue(8, 2, zerolog.Nop())
	rec := &recorder{}
	queue.Start(rec.handle)
	defer queue.Close(context.Background())

	require.NoError(t, queue.Enqueue(context.Background(), tasks.Task{Kind: tasks.KindPersistPair, ProjectID: "p1"}))
	require.NoError(t, queue.Enqueue(context.Background(), tasks.Task{Kind: tasks.KindAutoIcon, ProjectID: "p1"}))

	assert.Eventually(t, func() bool { return rec.count() == 2 }, time.Second, 5*time.Millisecond)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	for _, task := range rec.tasks {
		assert.NotEmpty(t, task.ID)
		assert.False(t, task.EnqueuedAt.IsZero())
	}
}

func TestMemoryQueue_DropsWhenFull(t *testing.T) {
	queue := tasks.NewMemoryQueue(1, 1, zerolog.Nop())

	require.NoError(t, queue.Enqueue(context.Background(), tasks.Task{Kind: tasks.KindAutoIcon}))
	err := queue.Enqueue(context.Background(), tasks.Task{Kind: tasks.KindAutoIcon})
	assert.ErrorIs(t, err, tasks.ErrQueueFull)
	assert.Equal(t, 1, queue.Len())
}

func TestMemoryQueue_FailedTaskIsNotRetried(t *testing.T) {
	queue := tasks.NewMemoryQueue(4, 1, zerolog.Nop())
	rec := &recorder{err: errors.New("storage unavailable")}
	queue.Start(rec.handle)
	defer queue.Close(context.Background())

	require.NoError(t, queue.Enqueue(context.Background(), tasks.Task{Kind: tasks.KindPersistPair}))

	assert.Eventually(t, func() bool { return rec.count() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, rec.count())
	assert.Zero(t, queue.Len())
}

func TestMemoryQueue_SurvivesPanickingHandler(t *testing.T) {
	queue := tasks.NewMemoryQueue(4, 1, zerolog.Nop())
	var calls int32
	queue.Start(func(ctx context.Context, task tasks.Task) error {
		if atomic.AddInt32(&calls, 1) == 1 {
			panic("boom")
		}
		return nil
	})
	defer queue.Close(context.Background())

	require.NoError(t, queue.Enqueue(context.Background(), tasks.Task{Kind: tasks.KindAutoIcon}))
	require.NoError(t, queue.Enqueue(context.Background(), tasks.Task{Kind: tasks.KindAutoIcon}))

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&calls) == 2 }, time.Second, 5*time.Millisecond)
}

func TestMemoryQueue_CloseRejectsNewTasks(t *testing.T) {
	queue := tasks.NewMemoryQueue(4, 1, zerolog.Nop())
	queue.Start((&recorder{}).handle)

	require.NoError(t, queue.Close(context.Background()))
	assert.ErrorIs(t, queue.Enqueue(context.Background(), tasks.Task{}), tasks.ErrQueueClosed)
	assert.NoError(t, queue.Close(context.Background()))
}

func TestMemoryQueue_CloseTimesOutOnSlowHandler(t *testing.T) {
	queue := tasks.NewMemoryQueue(4, 1, zerolog.Nop())
	release := make(chan struct{})
	started := make(chan struct{})
	queue.Start(func(ctx context.Context, task tasks.Task) error {
		close(started)
		<-release
		return nil
	})
	defer close(release)

	require.NoError(t, queue.Enqueue(context.Background(), tasks.Task{}))
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, queue.Close(ctx), context.DeadlineExceeded)
}
