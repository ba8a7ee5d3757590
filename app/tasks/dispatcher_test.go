package tasks

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/campushq/campus-hub/config"
	"github.com/campushq/campus-hub/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDispatcherSelection(t *testing.T) {
	logger := utils.NewTestLogger()

	tests := []struct {
		name      string
		cfg       config.TasksConfig
		wantQueue bool
	}{
		{
			name:      "async enabled",
			cfg:       config.TasksConfig{AsyncEnabled: true, QueueSize: 10, Workers: 2},
			wantQueue: true,
		},
		{
			name:      "async disabled",
			cfg:       config.TasksConfig{AsyncEnabled: false},
			wantQueue: false,
		},
		{
			name:      "testing forces sync even with async enabled",
			cfg:       config.TasksConfig{AsyncEnabled: true, Testing: true, QueueSize: 10, Workers: 2},
			wantQueue: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDispatcher(tt.cfg, logger)
			defer d.Stop()

			_, isQueue := d.(*QueueDispatcher)
			assert.Equal(t, tt.wantQueue, isQueue)
		})
	}
}

func TestSyncDispatcherReturnsTaskError(t *testing.T) {
	d := NewSyncDispatcher(utils.NewTestLogger())
	defer d.Stop()

	taskErr := errors.New("boom")
	err := d.Dispatch(context.Background(), "failing", func(ctx context.Context) error {
		return taskErr
	})
	assert.ErrorIs(t, err, taskErr)

	ran := false
	err = d.Dispatch(context.Background(), "ok", func(ctx context.Context) error {
		ran = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran, "sync dispatch must run the task before returning")
}

func TestQueueDispatcherRunsAllTasks(t *testing.T) {
	d := NewQueueDispatcher(64, 4, utils.NewTestLogger())

	var count int64
	var wg sync.WaitGroup
	const n = 50

	wg.Add(n)
	for i := 0; i < n; i++ {
		err := d.Dispatch(context.Background(), "count", func(ctx context.Context) error {
			defer wg.Done()
			atomic.AddInt64(&count, 1)
			return nil
		})
		require.NoError(t, err)
	}

	wg.Wait()
	d.Stop()

	assert.Equal(t, int64(n), atomic.LoadInt64(&count))
}

func TestQueueDispatcherDoesNotReturnTaskError(t *testing.T) {
	d := NewQueueDispatcher(8, 1, utils.NewTestLogger())

	var done sync.WaitGroup
	done.Add(1)
	err := d.Dispatch(context.Background(), "failing", func(ctx context.Context) error {
		defer done.Done()
		return errors.New("boom")
	})
	assert.NoError(t, err, "queued dispatch reports failures via logs, not the caller")

	done.Wait()
	d.Stop()
}

func TestQueueDispatcherRejectsWhenFull(t *testing.T) {
	d := NewQueueDispatcher(1, 1, utils.NewTestLogger())

	block := make(chan struct{})
	// Occupy the single worker
	require.NoError(t, d.Dispatch(context.Background(), "blocker", func(ctx context.Context) error {
		<-block
		return nil
	}))
	// Fill the queue
	require.NoError(t, d.Dispatch(context.Background(), "queued", func(ctx context.Context) error {
		return nil
	}))

	err := d.Dispatch(context.Background(), "overflow", func(ctx context.Context) error {
		return nil
	})
	assert.Error(t, err)

	close(block)
	d.Stop()
}

func TestQueueDispatcherStopDrains(t *testing.T) {
	d := NewQueueDispatcher(16, 2, utils.NewTestLogger())

	var count int64
	for i := 0; i < 10; i++ {
		require.NoError(t, d.Dispatch(context.Background(), "drain", func(ctx context.Context) error {
			atomic.AddInt64(&count, 1)
			return nil
		}))
	}

	d.Stop()
	assert.Equal(t, int64(10), atomic.LoadInt64(&count))

	err := d.Dispatch(context.Background(), "late", func(ctx context.Context) error {
		return nil
	})
	assert.Error(t, err, "dispatch after stop must be rejected")
}

func TestQueueDispatcherRecoversFromPanic(t *testing.T) {
	d := NewQueueDispatcher(8, 1, utils.NewTestLogger())

	var done sync.WaitGroup
	done.Add(1)
	require.NoError(t, d.Dispatch(context.Background(), "panicking", func(ctx context.Context) error {
		defer done.Done()
		panic("chaos")
	}))
	done.Wait()

	// The worker must survive and keep processing
	ran := make(chan struct{})
	require.NoError(t, d.Dispatch(context.Background(), "after-panic", func(ctx context.Context) error {
		close(ran)
		return nil
	}))
	<-ran

	d.Stop()
}
