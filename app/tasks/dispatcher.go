// Package tasks provides background task dispatch for work that should not
// block request handling, such as visit recording and reminder emails.
package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/campushq/campus-hub/config"
	"github.com/campushq/campus-hub/utils"
	"go.uber.org/zap"
)

// Task is a unit of background work
type Task func(ctx context.Context) error

// Dispatcher runs named tasks either inline or on a worker pool. The caller
// never branches on the mode; the wiring decides it once at startup.
type Dispatcher interface {
	// Dispatch schedules a task. Synchronous dispatchers return the task's
	// error; queued dispatchers return an error only when the queue is full.
	Dispatch(ctx context.Context, name string, task Task) error
	// Stop drains queued tasks and joins the workers
	Stop()
}

// NewDispatcher selects the dispatcher from configuration. Tests and
// deployments with async disabled get the synchronous dispatcher so task
// errors surface to callers.
func NewDispatcher(cfg config.TasksConfig, logger *utils.Logger) Dispatcher {
	if cfg.AsyncEnabled && !cfg.Testing {
		return NewQueueDispatcher(cfg.QueueSize, cfg.Workers, logger)
	}
	return NewSyncDispatcher(logger)
}

// SyncDispatcher runs tasks inline on the caller's goroutine
type SyncDispatcher struct {
	logger *utils.Logger
}

func NewSyncDispatcher(logger *utils.Logger) *SyncDispatcher {
	return &SyncDispatcher{logger: logger}
}

func (d *SyncDispatcher) Dispatch(ctx context.Context, name string, task Task) error {
	if err := task(ctx); err != nil {
		d.logger.WarnException(err, "task failed", zap.String("task", name))
		return err
	}
	return nil
}

func (d *SyncDispatcher) Stop() {}

type queuedTask struct {
	name string
	task Task
}

// QueueDispatcher runs tasks on a fixed worker pool fed by a bounded queue
type QueueDispatcher struct {
	queue   chan queuedTask
	logger  *utils.Logger
	wg      sync.WaitGroup
	mu      sync.Mutex
	stopped bool
}

func NewQueueDispatcher(queueSize, workers int, logger *utils.Logger) *QueueDispatcher {
	if queueSize < 1 {
		queueSize = 100
	}
	if workers < 1 {
		workers = 4
	}

	d := &QueueDispatcher{
		queue:  make(chan queuedTask, queueSize),
		logger: logger,
	}

	d.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go d.worker(i)
	}

	return d
}

func (d *QueueDispatcher) worker(id int) {
	defer d.wg.Done()

	for qt := range d.queue {
		d.run(id, qt)
	}
}

func (d *QueueDispatcher) run(workerID int, qt queuedTask) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("task panicked",
				zap.String("task", qt.name),
				zap.Int("worker", workerID),
				zap.Any("panic", r))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	start := time.Now()
	if err := qt.task(ctx); err != nil {
		d.logger.WarnException(err, "task failed",
			zap.String("task", qt.name),
			zap.Int("worker", workerID),
			zap.Duration("elapsed", time.Since(start)))
		return
	}

	d.logger.Debug("task completed",
		zap.String("task", qt.name),
		zap.Duration("elapsed", time.Since(start)))
}

// Dispatch enqueues the task and returns immediately. Task failures are
// logged by the workers, not returned here.
func (d *QueueDispatcher) Dispatch(ctx context.Context, name string, task Task) error {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return fmt.Errorf("dispatcher stopped, task %s rejected", name)
	}
	d.mu.Unlock()

	select {
	case d.queue <- queuedTask{name: name, task: task}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return fmt.Errorf("task queue full, task %s rejected", name)
	}
}

// Stop closes the queue and waits for in-flight tasks to finish
func (d *QueueDispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	d.mu.Unlock()

	close(d.queue)
	d.wg.Wait()
}
