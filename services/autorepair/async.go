package autorepair

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/upb/llm-gateway/config"
)

// AsyncDispatcher wraps another Dispatcher with a buffered queue
// drained by background workers, so enqueueing never blocks the
// completion path. When the buffer is full the request is dropped and
// logged; repair dispatch is best-effort by contract.
type AsyncDispatcher struct {
	inner       Dispatcher
	logger      *zap.Logger
	requestChan chan *RepairRequest
	workerCount int
	bufferSize  int
	timeout     time.Duration
	wg          sync.WaitGroup
	mu          sync.Mutex
	started     bool
	dropped     int
}

// NewAsyncDispatcher creates an async wrapper around inner.
func NewAsyncDispatcher(inner Dispatcher, cfg config.AutoRepairConfig, logger *zap.Logger) *AsyncDispatcher {
	bufferSize := cfg.BufferSize
	if bufferSize <= 0 {
		bufferSize = 100
	}
	workerCount := cfg.WorkerCount
	if workerCount <= 0 {
		workerCount = 2
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &AsyncDispatcher{
		inner:       inner,
		logger:      logger,
		requestChan: make(chan *RepairRequest, bufferSize),
		workerCount: workerCount,
		bufferSize:  bufferSize,
		timeout:     timeout,
	}
}

// Start launches the background workers.
func (d *AsyncDispatcher) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.started {
		return fmt.Errorf("auto-repair dispatcher already started")
	}

	for i := 0; i < d.workerCount; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}

	d.started = true
	d.logger.Info("started auto-repair dispatcher",
		zap.Int("worker_count", d.workerCount),
		zap.Int("buffer_size", d.bufferSize))
	return nil
}

// Stop closes the queue and waits for in-flight dispatches, up to
// timeout.
func (d *AsyncDispatcher) Stop(timeout time.Duration) error {
	d.mu.Lock()
	if !d.started {
		d.mu.Unlock()
		return fmt.Errorf("auto-repair dispatcher not started")
	}
	d.started = false
	d.mu.Unlock()

	close(d.requestChan)

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.logger.Info("auto-repair dispatcher stopped")
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("auto-repair dispatcher stop timeout after %v", timeout)
	}
}

// Dispatch implements Dispatcher. It enqueues without blocking and
// reports (but does not propagate to callers of the gateway) queue
// exhaustion.
func (d *AsyncDispatcher) Dispatch(ctx context.Context, req *RepairRequest) error {
	d.mu.Lock()
	if !d.started {
		d.mu.Unlock()
		return fmt.Errorf("auto-repair dispatcher not started")
	}
	d.mu.Unlock()

	select {
	case d.requestChan <- req:
		return nil
	default:
		d.mu.Lock()
		d.dropped++
		d.mu.Unlock()
		d.logger.Warn("auto-repair queue full, dropping request",
			zap.String("issue_title", req.IssueTitle))
		return fmt.Errorf("auto-repair queue full")
	}
}

// Dropped returns how many requests were discarded due to a full queue.
func (d *AsyncDispatcher) Dropped() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dropped
}

func (d *AsyncDispatcher) worker(id int) {
	defer d.wg.Done()

	for req := range d.requestChan {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		if err := d.inner.Dispatch(ctx, req); err != nil {
			d.logger.Error("auto-repair dispatch failed",
				zap.Int("worker_id", id),
				zap.Error(err),
				zap.String("issue_title", req.IssueTitle))
		}
		cancel()
	}
}
