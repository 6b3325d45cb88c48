// Package worker runs background jobs on a bounded pool of goroutines.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"

	"go.uber.org/zap"
)

var (
	// ErrQueueFull is returned by Submit when the job's queue has no free slot.
	ErrQueueFull = errors.New("worker queue full")
	// ErrPoolClosed is returned by Submit after Shutdown was called.
	ErrPoolClosed = errors.New("worker pool closed")
)

// Job is a unit of background work. Jobs with the same Key run on the same worker
// in submission order.
type Job struct {
	Key  int64
	Name string
	Run  func(ctx context.Context)
}

// Pool is a fixed set of workers, each draining its own FIFO queue.
type Pool struct {
	queues []chan Job
	logger *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewPool starts workers goroutines with queueSize slots each.
func NewPool(workers, queueSize int, logger *zap.Logger) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		queues: make([]chan Job, workers),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
	for i := range p.queues {
		p.queues[i] = make(chan Job, queueSize)
		p.wg.Add(1)
		go p.work(i, p.queues[i])
	}
	return p
}

// Submit enqueues job without blocking.
func (p *Pool) Submit(job Job) error {
	if job.Run == nil {
		return fmt.Errorf("job %q has no run function", job.Name)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}

	select {
	case p.queues[p.shard(job.Key)] <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// Shutdown stops accepting jobs and waits until queued jobs finished or ctx is done.
// Jobs still running when ctx expires see their context cancelled.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		for _, q := range p.queues {
			close(q)
		}
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()
		return nil
	case <-ctx.Done():
		p.cancel()
		return ctx.Err()
	}
}

func (p *Pool) shard(key int64) int {
	n := int64(len(p.queues))
	idx := key % n
	if idx < 0 {
		idx += n
	}
	return int(idx)
}

func (p *Pool) work(id int, queue <-chan Job) {
	defer p.wg.Done()
	for job := range queue {
		p.run(id, job)
	}
}

func (p *Pool) run(id int, job Job) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("job panicked",
				zap.Int("worker", id),
				zap.String("job", job.Name),
				zap.Int64("key", job.Key),
				zap.String("panic", fmt.Sprintf("%v", r)),
				zap.String("stack", string(debug.Stack())),
			)
		}
	}()
	job.Run(p.ctx)
}
