// Package workerpool bounds how many goroutines work on a job at once.
//
// A Pool runs plain tasks with backpressure: Submit fails fast with
// ErrPoolFull, SubmitWait blocks. A Group runs error-returning tasks on a
// pool and cancels the rest after the first failure:
//
//	pool := workerpool.New(4)
//	defer pool.Shutdown()
//
//	g, ctx := pool.Group(ctx)
//	for _, batch := range batches {
//	    g.Go(func(ctx context.Context) error { return repo.Upsert(ctx, batch) })
//	}
//	err := g.Wait()
package workerpool

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var (
	ErrPoolFull   = errors.New("workerpool: pool is full")
	ErrPoolClosed = errors.New("workerpool: pool is closed")
)

// Pool is a fixed set of workers fed through a buffered queue of twice the
// worker count.
type Pool struct {
	size    int
	tasks   chan func()
	mu      sync.RWMutex
	wg      sync.WaitGroup
	once    sync.Once
	closeCh chan struct{}
}

func New(size int) *Pool {
	if size <= 0 {
		size = 1
	}

	p := &Pool{
		size:    size,
		tasks:   make(chan func(), size*2),
		closeCh: make(chan struct{}),
	}
	p.wg.Add(size)
	for i := 0; i < size; i++ {
		go p.worker()
	}
	return p
}

// Size is the number of workers.
func (p *Pool) Size() int { return p.size }

// Submit enqueues task without blocking.
func (p *Pool) Submit(task func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	select {
	case <-p.closeCh:
		return ErrPoolClosed
	default:
	}

	select {
	case p.tasks <- task:
		return nil
	default:
		return ErrPoolFull
	}
}

// SubmitWait blocks until task is queued, ctx is done or the pool closes.
func (p *Pool) SubmitWait(ctx context.Context, task func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	select {
	case <-p.closeCh:
		return ErrPoolClosed
	default:
	}

	select {
	case <-p.closeCh:
		return ErrPoolClosed
	case <-ctx.Done():
		return ctx.Err()
	case p.tasks <- task:
		return nil
	}
}

// Shutdown stops accepting tasks, runs what is already queued and waits for
// the workers to exit. Safe to call more than once.
func (p *Pool) Shutdown() {
	p.once.Do(func() {
		close(p.closeCh)
		// Wait for in-flight Submit calls before closing the queue.
		p.mu.Lock()
		close(p.tasks)
		p.mu.Unlock()
		p.wg.Wait()
	})
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		_ = safeRun(task)
	}
}

// safeRun runs task and reports a recovered panic as an error.
func safeRun(task func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("workerpool: task panicked: %v", r)
		}
	}()
	task()
	return nil
}

// Group tracks error-returning tasks submitted to a Pool.
type Group struct {
	pool   *Pool
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
	err    error
}

// Group returns a Group whose tasks share a context derived from ctx. The
// context is cancelled when a task fails or Wait returns.
func (p *Pool) Group(ctx context.Context) (*Group, context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	return &Group{pool: p, ctx: ctx, cancel: cancel}, ctx
}

// Go blocks until task is queued. Tasks submitted after a failure are not
// run; the error returned is the first failure.
func (g *Group) Go(task func(ctx context.Context) error) error {
	if err := g.ctx.Err(); err != nil {
		g.fail(err)
		return g.firstErr(err)
	}

	g.wg.Add(1)
	err := g.pool.SubmitWait(g.ctx, func() {
		defer g.wg.Done()
		if err := g.ctx.Err(); err != nil {
			g.fail(err)
			return
		}
		var taskErr error
		if err := safeRun(func() { taskErr = task(g.ctx) }); err != nil {
			taskErr = err
		}
		if taskErr != nil {
			g.fail(taskErr)
		}
	})
	if err != nil {
		g.wg.Done()
		g.fail(err)
		return g.firstErr(err)
	}
	return nil
}

// Wait blocks until every queued task has finished and returns the first
// error.
func (g *Group) Wait() error {
	g.wg.Wait()
	g.cancel()
	return g.err
}

func (g *Group) fail(err error) {
	g.once.Do(func() {
		g.err = err
		g.cancel()
	})
}

func (g *Group) firstErr(fallback error) error {
	g.wg.Wait()
	if g.err != nil {
		return g.err
	}
	return fallback
}
