// Package workerpool bounds how many order writes a sync run has in flight.
//
// A run submits one batch, drains it, checks for cancellation and moves on:
//
//	pool := workerpool.New(cfg.Concurrency)
//	defer pool.Shutdown()
//
//	for _, batch := range batches {
//	    for _, o := range batch {
//	        if err := pool.Go(ctx, func(ctx context.Context) { write(ctx, o) }); err != nil {
//	            break // ctx cancelled or pool closed
//	        }
//	    }
//	    pool.Drain()
//	}
package workerpool

import (
	"context"
	"errors"
	"sync"
)

// ErrPoolClosed is returned by Go after Shutdown has been called.
var ErrPoolClosed = errors.New("workerpool: pool is closed")

type task struct {
	ctx context.Context
	fn  func(context.Context)
}

// Pool is a fixed set of workers fed through an unbuffered channel, so Go
// blocks until a worker is free.
type Pool struct {
	tasks   chan task
	workers sync.WaitGroup
	pending sync.WaitGroup
	once    sync.Once
	closeCh chan struct{}

	// OnPanic, when set before the first Go, receives the value of any
	// recovered task panic.
	OnPanic func(recovered any)
}

// New starts size workers. A size below 1 is treated as 1.
func New(size int) *Pool {
	if size <= 0 {
		size = 1
	}
	p := &Pool{
		tasks:   make(chan task),
		closeCh: make(chan struct{}),
	}
	p.workers.Add(size)
	for i := 0; i < size; i++ {
		go p.worker()
	}
	return p
}

// Go hands fn to a free worker, blocking until one is available. It
// returns ctx.Err() or ErrPoolClosed without running fn when either
// happens first. fn receives ctx.
func (p *Pool) Go(ctx context.Context, fn func(context.Context)) error {
	select {
	case <-p.closeCh:
		return ErrPoolClosed
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	p.pending.Add(1)
	select {
	case <-p.closeCh:
		p.pending.Done()
		return ErrPoolClosed
	case <-ctx.Done():
		p.pending.Done()
		return ctx.Err()
	case p.tasks <- task{ctx: ctx, fn: fn}:
		return nil
	}
}

// Drain waits until every task accepted so far has returned.
func (p *Pool) Drain() { p.pending.Wait() }

// Shutdown waits for in-flight tasks and stops the workers. Safe to call
// more than once.
func (p *Pool) Shutdown() {
	p.once.Do(func() {
		close(p.closeCh)
		p.pending.Wait()
		close(p.tasks)
		p.workers.Wait()
	})
}

func (p *Pool) worker() {
	defer p.workers.Done()
	for t := range p.tasks {
		p.run(t)
	}
}

func (p *Pool) run(t task) {
	defer p.pending.Done()
	defer func() {
		if r := recover(); r != nil && p.OnPanic != nil {
			p.OnPanic(r)
		}
	}()
	t.fn(t.ctx)
}
