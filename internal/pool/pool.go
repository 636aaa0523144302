// Package pool provides a fixed goroutine pool for CPU-bound kernel loops.
//
// The builder creates one pool per outer worker when inner threading is
// enabled, so the per-pair kernel loop inside a worker's range can fan out
// without spawning a goroutine per task.
package pool

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
)

// ErrClosed is returned by Submit after the pool has been closed.
var ErrClosed = errors.New("pool: closed")

// Pool runs submitted closures on a fixed set of goroutines.
type Pool struct {
	workCh   chan func()
	wg       sync.WaitGroup
	closed   atomic.Bool
	submitMu sync.RWMutex
}

// New starts a pool with n worker goroutines. n <= 0 means
// runtime.GOMAXPROCS(0).
func New(n int) *Pool {
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	p := &Pool{
		workCh: make(chan func(), n),
	}
	p.wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer p.wg.Done()
			for task := range p.workCh {
				task()
			}
		}()
	}
	return p
}

// Submit enqueues a task, blocking when all workers are busy and the queue
// is full. It fails if the pool is closed or ctx is cancelled first.
func (p *Pool) Submit(ctx context.Context, task func()) error {
	p.submitMu.RLock()
	defer p.submitMu.RUnlock()

	if p.closed.Load() {
		return ErrClosed
	}
	select {
	case p.workCh <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting work and waits for queued tasks to finish.
// It is idempotent.
func (p *Pool) Close() {
	if !p.closed.CompareAndSwap(false, true) {
		return
	}
	p.submitMu.Lock()
	close(p.workCh)
	p.submitMu.Unlock()
	p.wg.Wait()
}
