// Package workerpool bounds how many CPU-bound jobs (encryption,
// decryption, digests) run at once so large payloads cannot starve the
// request handlers.
package workerpool

import (
	"context"
	"runtime"

	"golang.org/x/sync/semaphore"
)

type Pool struct {
	sem  *semaphore.Weighted
	size int
}

// New creates a pool running at most size jobs concurrently.
// size <= 0 means runtime.GOMAXPROCS(0).
func New(size int) *Pool {
	if size <= 0 {
		size = runtime.GOMAXPROCS(0)
	}
	return &Pool{sem: semaphore.NewWeighted(int64(size)), size: size}
}

// Size is the concurrency limit.
func (p *Pool) Size() int {
	return p.size
}

// Do waits for a free slot and runs fn on the calling goroutine.
// It returns ctx.Err() if the context ends before a slot frees up.
func (p *Pool) Do(ctx context.Context, fn func() error) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer p.sem.Release(1)

	return fn()
}

// Run is Do for jobs producing a value.
func Run[T any](ctx context.Context, p *Pool, fn func() (T, error)) (T, error) {
	var out T
	err := p.Do(ctx, func() error {
		var err error
		out, err = fn()
		return err
	})
	return out, err
}
