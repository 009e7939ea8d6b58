// Package workpool bounds how many store operations run at once.
package workpool

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Pool runs functions with at most n in flight.
type Pool struct {
	sem *semaphore.Weighted
}

// New returns a pool of size n; n below 1 is treated as 1.
func New(n int) *Pool {
	if n < 1 {
		n = 1
	}
	return &Pool{sem: semaphore.NewWeighted(int64(n))}
}

// Run waits for a free slot and then runs fn. It returns ctx.Err() when ctx
// ends before a slot frees up. fn must not call Run on the same pool.
func (p *Pool) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer p.sem.Release(1)
	return fn(ctx)
}

// Do is Run for functions that produce a value.
func Do[T any](ctx context.Context, p *Pool, fn func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := p.Run(ctx, func(ctx context.Context) error {
		var err error
		out, err = fn(ctx)
		return err
	})
	return out, err
}
