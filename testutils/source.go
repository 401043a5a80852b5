package testutils

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.lepak.sg/cachediter/source"
)

// Counting is a source over a fixed list that counts how often it is
// pulled and how often each element is produced. It can be made to fail
// and to take time over each pull.
type Counting[T any] struct {
	items  []T
	failAt int
	err    error
	delay  time.Duration

	inflight    int32
	maxInflight int32

	lock     sync.Mutex
	pos      int
	calls    int
	produced []int
}

// NewCounting returns a source producing items, then source.Done.
func NewCounting[T any](items ...T) *Counting[T] {
	return &Counting[T]{
		items:    items,
		failAt:   -1,
		produced: make([]int, len(items)),
	}
}

// FailAfter makes the source return err instead of the element at index n,
// and on every pull after that.
func (c *Counting[T]) FailAfter(n int, err error) *Counting[T] {
	c.failAt = n
	c.err = err
	return c
}

// WithDelay makes every pull take at least d.
func (c *Counting[T]) WithDelay(d time.Duration) *Counting[T] {
	c.delay = d
	return c
}

// Next pulls the next element.
func (c *Counting[T]) Next() (T, error) {
	return c.NextContext(context.Background())
}

// NextContext pulls the next element. If ctx ends during the delay,
// nothing is consumed and ctx.Err() is returned.
func (c *Counting[T]) NextContext(ctx context.Context) (v T, err error) {
	n := atomic.AddInt32(&c.inflight, 1)
	defer atomic.AddInt32(&c.inflight, -1)
	for {
		prev := atomic.LoadInt32(&c.maxInflight)
		if n <= prev || atomic.CompareAndSwapInt32(&c.maxInflight, prev, n) {
			break
		}
	}

	if c.delay > 0 {
		timer := time.NewTimer(c.delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return v, ctx.Err()
		}
	}

	c.lock.Lock()
	defer c.lock.Unlock()

	c.calls++
	if c.failAt >= 0 && c.pos >= c.failAt {
		return v, c.err
	}
	if c.pos >= len(c.items) {
		return v, source.Done
	}

	v = c.items[c.pos]
	c.produced[c.pos]++
	c.pos++
	return v, nil
}

// Async returns the same source as a source.AsyncSource.
func (c *Counting[T]) Async() source.AsyncSource[T] {
	return source.AsyncFunc[T](c.NextContext)
}

// Calls returns the number of pulls that reached the list,
// abandoned pulls excluded.
func (c *Counting[T]) Calls() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.calls
}

// Produced returns how many times each element was produced.
func (c *Counting[T]) Produced() []int {
	c.lock.Lock()
	defer c.lock.Unlock()
	out := make([]int, len(c.produced))
	copy(out, c.produced)
	return out
}

// MaxInFlight returns the largest number of pulls that were ever
// running at the same time.
func (c *Counting[T]) MaxInFlight() int {
	return int(atomic.LoadInt32(&c.maxInflight))
}

// Gate is a source whose pulls block until released, for tests that need
// a pull to be in progress at a known time.
type Gate[T any] struct {
	// Entered receives once per pull, as soon as the pull starts.
	Entered chan struct{}
	release chan T
}

func NewGate[T any]() *Gate[T] {
	return &Gate[T]{
		Entered: make(chan struct{}, 16),
		release: make(chan T),
	}
}

// Release lets the pull in progress return v.
func (g *Gate[T]) Release(v T) {
	g.release <- v
}

// Close makes the pull in progress, and every later pull, return
// source.Done.
func (g *Gate[T]) Close() {
	close(g.release)
}

func (g *Gate[T]) Next(ctx context.Context) (T, error) {
	g.Entered <- struct{}{}
	select {
	case v, ok := <-g.release:
		if !ok {
			return v, source.Done
		}
		return v, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
