package cached

import (
	"context"

	"github.com/cockroachdb/errors"
	"go.lepak.sg/cachediter/source"
)

// CoIterator is returned from CoIterate and abstracts
// communication with the iterating goroutine.
type CoIterator[T any] struct {
	items  <-chan T
	cancel context.CancelFunc
	exited <-chan struct{}

	// written before exited is closed
	err error
}

// Items returns a channel on which the elements will be sent.
// It is closed at the end of the sequence, on failure, on Stop,
// or when the ctx passed to CoIterate ends.
func (c *CoIterator[T]) Items() <-chan T {
	return c.items
}

// Stop stops the iteration. It may be called any number of times,
// from any goroutine. If the Items channel is closed, this doesn't
// need to be called.
func (c *CoIterator[T]) Stop() {
	c.cancel()
}

// Err waits for the iterating goroutine to exit and returns why it
// did: nil at the end of the sequence, the *SourceError on failure,
// or the context error after Stop or the end of ctx.
func (c *CoIterator[T]) Err() error {
	<-c.exited
	return c.err
}

// CoIterate starts coroutine-style iteration over a new cursor of it.
// The usage is as follows:
//
//	co := cached.CoIterate(ctx, it)
//	for v := range co.Items() {
//		... do stuff with v ...
//		if v meets some stopping condition {
//			co.Stop()
//		}
//	}
//	if err := co.Err(); err != nil {
//		...
//	}
//
// CoIterate starts a goroutine, which exits when the sequence ends,
// Stop is called, or ctx ends. If you follow the usage above, the
// goroutine will not live beyond the end of the for-range loop.
func CoIterate[T any](ctx context.Context, it *AsyncIterable[T]) *CoIterator[T] {
	ctx, cancel := context.WithCancel(ctx)
	out := make(chan T)
	exited := make(chan struct{})
	co := &CoIterator[T]{
		items:  out,
		cancel: cancel,
		exited: exited,
	}

	go func(out chan<- T, c *AsyncCursor[T]) {
		defer close(exited)
		defer close(out)
		defer cancel()

		for {
			v, err := c.Next(ctx)
			if err != nil {
				if !errors.Is(err, source.Done) {
					co.err = err
				}
				return
			}

			select {
			case out <- v:
			case <-ctx.Done():
				co.err = ctx.Err()
				return
			}
		}
	}(out, it.Cursor())

	return co
}
