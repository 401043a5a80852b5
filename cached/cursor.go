package cached

import (
	"context"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"go.lepak.sg/cachediter/source"
)

const (
	cursorRunning uint8 = iota
	cursorDone
	cursorFailed
)

// cursor is one independent traversal over a state.
type cursor[T any] struct {
	st     *state[T]
	busy   atomic.Bool
	pos    int
	status uint8
	err    *SourceError
}

func (c *cursor[T]) next(ctx context.Context) (T, error) {
	var zero T

	if !c.busy.CompareAndSwap(false, true) {
		return zero, ErrConcurrentUse
	}
	defer c.busy.Store(false)

	switch c.status {
	case cursorDone:
		return zero, source.Done
	case cursorFailed:
		return zero, c.err
	}

	v, err := c.st.fetch(ctx, c.pos)
	if err == nil {
		c.pos++
		return v, nil
	}

	if errors.Is(err, source.Done) {
		c.status = cursorDone
		return zero, source.Done
	}

	var serr *SourceError
	if errors.As(err, &serr) {
		c.status = cursorFailed
		c.err = serr
		return zero, serr
	}

	// ctx ended before anything was recorded; try again later
	return zero, err
}

// Pos returns the index of the element the next call to Next will return.
func (c *cursor[T]) Pos() int {
	return c.pos
}

// Cursor is a traversal of an Iterable. It starts at the first element and
// moves forward by one on every successful Next.
//
// A Cursor must only be used by one goroutine at a time. Create one
// Cursor per goroutine instead.
type Cursor[T any] struct {
	cursor[T]
}

// Next returns the next element. At the end of the sequence it returns
// source.Done, and keeps returning it. If the source failed at this
// position, Next returns the *SourceError, and keeps returning the same
// value.
func (c *Cursor[T]) Next() (T, error) {
	return c.next(context.Background())
}

// AsyncCursor is a traversal of an AsyncIterable.
// Like a Cursor, it must only be used by one goroutine at a time.
type AsyncCursor[T any] struct {
	cursor[T]
}

// Next is like Cursor.Next, but waiting for another cursor's pull and
// pulling from the source both stop when ctx ends. In that case the
// context error is returned and the cursor does not move, so Next can be
// called again.
func (c *AsyncCursor[T]) Next(ctx context.Context) (T, error) {
	return c.next(ctx)
}
