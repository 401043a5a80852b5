// Package source defines the single-pass producers wrapped by package cached,
// and adapters for the common ways Go code produces a sequence.
//
// A source is never restarted. Once it has returned Done or an error,
// package cached will not call it again.
package source

import (
	"context"

	"github.com/cockroachdb/errors"
)

// Done is returned by a source when it has no more elements.
// Compare with errors.Is.
var Done = errors.New("no more elements")

// Source produces one element per call to Next, blocking the caller
// until it is available.
type Source[T any] interface {
	Next() (T, error)
}

// AsyncSource is a Source whose pulls can be abandoned through ctx.
// An implementation should return ctx.Err() (or an error wrapping it)
// when it gives up on a pull because ctx ended, and must not consume
// an element in that case.
type AsyncSource[T any] interface {
	Next(ctx context.Context) (T, error)
}

// Func adapts a plain function to a Source.
type Func[T any] func() (T, error)

func (f Func[T]) Next() (T, error) {
	return f()
}

// AsyncFunc adapts a plain function to an AsyncSource.
type AsyncFunc[T any] func(context.Context) (T, error)

func (f AsyncFunc[T]) Next(ctx context.Context) (T, error) {
	return f(ctx)
}
