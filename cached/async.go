package cached

import (
	"context"
	"iter"

	"github.com/cockroachdb/errors"
	"go.lepak.sg/cachediter/cache"
	"go.lepak.sg/cachediter/source"
)

// AsyncIterable caches a source.AsyncSource. It is safe for concurrent use.
//
// Cursors wait for each other on a semaphore rather than a mutex, so a
// cursor stuck behind another cursor's slow pull can leave when its ctx
// ends. A pull abandoned because ctx ended is not recorded; the next
// cursor to need that element pulls again.
type AsyncIterable[T any] struct {
	st *state[T]
}

// WrapAsync creates an AsyncIterable over src.
func WrapAsync[T any](src source.AsyncSource[T], opts ...Option) *AsyncIterable[T] {
	if src == nil {
		panic("cached: nil source")
	}
	return LazyAsync(func() source.AsyncSource[T] { return src }, opts...)
}

// LazyAsync creates an AsyncIterable over the source returned by factory,
// which is called once, by the first cursor that needs an element.
func LazyAsync[T any](factory func() source.AsyncSource[T], opts ...Option) *AsyncIterable[T] {
	if factory == nil {
		panic("cached: nil factory")
	}

	o := newOptions(opts...)
	build := func() puller[T] {
		return factory().Next
	}

	return &AsyncIterable[T]{st: newState(o, newSemaLocker(), build)}
}

// DecorateAsync is Decorate for asynchronous sources.
func DecorateAsync[T any](factory func() source.AsyncSource[T], opts ...Option) func() *AsyncIterable[T] {
	return func() *AsyncIterable[T] {
		return LazyAsync(factory, opts...)
	}
}

// Cursor starts a new traversal at the first element.
func (it *AsyncIterable[T]) Cursor() *AsyncCursor[T] {
	return &AsyncCursor[T]{cursor[T]{st: it.st}}
}

// All is like Iterable.All. If ctx ends, its error is yielded last.
func (it *AsyncIterable[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		c := it.Cursor()
		for {
			v, err := c.Next(ctx)
			if errors.Is(err, source.Done) {
				return
			}
			if !yield(v, err) || err != nil {
				return
			}
		}
	}
}

// Collect traverses a new AsyncCursor to the end.
func (it *AsyncIterable[T]) Collect(ctx context.Context) ([]T, error) {
	var out []T
	for v, err := range it.All(ctx) {
		if err != nil {
			return out, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Len returns the number of elements cached so far.
func (it *AsyncIterable[T]) Len() int {
	return it.st.cache.Len()
}

// Terminal reports whether the source has been exhausted or has failed.
func (it *AsyncIterable[T]) Terminal() cache.Terminal {
	return it.st.cache.Terminal()
}

// Pulls returns how many times the source has been pulled, abandoned
// pulls included.
func (it *AsyncIterable[T]) Pulls() int64 {
	return it.st.pulls.Load()
}
