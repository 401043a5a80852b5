package cached

import (
	"context"
	"iter"

	"github.com/cockroachdb/errors"
	"go.lepak.sg/cachediter/cache"
	"go.lepak.sg/cachediter/source"
)

// Iterable caches a blocking source. It is safe for concurrent use.
type Iterable[T any] struct {
	st *state[T]
}

// Wrap creates an Iterable over src. Nothing is pulled from src until the
// first cursor needs an element. src must not be used by anyone else
// afterwards.
func Wrap[T any](src source.Source[T], opts ...Option) *Iterable[T] {
	if src == nil {
		panic("cached: nil source")
	}
	return Lazy(func() source.Source[T] { return src }, opts...)
}

// Lazy creates an Iterable over the source returned by factory.
// factory is called once, by the first cursor that needs an element.
func Lazy[T any](factory func() source.Source[T], opts ...Option) *Iterable[T] {
	if factory == nil {
		panic("cached: nil factory")
	}

	o := newOptions(opts...)
	build := func() puller[T] {
		src := factory()
		return func(context.Context) (T, error) {
			return src.Next()
		}
	}

	return &Iterable[T]{st: newState(o, &mutexLocker{}, build)}
}

// Decorate turns a source factory into a function returning Iterables.
// Every call of the returned function creates a new Iterable backed by a
// new call of factory; it is the Iterable, not the function, that caches.
func Decorate[T any](factory func() source.Source[T], opts ...Option) func() *Iterable[T] {
	return func() *Iterable[T] {
		return Lazy(factory, opts...)
	}
}

// Decorate1 is Decorate for a factory taking one argument.
func Decorate1[A, T any](factory func(A) source.Source[T], opts ...Option) func(A) *Iterable[T] {
	return func(a A) *Iterable[T] {
		return Lazy(func() source.Source[T] { return factory(a) }, opts...)
	}
}

// Cursor starts a new traversal at the first element.
func (it *Iterable[T]) Cursor() *Cursor[T] {
	return &Cursor[T]{cursor[T]{st: it.st}}
}

// All returns a sequence over a new Cursor. The sequence ends after the
// last element, or after yielding the source's failure as the only
// non-nil error.
//
//	for v, err := range it.All() {
//		if err != nil {
//			return err
//		}
//		...
//	}
func (it *Iterable[T]) All() iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		c := it.Cursor()
		for {
			v, err := c.Next()
			if errors.Is(err, source.Done) {
				return
			}
			if !yield(v, err) || err != nil {
				return
			}
		}
	}
}

// Collect traverses a new Cursor to the end. On failure it returns the
// elements before the failure along with the *SourceError.
func (it *Iterable[T]) Collect() ([]T, error) {
	var out []T
	for v, err := range it.All() {
		if err != nil {
			return out, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Len returns the number of elements cached so far.
func (it *Iterable[T]) Len() int {
	return it.st.cache.Len()
}

// Terminal reports whether the source has been exhausted or has failed.
func (it *Iterable[T]) Terminal() cache.Terminal {
	return it.st.cache.Terminal()
}

// Pulls returns how many times the source has been pulled, including the
// pull that found it exhausted or failed.
func (it *Iterable[T]) Pulls() int64 {
	return it.st.pulls.Load()
}
