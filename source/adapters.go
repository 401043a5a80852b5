package source

import (
	"context"
	"iter"
)

// Slice returns a Source yielding the elements of s in order.
// s is not copied.
func Slice[T any](s []T) Source[T] {
	return &sliceSource[T]{s: s}
}

type sliceSource[T any] struct {
	s []T
	i int
}

func (sl *sliceSource[T]) Next() (T, error) {
	if sl.i >= len(sl.s) {
		var zero T
		return zero, Done
	}
	v := sl.s[sl.i]
	sl.i++
	return v, nil
}

// SeqSource pulls from a range-over-func sequence.
// Call Stop if the sequence is abandoned before it is exhausted,
// so that the underlying iterator can release its resources.
type SeqSource[T any] struct {
	next func() (T, bool)
	stop func()
}

// Seq returns a Source pulling from seq. Nothing is pulled until the
// first call to Next.
func Seq[T any](seq iter.Seq[T]) *SeqSource[T] {
	next, stop := iter.Pull(seq)
	return &SeqSource[T]{next: next, stop: stop}
}

func (s *SeqSource[T]) Next() (T, error) {
	v, ok := s.next()
	if !ok {
		return v, Done
	}
	return v, nil
}

// Stop ends the sequence early. It is safe to call more than once.
func (s *SeqSource[T]) Stop() {
	s.stop()
}

// Chan returns a Source receiving from ch. A closed channel means Done.
func Chan[T any](ch <-chan T) Source[T] {
	return Func[T](func() (T, error) {
		v, ok := <-ch
		if !ok {
			return v, Done
		}
		return v, nil
	})
}

// AsyncChan is like Chan, but a receive can be abandoned through ctx.
func AsyncChan[T any](ch <-chan T) AsyncSource[T] {
	return AsyncFunc[T](func(ctx context.Context) (T, error) {
		select {
		case v, ok := <-ch:
			if !ok {
				return v, Done
			}
			return v, nil
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
	})
}

// Async lets a blocking Source be used where an AsyncSource is expected.
// ctx is checked before each pull; a pull that has started cannot be
// interrupted.
func Async[T any](src Source[T]) AsyncSource[T] {
	return AsyncFunc[T](func(ctx context.Context) (T, error) {
		if err := ctx.Err(); err != nil {
			var zero T
			return zero, err
		}
		return src.Next()
	})
}
