package cached

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"go.lepak.sg/cachediter/cache"
	"go.lepak.sg/cachediter/source"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// locker is the single mutual exclusion primitive of a state.
// Only the goroutine holding it may pull from the source or
// write to the cache.
type locker interface {
	lock(ctx context.Context) error
	unlock()
}

// mutexLocker blocks and ignores ctx.
type mutexLocker struct {
	mu sync.Mutex
}

func (l *mutexLocker) lock(context.Context) error {
	l.mu.Lock()
	return nil
}

func (l *mutexLocker) unlock() {
	l.mu.Unlock()
}

// semaLocker gives up waiting when ctx ends, and refuses to start
// waiting once it has.
type semaLocker struct {
	sema *semaphore.Weighted
}

func newSemaLocker() *semaLocker {
	return &semaLocker{sema: semaphore.NewWeighted(1)}
}

func (l *semaLocker) lock(ctx context.Context) error {
	// Acquire succeeds on an ended ctx if the semaphore is free
	if err := ctx.Err(); err != nil {
		return err
	}
	return l.sema.Acquire(ctx, 1)
}

func (l *semaLocker) unlock() {
	l.sema.Release(1)
}

// puller produces the next element of the source.
type puller[T any] func(ctx context.Context) (T, error)

// state is shared by every cursor of one Iterable or AsyncIterable.
type state[T any] struct {
	cache  *cache.Cache[T]
	lock   locker
	logger *zap.Logger
	pulls  atomic.Int64

	// protected by lock
	pull  puller[T]
	build func() puller[T]
}

func newState[T any](o *options, l locker, build func() puller[T]) *state[T] {
	return &state[T]{
		cache:  cache.New[T](o.capacityHint),
		lock:   l,
		logger: o.logger.With(zap.String("iterable", o.name)),
		build:  build,
	}
}

// fetch returns the element at pos, advancing the source if needed.
// It returns source.Done past the end, and the recorded *SourceError
// at or past a failure. Any other error means the caller's ctx ended
// and nothing was recorded.
func (s *state[T]) fetch(ctx context.Context, pos int) (T, error) {
	var zero T

	// an element or a terminal marker, once published, never changes
	v, ok, term := s.cache.Lookup(pos)
	if ok {
		return v, nil
	}
	if err := terminalErr(term); err != nil {
		return zero, err
	}

	if err := s.lock.lock(ctx); err != nil {
		return zero, err
	}
	defer s.lock.unlock()

	// re-check: whoever held the lock before us may have pulled pos already
	for {
		v, ok, term := s.cache.Lookup(pos)
		if ok {
			return v, nil
		}
		if err := terminalErr(term); err != nil {
			return zero, err
		}
		if err := s.advance(ctx); err != nil {
			return zero, err
		}
	}
}

func terminalErr(term cache.Terminal) error {
	switch term.Kind {
	case cache.Exhausted:
		return source.Done
	case cache.Failed:
		return term.Err
	default:
		return nil
	}
}

// advance pulls one element and records the outcome in the cache.
// The lock must be held. A non-nil error means the pull was abandoned
// because ctx ended.
func (s *state[T]) advance(ctx context.Context) error {
	idx := s.cache.Len()
	start := time.Now()

	v, err := s.pullOne(ctx)
	s.pulls.Add(1)

	switch {
	case err == nil:
		if err := s.cache.Append(v); err != nil {
			return errors.NewAssertionErrorWithWrappedErrf(err, "append at index %d", idx)
		}
		s.logger.Debug("advanced",
			zap.Int("index", idx),
			zap.Duration("took", time.Since(start)))

	case errors.Is(err, source.Done):
		if err := s.cache.MarkExhausted(); err != nil {
			return errors.NewAssertionErrorWithWrappedErrf(err, "exhaust at index %d", idx)
		}
		s.logger.Debug("source exhausted", zap.Int("length", idx))

	case ctx.Err() != nil && errors.Is(err, ctx.Err()):
		s.logger.Debug("pull abandoned",
			zap.Int("index", idx),
			zap.Error(err))
		return err

	default:
		serr := &SourceError{Index: idx, Err: err}
		if err := s.cache.MarkError(serr, idx); err != nil {
			return errors.NewAssertionErrorWithWrappedErrf(err, "fail at index %d", idx)
		}
		s.logger.Warn("source failed",
			zap.Int("index", idx),
			zap.Error(err))
	}

	return nil
}

// pullOne builds the source on first use and pulls from it.
// A panic in either is returned as an error.
func (s *state[T]) pullOne(ctx context.Context) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf("source panicked: %v", r)
		}
	}()

	if s.pull == nil {
		s.pull = s.build()
		s.build = nil
	}
	return s.pull(ctx)
}
