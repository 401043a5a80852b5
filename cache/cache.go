// Package cache contains an append-only, ordered store of produced
// elements that ends with at most one terminal marker.
//
// Reads never block. Writes are serialized by the Cache itself, but
// package cached only ever writes from one goroutine at a time anyway.
package cache

import (
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"
)

// Kind tells how a Cache ended, if it did.
type Kind int

const (
	// More elements may still be appended.
	None Kind = iota
	// No element will ever be appended again.
	Exhausted
	// The source failed; Terminal.Err holds the failure.
	Failed
)

func (k Kind) String() string {
	switch k {
	case None:
		return "None"
	case Exhausted:
		return "Exhausted"
	case Failed:
		return "Failed"
	default:
		return "<invalid cache.Kind>"
	}
}

// Terminal describes the end of a Cache. Index is the length of the
// cache when the marker was recorded.
type Terminal struct {
	Kind  Kind
	Err   error
	Index int
}

var (
	ErrTerminated    = errors.New("cache: terminal marker already recorded")
	ErrIndexMismatch = errors.New("cache: error index is not the cache length")
)

// snapshot is never modified after it is published.
// values may share a backing array with later snapshots, but
// only indices >= len(values) are ever written through them.
type snapshot[T any] struct {
	values []T
	term   Terminal
}

// Cache is an append-only list with a terminal marker.
// The zero value is an empty Cache ready for use.
type Cache[T any] struct {
	mu   sync.Mutex // writers only
	snap atomic.Pointer[snapshot[T]]
}

// New creates an empty Cache with room for capacityHint elements
// before it has to grow.
func New[T any](capacityHint int) *Cache[T] {
	if capacityHint < 0 {
		capacityHint = 0
	}

	c := &Cache[T]{}
	c.snap.Store(&snapshot[T]{values: make([]T, 0, capacityHint)})
	return c
}

func (c *Cache[T]) load() *snapshot[T] {
	if s := c.snap.Load(); s != nil {
		return s
	}
	return &snapshot[T]{}
}

// Append adds v at index Len().
func (c *Cache[T]) Append(v T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.load()
	if s.term.Kind != None {
		return ErrTerminated
	}

	c.snap.Store(&snapshot[T]{values: append(s.values, v)})
	return nil
}

// MarkExhausted records that nothing more will be appended.
func (c *Cache[T]) MarkExhausted() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.load()
	if s.term.Kind != None {
		return ErrTerminated
	}

	c.snap.Store(&snapshot[T]{
		values: s.values,
		term:   Terminal{Kind: Exhausted, Index: len(s.values)},
	})
	return nil
}

// MarkError records that producing the element at index at failed with err.
// at must equal Len().
func (c *Cache[T]) MarkError(err error, at int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.load()
	if s.term.Kind != None {
		return ErrTerminated
	}
	if at != len(s.values) {
		return errors.Wrapf(ErrIndexMismatch, "at=%d len=%d", at, len(s.values))
	}

	c.snap.Store(&snapshot[T]{
		values: s.values,
		term:   Terminal{Kind: Failed, Err: err, Index: at},
	})
	return nil
}

// Get returns the element at index i. If i is not below Len(),
// ok is false and the caller has to wait for (or cause) an advance.
func (c *Cache[T]) Get(i int) (v T, ok bool) {
	s := c.load()
	if i < 0 || i >= len(s.values) {
		return v, false
	}
	return s.values[i], true
}

// Lookup is Get and Terminal read from the same instant, so a miss
// can be told apart from the end of the cache without a race.
func (c *Cache[T]) Lookup(i int) (v T, ok bool, term Terminal) {
	s := c.load()
	if i >= 0 && i < len(s.values) {
		return s.values[i], true, s.term
	}
	return v, false, s.term
}

// Len returns the number of elements in the cache.
func (c *Cache[T]) Len() int {
	return len(c.load().values)
}

// Terminal returns the terminal marker. Kind is None while the
// cache can still grow.
func (c *Cache[T]) Terminal() Terminal {
	return c.load().term
}

// Values returns a copy of the elements cached so far.
func (c *Cache[T]) Values() []T {
	s := c.load()
	out := make([]T, len(s.values))
	copy(out, s.values)
	return out
}
