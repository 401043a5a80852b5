package testutils

import (
	"errors"

	"github.com/stretchr/testify/assert"
	"go.lepak.sg/cachediter/source"
	"golang.org/x/sync/errgroup"
)

type TestT interface {
	Log(...any)
	Logf(string, ...any)
	Error(...any)
	Errorf(string, ...any) // also used by testify/assert
}

// drainSlack bounds how far past the expected data Drain keeps pulling.
const drainSlack = 16

// Drain expects next to return data in order, then to stop.
// It returns the error next stopped with, or nil if it stopped with
// source.Done.
func Drain[T any](t TestT, data []T, next func() (T, error)) error {
	t.Logf("draining: expecting %v", data)
	for i, datum := range data {
		el, err := next()
		if err != nil {
			t.Errorf("stopped early with %v, expecting i=%d %v", err, i, datum)
			return stopErr(err)
		}
		assert.Equal(t, datum, el)
	}

	for i := 0; i < drainSlack; i++ {
		el, err := next()
		if err != nil {
			return stopErr(err)
		}
		t.Errorf("should have stopped, but received: %v", el)
	}

	t.Error("at the end of draining, sequence did not stop")
	return nil
}

func stopErr(err error) error {
	if errors.Is(err, source.Done) {
		return nil
	}
	return err
}

// Concurrently runs f(0) to f(n-1) on n goroutines released at once,
// and returns the first error.
func Concurrently(n int, f func(i int) error) error {
	var g errgroup.Group
	barrier := make(chan struct{})
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			<-barrier
			return f(i)
		})
	}
	close(barrier)
	return g.Wait()
}
