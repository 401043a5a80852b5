package cached

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// ErrConcurrentUse is returned by a cursor's Next when another Next on the
// same cursor has not returned yet. Share the Iterable, not the cursor.
var ErrConcurrentUse = errors.New("cached: cursor used by more than one goroutine at once")

// SourceError is the failure of the source while producing the element
// at Index. It is created once and the same value is handed to every
// cursor that reaches Index, for the lifetime of the Iterable.
type SourceError struct {
	Index int
	Err   error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("cached: source failed at index %d: %v", e.Index, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}
