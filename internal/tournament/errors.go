package tournament

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is wrapped by every error about a tournament, entry, judge,
	// lap or battle that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrPrecondition matches every *PreconditionError.
	ErrPrecondition = errors.New("precondition failed")
)

// PreconditionError is a request that is invalid in the current state of the
// tournament. Nothing was written.
type PreconditionError struct {
	Op     string
	Reason string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

func (e *PreconditionError) Is(target error) bool {
	return target == ErrPrecondition
}

func precondition(op, format string, args ...any) error {
	return &PreconditionError{Op: op, Reason: fmt.Sprintf(format, args...)}
}

func notFound(entity string, id int64) error {
	return fmt.Errorf("%s %d: %w", entity, id, ErrNotFound)
}
