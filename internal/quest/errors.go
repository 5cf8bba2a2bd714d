package quest

import (
	"errors"
	"fmt"
)

// ErrNotFound matches every *NotFoundError through errors.Is.
var ErrNotFound = errors.New("not found")

// ValidationError reports bad caller input.  It is never retried.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// NotFoundError reports an unknown id or one owned by someone else.
type NotFoundError struct {
	Kind string
	ID   uint64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// StoreError wraps a failed call to the persistence layer.  Callers surface it
// as a generic failure.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
