package engine

import (
	"errors"
	"fmt"

	"github.com/abhisek/skillforge/internal/store"
)

// ErrNotReady is returned before a catalog has been loaded.
var ErrNotReady = errors.New("skill catalog not loaded")

// NotFoundError reports an unknown learner or skill. It matches
// store.ErrNotFound with errors.Is.
type NotFoundError struct {
	Kind string // "learner" or "skill"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return store.ErrNotFound }

// ValidationError reports malformed input to an engine operation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ExternalServiceError wraps a failure in a post-recompute hook. It is
// logged and never returned from a recompute.
type ExternalServiceError struct {
	Service string
	Err     error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("external service %s: %v", e.Service, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

func learnerNotFound(err error, userID string) error {
	if errors.Is(err, store.ErrNotFound) {
		return &NotFoundError{Kind: "learner", ID: userID}
	}
	return err
}
