package study

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCollection is returned when Start is called without a collection ID.
	ErrEmptyCollection = errors.New("collection ID is required")

	// ErrSessionAbandoned is returned by Start when the session was reset or
	// replaced while the batch was being fetched.
	ErrSessionAbandoned = errors.New("session abandoned while loading")
)

// SessionLoadError indicates the session batch could not be fetched. No
// partial state is retained.
type SessionLoadError struct {
	CollectionID string
	Mode         Mode
	Err          error
}

func (e *SessionLoadError) Error() string {
	return fmt.Sprintf("load %s session for collection %q: %v", e.Mode, e.CollectionID, e.Err)
}

func (e *SessionLoadError) Unwrap() error { return e.Err }

// SubmissionError indicates an answer could not be submitted. Local counters
// are unchanged and the same item may be submitted again.
type SubmissionError struct {
	ItemID string
	Err    error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("submit answer for item %q: %v", e.ItemID, e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }
