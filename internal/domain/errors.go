package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrQuizNotFound indicates the catalog has no quiz for a goal.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrOptionNotFound indicates a selected option index is invalid.
	ErrOptionNotFound = errors.New("option not found")
	// ErrNoSelection is returned when advancing before an option is chosen.
	ErrNoSelection = errors.New("no option selected")
	// ErrNotReady is returned when an operation does not fit the session phase.
	ErrNotReady = errors.New("quiz session not ready")
	// ErrAlreadySubmitted is returned when a completed attempt was already persisted.
	ErrAlreadySubmitted = errors.New("score already submitted")
	// ErrInvalidSubmission indicates a score submission that does not match the catalog.
	ErrInvalidSubmission = errors.New("invalid score submission")
	// ErrAuthRequired indicates missing or rejected credentials.
	ErrAuthRequired = errors.New("authentication required")
)

// NotFoundError reports that no quiz exists for a goal.
type NotFoundError struct {
	GoalID GoalID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no quiz found for goal %d", e.GoalID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrQuizNotFound }

// TransientFetchError wraps a network or backend failure while reading.
type TransientFetchError struct {
	Op  string
	Err error
}

func (e *TransientFetchError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransientFetchError) Unwrap() error { return e.Err }

// AuthRequiredError reports that the session context lacks credentials.
type AuthRequiredError struct {
	Reason string
}

func (e *AuthRequiredError) Error() string {
	if e.Reason == "" {
		return ErrAuthRequired.Error()
	}
	return ErrAuthRequired.Error() + ": " + e.Reason
}

func (e *AuthRequiredError) Is(target error) bool { return target == ErrAuthRequired }

// SubmissionError wraps a failed score submission. The completed attempt is
// kept, so the submission can be retried.
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("submit score: %v", e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// Retryable reports whether resubmitting may succeed.
func (e *SubmissionError) Retryable() bool {
	return !errors.Is(e.Err, ErrInvalidSubmission)
}
