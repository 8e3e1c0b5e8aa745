package wizard

import (
	"errors"
	"fmt"
)

var (
	// ErrFinalStep is returned by Next on the last symptom step, where the
	// forward action is Submit.
	ErrFinalStep = errors.New("last question: submit instead")

	// ErrNotSubmittable is returned when Submit is attempted away from the
	// last symptom step.
	ErrNotSubmittable = errors.New("assessment can only be submitted from the last question")

	// ErrInFlight is returned when a submission is already outstanding.
	ErrInFlight = errors.New("assessment already submitted")

	// ErrHasResult is returned by navigation once a result is displayed.
	ErrHasResult = errors.New("assessment complete: reset to start again")

	// ErrClosed is returned after the wizard has been closed.
	ErrClosed = errors.New("wizard closed")

	// ErrUnknownQuestion is returned when an answer targets an unknown id.
	ErrUnknownQuestion = errors.New("unknown question")
)

// ValidationError reports a missing or out-of-range field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// SubmissionError wraps any failure to obtain a result from the scorer:
// transport errors, non-2xx statuses and malformed bodies alike.
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("assessment submission failed: %v", e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// UserMessage is the text shown in the blocking alert.
func (e *SubmissionError) UserMessage() string {
	return "An error occurred. Please try again."
}

// ErrStale is returned by Complete when the wizard was reset or closed
// while the submission was in flight. The response is discarded.
var ErrStale = errors.New("stale submission discarded")
