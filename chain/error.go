package chain

import (
	"context"

	"github.com/cenkalti/backoff/v4"
	"github.com/hashicorp/errwrap"
)

// DefaultMessage is used when a captured failure carries no usable message
const DefaultMessage = "An unexpected error occurred"

// UnknownFunc is reported when no step name could be attributed to a failure
const UnknownFunc = "unknown function"

// IsCanceled returns true when this error contains or is an error
// that means execution was canceled
func IsCanceled(err error) bool {
	return errwrap.Contains(err, context.Canceled.Error()) ||
		errwrap.Contains(err, context.DeadlineExceeded.Error())
}

// NewError creates an error record with an explicit status override
func NewError(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

// StepErr normalizes any failure into an error record
func StepErr(err error) *Error {
	switch e := err.(type) {
	case *Error:
		return e
	case *backoff.PermanentError:
		se := StepErr(e.Err)
		se.permanent = true
		return se
	case *PermanentError:
		se := StepErr(e.Err)
		se.permanent = true
		return se
	default:
		return &Error{Message: err.Error(), Cause: err}
	}
}

// Error is the record for a failed step. Status and Message are optional
// overrides for the error envelope; Func is the name of the step the
// failure is attributed to, stamped by the executor when the step did not
// set it itself.
type Error struct {
	Status  int
	Message string
	Func    string
	Cause   error

	permanent bool
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return DefaultMessage
}

// WrappedErrors implements errwrap.Wrapper from https://github.com/hashicorp/errwrap
func (e *Error) WrappedErrors() []error {
	if e.Cause == nil {
		return nil
	}
	return []error{e.Cause}
}

// Permanent marks an error as not worth retrying for use with Retry
func Permanent(err error) *PermanentError {
	switch e := err.(type) {
	case *backoff.PermanentError:
		return &PermanentError{Err: e.Err}
	case *PermanentError:
		return e
	default:
		return &PermanentError{Err: err}
	}
}

// PermanentError signals to the retry policy that the operation should not be retried.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string {
	return e.Err.Error()
}

// WrappedErrors implements errwrap.Wrapper from https://github.com/hashicorp/errwrap
func (e *PermanentError) WrappedErrors() []error {
	return []error{e.Err}
}
