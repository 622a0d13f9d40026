package status

import (
	"fmt"

	"github.com/pkg/errors"
)

// Error is a failure that maps to a wire status.
type Error struct {
	cause  error
	Status Status
}

func NewError(err error, status Status) Error {
	return Error{cause: err, Status: status}
}

func (e Error) Error() string {
	cause := ""
	if e.cause != nil {
		cause = e.cause.Error()
	}

	return fmt.Sprintf(
		"%d %s: %q", e.Status.Code, e.Status.ReasonPhrase, cause,
	)
}

func (e Error) Cause() error  { return e.cause }
func (e Error) Unwrap() error { return e.cause }

// Code returns the status code carried by err, if any.
func Code(err error) (code int, ok bool) {
	var se Error
	if errors.As(err, &se) {
		return se.Status.Code, true
	}
	return 0, false
}
