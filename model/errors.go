package model

import (
	"errors"
	"fmt"
)

// UserError is a failure the user can correct. Its message is shown verbatim.
type UserError struct {
	Msg string
	Err error
}

func (e *UserError) Error() string {
	return e.Msg
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// UserErrorf formats a UserError.
func UserErrorf(format string, args ...interface{}) error {
	return &UserError{Msg: fmt.Sprintf(format, args...)}
}

// NewUserError wraps a sentinel error with a user-facing message.
func NewUserError(err error, format string, args ...interface{}) error {
	return &UserError{Msg: fmt.Sprintf(format, args...), Err: err}
}

// AsUserError returns the UserError wrapped in err, if any.
func AsUserError(err error) (*UserError, bool) {
	var ue *UserError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}
