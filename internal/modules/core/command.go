package core

import (
	"errors"
	"fmt"
)

type Unit struct{}

type CommandError struct {
	Payload    interface{}
	StatusCode int
	Reason     *string
}

type CommandErrorOption func(*CommandError)

func WithReason(reason string) CommandErrorOption {
	return func(e *CommandError) {
		e.Reason = &reason
	}
}

func NewCommandError(statusCode int, payload interface{}, opts ...CommandErrorOption) CommandError {
	e := CommandError{
		StatusCode: statusCode,
		Payload:    payload,
	}

	for _, opt := range opts {
		opt(&e)
	}

	return e
}

func (r CommandError) Error() string {
	var values struct {
		Payload    interface{}
		StatusCode int
		Reason     string
	}

	values.Payload = r.Payload
	values.StatusCode = r.StatusCode

	if r.Reason != nil {
		values.Reason = *r.Reason
	}

	return fmt.Sprintf("%+v", values)
}

// Unwrap exposes the payload when it is an error so sentinel
// checks keep working through the command boundary.
func (r CommandError) Unwrap() error {
	if err, ok := r.Payload.(error); ok {
		return err
	}
	return nil
}

// ErrorStatus pairs a sentinel error with the status code a handler
// reports for it.
type ErrorStatus struct {
	Err        error
	StatusCode int
}

// MapError wraps err into a CommandError using the first matching
// sentinel. Unmatched errors become 500s. CommandErrors pass through.
func MapError(err error, statuses ...ErrorStatus) error {
	if err == nil {
		return nil
	}

	var commandErr CommandError
	if errors.As(err, &commandErr) {
		return commandErr
	}

	for _, s := range statuses {
		if errors.Is(err, s.Err) {
			return NewCommandError(s.StatusCode, err)
		}
	}

	return NewCommandError(500, err)
}

// StatusCode returns the status carried by err, or 500.
func StatusCode(err error) int {
	var commandErr CommandError
	if errors.As(err, &commandErr) {
		return commandErr.StatusCode
	}
	return 500
}
