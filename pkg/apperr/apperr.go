package apperr

import (
	"errors"
	"fmt"
)

// ValidationError rejects bad input before any processing happens.
// Controllers translate it to a 400.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func NewValidation(msg string) error {
	return &ValidationError{Msg: msg}
}

func NewValidationf(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// UpstreamError wraps a failure of an external collaborator (vector index,
// embedding model, LLM backend). The run fails; this system does not retry
// beyond the backend's own contract. Controllers translate it to a 502.
type UpstreamError struct {
	Op  string // which collaborator failed, e.g. "llm.route", "vector.search"
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func Upstream(op string, err error) error {
	return &UpstreamError{Op: op, Err: err}
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func IsUpstream(err error) bool {
	var u *UpstreamError
	return errors.As(err, &u)
}
