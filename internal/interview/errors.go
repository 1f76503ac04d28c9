package interview

import (
	"github.com/pkg/errors"

	"github.com/mind-engage/interview-console/internal/scoring"
)

// ErrNotFound is returned when a referenced template, question, interview or
// other resource does not exist.
var ErrNotFound = errors.New("not found")

// ValidationError reports input the store or evaluator refuses to accept.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Message: msg}
}

func invalidWrap(field, msg string, err error) *ValidationError {
	return &ValidationError{Field: field, Message: msg, Err: err}
}

func notFound(what, id string) error {
	return errors.Wrapf(ErrNotFound, "%s %s", what, id)
}

func validateWeight(w float64) error {
	if err := scoring.ValidateWeight(w); err != nil {
		return invalidWrap("weight", "must be a positive number", err)
	}
	return nil
}
