package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// NotFoundError reports a missing job or profile.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

// PreconditionError reports that an operation's required prior state is
// missing. Message is shown to the user as-is.
type PreconditionError struct {
	Message string
}

func (e *PreconditionError) Error() string {
	return e.Message
}

// ExtractionError reports a model reply that could not be turned into a JSON
// object, even after the stricter re-prompt.
type ExtractionError struct {
	Task     string
	Attempts int
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("%s extraction failed after %d attempt(s): %v", e.Task, e.Attempts, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// RequestError reports a malformed or invalid client payload.
type RequestError struct {
	Message string
	Err     error
}

func (e *RequestError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateRequest runs struct tag validation and flattens the failures into a
// RequestError.
func validateRequest(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &RequestError{Message: "invalid request", Err: err}
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed on '%s'", fe.Namespace(), fe.Tag()))
	}
	return &RequestError{Message: "invalid request: " + strings.Join(msgs, "; ")}
}
