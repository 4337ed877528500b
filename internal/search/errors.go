package search

import (
	"errors"
	"fmt"
)

// Sentinel errors classifying search failures. Callers distinguish them with
// errors.Is after unwrapping.
var (
	// ErrInvalidConfiguration reports a configuration that must never be
	// scored: an empty inclusion set, a coordinate outside [0,1], or a
	// dimension count that does not match the space.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrEmptySearchSpace reports a space declared with zero dimensions.
	ErrEmptySearchSpace = errors.New("empty search space")

	// ErrScorerFit reports a numerical failure fitting the underlying model
	// for a single candidate. Batch evaluation absorbs it by degrading that
	// candidate's score to +Inf; every other error aborts the search.
	ErrScorerFit = errors.New("scorer fit failure")
)

// Error represents a search error with context that can be wrapped with
// additional information.
type Error struct {
	// Message describes the error that occurred.
	Message string
	// Op is the operation that caused the error.
	Op string
	// Component is the component where the error occurred.
	Component string
	// Err is the underlying error that triggered this one, if any.
	Err error
}

// Error returns the string representation of the error.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	var prefix string
	if e.Component != "" && e.Op != "" {
		prefix = fmt.Sprintf("%s: %s", e.Component, e.Op)
	} else if e.Component != "" {
		prefix = e.Component
	} else if e.Op != "" {
		prefix = e.Op
	}

	if e.Err != nil {
		if prefix != "" {
			return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Err)
		}
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	if prefix != "" {
		return fmt.Sprintf("%s: %s", prefix, e.Message)
	}
	return e.Message
}

// Unwrap returns the underlying error, if any.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// WithOperation adds operation context to the error.
func (e *Error) WithOperation(op string) *Error {
	e.Op = op
	return e
}

// WithComponent adds component context to the error.
func (e *Error) WithComponent(component string) *Error {
	e.Component = component
	return e
}

// NewError creates a new search error with the given message.
func NewError(message string) *Error {
	return &Error{
		Message: message,
	}
}

// NewErrorf creates a new search error with formatted message.
func NewErrorf(format string, args ...interface{}) *Error {
	return &Error{
		Message: fmt.Sprintf(format, args...),
	}
}

// WrapError wraps an existing error with additional context.
// If err is nil, WrapError returns nil.
func WrapError(err error, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Message: message,
		Err:     err,
	}
}

// WrapErrorf wraps an existing error with additional formatted context.
// If err is nil, WrapErrorf returns nil.
func WrapErrorf(err error, format string, args ...interface{}) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// Invalidf builds an error wrapping ErrInvalidConfiguration.
func Invalidf(format string, args ...interface{}) *Error {
	return WrapErrorf(ErrInvalidConfiguration, format, args...)
}
