package llm

import (
	"errors"
	"fmt"
)

// ErrEmptyResponse is returned when a backend answers without any text.
var ErrEmptyResponse = errors.New("empty response")

// Error describes a failed generation call.
type Error struct {
	Provider Provider
	Message  string
	Cause    error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("llm %s: %s: %v", e.Provider, e.Message, e.Cause)
	}
	return fmt.Sprintf("llm %s: %s", e.Provider, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
