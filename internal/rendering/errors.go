// Package rendering lays out plain text on fixed-size pages and serializes it as PDF.
package rendering

import "fmt"

// RenderError represents a failure to produce the document bytes.
type RenderError struct {
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("render error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("render error: %s", e.Message)
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}
