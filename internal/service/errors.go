package service

import "fmt"

// ValidationError reports missing or malformed caller input. Message is safe
// to show to the end user.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	return "validation: " + e.Message
}

// ProcessingError is the catch-all for anything that went wrong after the
// input was accepted. Fallback, when set, is a ready-to-display reply.
type ProcessingError struct {
	Message  string
	Fallback string
	Err      error
}

func (e *ProcessingError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return "processing: " + e.Message
	}
	return fmt.Sprintf("processing: %s: %v", e.Message, e.Err)
}

func (e *ProcessingError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

func newProcessingError(message, fallback string, err error) *ProcessingError {
	return &ProcessingError{Message: message, Fallback: fallback, Err: err}
}
