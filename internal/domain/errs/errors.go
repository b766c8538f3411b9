// Package errs defines the error taxonomy shared by the analysis pipeline and
// the HTTP layer. Every component returns *Error values (or wraps them), and
// the router maps the Kind of the outermost *Error to a status code.
package errs

import (
	"errors"
	"fmt"
)

// Re-exported so callers only need one errors import.
var (
	Is = errors.Is
	As = errors.As
)

// Kind classifies an error for status mapping.
type Kind int

const (
	KindInternal Kind = iota
	KindInput
	KindNotFound
	KindAuth
	KindUnsupportedModel
	KindExtraction
	KindProvider
	KindMalformedResponse
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindNotFound:
		return "not_found"
	case KindAuth:
		return "auth"
	case KindUnsupportedModel:
		return "unsupported_model"
	case KindExtraction:
		return "extraction"
	case KindProvider:
		return "provider"
	case KindMalformedResponse:
		return "malformed_response"
	case KindValidation:
		return "validation"
	default:
		return "internal"
	}
}

// Error carries a user-facing message plus an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func newf(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: cause}
}

// Input is a caller mistake (400).
func Input(format string, args ...any) *Error { return newf(KindInput, nil, format, args...) }

// NotFound means the resource does not exist or is not owned by the caller (404).
func NotFound(format string, args ...any) *Error { return newf(KindNotFound, nil, format, args...) }

// Auth is a missing or rejected credential.
func Auth(format string, args ...any) *Error { return newf(KindAuth, nil, format, args...) }

// UnsupportedModel is returned by the dispatcher before any provider call.
func UnsupportedModel(model string) *Error {
	return &Error{Kind: KindUnsupportedModel, Message: "Invalid model type in preferences", Err: fmt.Errorf("model %q", model)}
}

// Extraction wraps a spreadsheet read failure.
func Extraction(cause error, format string, args ...any) *Error {
	return newf(KindExtraction, cause, format, args...)
}

// Provider wraps an LLM backend failure.
func Provider(cause error, format string, args ...any) *Error {
	return newf(KindProvider, cause, format, args...)
}

// Malformed means the completion contained no parseable JSON object.
func Malformed(cause error) *Error {
	return &Error{Kind: KindMalformedResponse, Message: "Invalid JSON response from LLM", Err: cause}
}

// Validation means the completion parsed but violated the expected schema.
func Validation(format string, args ...any) *Error {
	return newf(KindValidation, nil, format, args...)
}

// Internal wraps anything unexpected (store failures and the like).
func Internal(cause error, format string, args ...any) *Error {
	return newf(KindInternal, cause, format, args...)
}

// KindOf returns the kind of the outermost *Error in the chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the message of the outermost *Error, or err.Error().
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
