package mock

import (
	"encoding/json"
	"errors"
	"fmt"
)

type ErrorType string

const (
	ErrInvalidRequest    ErrorType = "InvalidRequest"
	ErrModelNotFound     ErrorType = "ModelNotFound"
	ErrInternal          ErrorType = "InternalError"
	ErrRateLimitExceeded ErrorType = "RateLimitExceeded"
	ErrUnauthorized      ErrorType = "Unauthorized"
)

// Known reports whether t is one of the five error kinds.
func (t ErrorType) Known() bool {
	switch t {
	case ErrInvalidRequest, ErrModelNotFound, ErrInternal, ErrRateLimitExceeded, ErrUnauthorized:
		return true
	}
	return false
}

// ChatCompletionsError is a domain failure. It is a value, produced by the
// layers around the generator (validation, model routing, fault injection)
// and translated to a transport signal at the edge.
type ChatCompletionsError struct {
	ErrorType ErrorType `json:"error_type"`
	Message   string    `json:"message"`
	RequestID *string   `json:"request_id"`
}

func (e *ChatCompletionsError) Error() string {
	return fmt.Sprintf("%s: %s", e.ErrorType, e.Message)
}

// WithRequestID returns a copy of e tagged with id.
func (e *ChatCompletionsError) WithRequestID(id string) *ChatCompletionsError {
	out := *e
	if id != "" {
		out.RequestID = &id
	}
	return &out
}

// JSON encodes e. It cannot fail for this shape, but callers still get an error back.
func (e *ChatCompletionsError) JSON() ([]byte, error) {
	return json.Marshal(e)
}

func newError(t ErrorType, format string, args ...any) *ChatCompletionsError {
	return &ChatCompletionsError{ErrorType: t, Message: fmt.Sprintf(format, args...)}
}

func InvalidRequest(format string, args ...any) *ChatCompletionsError {
	return newError(ErrInvalidRequest, format, args...)
}

func ModelNotFound(model string) *ChatCompletionsError {
	return newError(ErrModelNotFound, "model %q not found", model)
}

func InternalError(format string, args ...any) *ChatCompletionsError {
	return newError(ErrInternal, format, args...)
}

func RateLimitExceeded(format string, args ...any) *ChatCompletionsError {
	return newError(ErrRateLimitExceeded, format, args...)
}

func Unauthorized(format string, args ...any) *ChatCompletionsError {
	return newError(ErrUnauthorized, format, args...)
}

// AsDomainError returns the *ChatCompletionsError in err's chain, or wraps
// err as an InternalError.
func AsDomainError(err error) *ChatCompletionsError {
	var derr *ChatCompletionsError
	if errors.As(err, &derr) {
		return derr
	}
	return InternalError("%s", err.Error())
}
