package httpapi

import (
	"net/http"

	"github.com/yungtweek/chat-mock/internal/mock"
)

// StatusFor maps a domain error kind to its HTTP status. Unknown kinds are 500.
func StatusFor(t mock.ErrorType) int {
	switch t {
	case mock.ErrInvalidRequest:
		return http.StatusBadRequest
	case mock.ErrModelNotFound:
		return http.StatusNotFound
	case mock.ErrUnauthorized:
		return http.StatusUnauthorized
	case mock.ErrRateLimitExceeded:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
