package errors

import (
	"errors"
	"net/http"
)

// MapToStatusCode translates domain sentinels into HTTP status codes at the
// transport boundary. Anything unrecognized is a 500: callers log the cause,
// clients only see the class of failure.
func MapToStatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrMalformedEmail), errors.Is(err, ErrInvalidPassword), errors.Is(err, ErrEmptyMessage):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnknownAccount), errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrNotSignedIn):
		return http.StatusUnauthorized
	case errors.Is(err, ErrUserAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrUnreachable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
