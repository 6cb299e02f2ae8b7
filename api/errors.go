package api

import (
	"fmt"
	"net/http"

	apperrors "github.com/jrsteele09/sanctyr/internal/errors"
)

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Code       string
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
}

// Is lets callers match on the package sentinels.
func (e *StatusError) Is(target error) bool {
	switch target {
	case apperrors.ErrNotAuthenticated:
		return e.StatusCode == http.StatusUnauthorized
	case apperrors.ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case apperrors.ErrRateLimited:
		return e.StatusCode == http.StatusTooManyRequests
	case apperrors.ErrInvalidRequest:
		return e.StatusCode == http.StatusBadRequest
	case apperrors.ErrUserExists:
		return e.StatusCode == http.StatusConflict
	}
	return false
}

func IsUnauthorized(err error) bool {
	var se *StatusError
	return apperrors.As(err, &se) && se.StatusCode == http.StatusUnauthorized
}
