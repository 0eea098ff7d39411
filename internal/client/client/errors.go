package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnavailable    = errors.New("server unavailable")
	ErrServerRejected = errors.New("server rejected request")
	ErrUnauthorized   = errors.New("unauthorized")
)

// ServerError is a non-2xx response from the server of record.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

func (e *ServerError) Is(target error) bool {
	switch target {
	case ErrServerRejected:
		return true
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	}
	return false
}
