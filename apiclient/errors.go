package apiclient

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Common errors
var (
	// ErrMissingHost indicates the client was created without an API host
	ErrMissingHost = errors.New("API host is required")
	// ErrMissingToken indicates the client was created without an API token
	ErrMissingToken = errors.New("API token is required")
)

// HTTPError is returned for non-2xx responses when no ErrorHandler is installed.
type HTTPError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
	RequestID  string
	RetryAfter time.Duration
}

func (e *HTTPError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, body)
}

// NetworkError represents a failure that never produced an HTTP response.
type NetworkError struct {
	Method  string
	Path    string
	Attempt int
	Err     error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: network error: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

func retryAfterFromHeader(h http.Header) time.Duration {
	v := strings.TrimSpace(h.Get("Retry-After"))
	if v == "" {
		return 0
	}
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}
