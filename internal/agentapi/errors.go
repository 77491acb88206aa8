package agentapi

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found in agent API")
	ErrInvalidResponse = errors.New("invalid response from agent API")
	ErrMissingFile     = errors.New("no file to upload")
)

// APIError is a non-2xx response from the agent API.
type APIError struct {
	StatusCode int
	Method     string
	Path       string
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("agent API %s %s: status %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("agent API %s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// Is lets a 404 match ErrNotFound.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == 404
}

// IsNotFound reports whether err is a 404 from the agent API.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
