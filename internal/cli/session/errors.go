package session

import (
	"errors"
	"fmt"

	"github.com/evently-dev/evently/internal/cli/gateway"
)

var (
	// ErrLoginSuperseded is returned by a login that was overtaken by a newer
	// login or a logout before it resolved. It never changes state.
	ErrLoginSuperseded = errors.New("login superseded by a newer request")

	ErrNotAuthenticated = errors.New("not logged in")
	ErrClosed           = errors.New("session closed")
	ErrMalformedLogin   = errors.New("login response is missing tokens")
)

// RequestFailure wraps a gateway failure with the session operation that caused it
type RequestFailure struct {
	Op  string
	Err error
}

func (f *RequestFailure) Error() string {
	return fmt.Sprintf("%s failed: %v", f.Op, f.Err)
}

func (f *RequestFailure) Unwrap() error {
	return f.Err
}

// StatusCode returns the backend status, or 0 when no response was received
func (f *RequestFailure) StatusCode() int {
	if httpErr, ok := gateway.AsHTTPError(f.Err); ok {
		return httpErr.StatusCode
	}
	return 0
}
