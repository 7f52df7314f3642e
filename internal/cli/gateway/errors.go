package gateway

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
)

// Failure categories, matched with errors.Is against an *HTTPError
var (
	ErrTransport    = errors.New("backend unreachable")
	ErrUnauthorized = errors.New("not authorized")
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
)

// HTTPError is the single normalized failure returned by the gateway.
// StatusCode is 0 when no response was received.
type HTTPError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
	Fields     map[string][]string
	Body       []byte
	Err        error
}

func (e *HTTPError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s %s: request failed: %v", e.Method, e.Path, e.Err)
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// Is maps the status code onto the failure categories
func (e *HTTPError) Is(target error) bool {
	switch target {
	case ErrTransport:
		return e.StatusCode == 0
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	case ErrValidation:
		return e.StatusCode == http.StatusBadRequest
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// AsHTTPError extracts the gateway failure from an error chain
func AsHTTPError(err error) (*HTTPError, bool) {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr, true
	}
	return nil, false
}

func newStatusError(method, path string, status int, body []byte) *HTTPError {
	message, fields := extractMessage(status, body)
	return &HTTPError{
		Method:     method,
		Path:       path,
		StatusCode: status,
		Message:    message,
		Fields:     fields,
		Body:       body,
	}
}

// extractMessage pulls a human readable message out of a backend error body.
// The backend answers with {"detail": ...}, {"message": ...}, {"error": ...},
// field errors {"email": ["..."]} or a bare list of strings.
func extractMessage(status int, body []byte) (string, map[string][]string) {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return http.StatusText(status), nil
	}
	if !gjson.Valid(trimmed) {
		return trimmed, nil
	}

	res := gjson.Parse(trimmed)

	if res.IsArray() {
		if first := res.Get("0"); first.Exists() {
			return first.String(), nil
		}
		return http.StatusText(status), nil
	}

	var message string
	for _, key := range []string{"detail", "message", "error", "non_field_errors.0"} {
		if v := res.Get(key); v.Exists() && v.String() != "" {
			message = v.String()
			break
		}
	}

	fields := make(map[string][]string)
	res.ForEach(func(key, value gjson.Result) bool {
		if !value.IsArray() || key.String() == "non_field_errors" {
			return true
		}
		for _, item := range value.Array() {
			fields[key.String()] = append(fields[key.String()], item.String())
		}
		return true
	})
	if len(fields) == 0 {
		fields = nil
	}

	if message == "" && len(fields) > 0 {
		names := make([]string, 0, len(fields))
		for name := range fields {
			names = append(names, name)
		}
		sort.Strings(names)
		message = fmt.Sprintf("%s: %s", names[0], strings.Join(fields[names[0]], " "))
	}

	if message == "" {
		message = http.StatusText(status)
	}
	return message, fields
}
