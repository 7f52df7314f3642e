package gateway

import (
	"net/http"

	"github.com/oklog/ulid/v2"
)

const (
	bearerPrefix    = "Bearer "
	RequestIDHeader = "X-Request-ID"
)

// Interceptor rewrites an outgoing request before dispatch
type Interceptor func(*http.Request) (*http.Request, error)

// TokenSource yields the current access token
type TokenSource interface {
	AccessToken() (string, error)
}

// TokenFunc adapts a function to TokenSource
type TokenFunc func() (string, error)

func (f TokenFunc) AccessToken() (string, error) {
	return f()
}

// BearerToken attaches the stored access token to every request. A missing or
// unreadable token sends the request unauthenticated; the backend decides.
func BearerToken(src TokenSource) Interceptor {
	return func(req *http.Request) (*http.Request, error) {
		token, err := src.AccessToken()
		if err != nil || token == "" {
			return req, nil
		}
		req.Header.Set("Authorization", bearerPrefix+token)
		return req, nil
	}
}

// RequestID tags each request with a ULID unless the caller set one
func RequestID() Interceptor {
	return func(req *http.Request) (*http.Request, error) {
		if req.Header.Get(RequestIDHeader) == "" {
			req.Header.Set(RequestIDHeader, ulid.Make().String())
		}
		return req, nil
	}
}

// UserAgent sets a fixed User-Agent header
func UserAgent(ua string) Interceptor {
	return func(req *http.Request) (*http.Request, error) {
		req.Header.Set("User-Agent", ua)
		return req, nil
	}
}

// chain applies interceptors in registration order
func chain(req *http.Request, interceptors []Interceptor) (*http.Request, error) {
	var err error
	for _, intercept := range interceptors {
		req, err = intercept(req)
		if err != nil {
			return nil, err
		}
	}
	return req, nil
}
