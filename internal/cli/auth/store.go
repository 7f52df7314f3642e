package auth

import (
	"errors"
	"net/url"
	"strings"
)

// Keys under which the credential pair is persisted
const (
	AccessTokenKey  = "accessToken"
	RefreshTokenKey = "refreshToken"
)

var (
	// ErrNoCredentials is returned when no complete credential pair is stored
	ErrNoCredentials = errors.New("not authenticated. Please run 'evently login' first")

	ErrIncompleteCredentials = errors.New("refusing to save incomplete credential pair")
)

// Credentials is the bearer pair issued by the backend on login
type Credentials struct {
	AccessToken  string
	RefreshToken string
}

// Complete reports whether both halves of the pair are present
func (c Credentials) Complete() bool {
	return c.AccessToken != "" && c.RefreshToken != ""
}

// CredentialStore persists the credential pair so it outlives a single process.
// Implementations store both entries or neither.
type CredentialStore interface {
	Save(creds Credentials) error
	Load() (Credentials, error)
	Clear() error
	AccessToken() (string, error)
}

// accessToken loads the pair and returns its access half
func accessToken(s CredentialStore) (string, error) {
	creds, err := s.Load()
	if err != nil {
		return "", err
	}
	return creds.AccessToken, nil
}

// Scope derives the storage namespace for a backend origin, so tokens issued
// by one backend are never sent to another.
func Scope(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return strings.TrimSuffix(baseURL, "/")
	}
	return u.Scheme + "://" + u.Host
}
