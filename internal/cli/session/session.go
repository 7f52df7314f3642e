// Package session holds who is logged in. A Store is created once at startup,
// handed to whatever needs it and closed on shutdown; there is no package
// level state.
package session

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/rs/zerolog"

	"github.com/evently-dev/evently/internal/cli/auth"
)

const (
	loginPath    = "core/login/"
	registerPath = "core/register/"
	activatePath = "core/activate/%s/"
)

// State of the session
type State int

const (
	Anonymous State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "anonymous"
}

// Requester is the part of the gateway the session needs
type Requester interface {
	Do(ctx context.Context, method, path string, body, out any) error
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
	User    *User  `json:"user"`
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Store is the single holder of the current user
type Store struct {
	gw     Requester
	creds  auth.CredentialStore
	logger zerolog.Logger

	mu          sync.Mutex
	user        *User
	loginSeq    uint64
	cancelLogin context.CancelFunc
	closed      bool
}

// New creates an anonymous session. Nothing is read from storage.
func New(gw Requester, creds auth.CredentialStore, logger zerolog.Logger) *Store {
	return &Store{
		gw:     gw,
		creds:  creds,
		logger: logger.With().Str("component", "session").Logger(),
	}
}

// Login authenticates against the backend. On success both tokens are
// persisted and the session becomes authenticated; on failure nothing changes.
// Starting a login cancels any login still in flight, and only the most
// recently started one may change state.
func (s *Store) Login(ctx context.Context, email, password string) (*User, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	s.supersedeLocked()
	seq := s.loginSeq
	ctx, cancel := context.WithCancel(ctx)
	s.cancelLogin = cancel
	s.mu.Unlock()
	defer cancel()

	s.logger.Debug().Str("email", email).Msg("Logging in")

	var resp loginResponse
	err := s.gw.Do(ctx, http.MethodPost, loginPath, loginRequest{Email: email, Password: password}, &resp)

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.loginSeq || s.closed {
		s.logger.Debug().Str("email", email).Msg("Discarding superseded login")
		return nil, ErrLoginSuperseded
	}
	s.cancelLogin = nil

	if err != nil {
		return nil, &RequestFailure{Op: "login", Err: err}
	}
	if resp.Access == "" || resp.Refresh == "" {
		return nil, &RequestFailure{Op: "login", Err: ErrMalformedLogin}
	}

	// Without a user payload only the identifier the caller supplied is known
	user := resp.User
	if user == nil {
		user = &User{Email: email}
	}

	if err := s.creds.Save(auth.Credentials{AccessToken: resp.Access, RefreshToken: resp.Refresh}); err != nil {
		return nil, fmt.Errorf("failed to persist credentials: %w", err)
	}

	s.user = user
	s.logger.Info().Int64("user_id", user.ID).Str("role", user.Role).Msg("Session authenticated")

	return user.clone(), nil
}

// supersedeLocked invalidates any in-flight login. Caller holds mu.
func (s *Store) supersedeLocked() {
	if s.cancelLogin != nil {
		s.cancelLogin()
		s.cancelLogin = nil
	}
	s.loginSeq++
}

// Logout clears the stored credentials and the current user. It never calls
// the network and never fails; storage errors are logged.
func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.supersedeLocked()

	if err := s.creds.Clear(); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to clear stored credentials")
	}

	if s.user != nil {
		s.logger.Info().Int64("user_id", s.user.ID).Msg("Session cleared")
	}
	s.user = nil
}

// Register creates a backend account. The account needs email activation
// before it can log in, so session state and storage are left alone.
func (s *Store) Register(ctx context.Context, username, email, password string) error {
	body := registerRequest{Username: username, Email: email, Password: password}
	if err := s.gw.Do(ctx, http.MethodPost, registerPath, body, nil); err != nil {
		return &RequestFailure{Op: "register", Err: err}
	}
	return nil
}

// Activate confirms an account with the token from the activation email and
// returns the backend's message. Session state is left alone.
func (s *Store) Activate(ctx context.Context, token string) (string, error) {
	var resp struct {
		Message string `json:"message"`
	}
	path := fmt.Sprintf(activatePath, url.PathEscape(token))
	if err := s.gw.Do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return "", &RequestFailure{Op: "activate", Err: err}
	}
	return resp.Message, nil
}

// CurrentUser returns a copy of the current user
func (s *Store) CurrentUser() (*User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return nil, false
	}
	return s.user.clone(), true
}

// State returns the current session state
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return Anonymous
	}
	return Authenticated
}

// IsAuthenticated reports whether a user is logged in
func (s *Store) IsAuthenticated() bool {
	return s.State() == Authenticated
}

// UpdateUser replaces the current user snapshot, e.g. after a profile edit
func (s *Store) UpdateUser(u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return ErrNotAuthenticated
	}
	if u == nil {
		return fmt.Errorf("user must not be nil")
	}
	s.user = u.clone()
	return nil
}

// Close cancels any in-flight login. Later logins fail with ErrClosed.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.supersedeLocked()
	s.closed = true
}
