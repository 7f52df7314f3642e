package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is what the CLI can learn from a persisted access token without
// asking the backend
type Claims struct {
	UserID    string
	TokenType string
	ExpiresAt time.Time
}

// Expired reports whether the token is past its expiry at now
func (c *Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

type accessClaims struct {
	UserID    any    `json:"user_id"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// Resume inspects the persisted access token. The signature is not verified
// (only the backend holds the key) and the session stays anonymous: a restart
// always requires a fresh login before the current user is known.
func (s *Store) Resume() (*Claims, error) {
	token, err := s.creds.AccessToken()
	if err != nil {
		return nil, err
	}

	var claims accessClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return nil, fmt.Errorf("failed to decode access token: %w", err)
	}

	out := &Claims{TokenType: claims.TokenType}
	if claims.UserID != nil {
		out.UserID = fmt.Sprint(claims.UserID)
	}
	if claims.Subject != "" && out.UserID == "" {
		out.UserID = claims.Subject
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
