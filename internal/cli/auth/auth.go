package auth

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	service = "evently-cli"
)

// secrets is the subset of go-keyring the store uses
type secrets interface {
	Get(service, user string) (string, error)
	Set(service, user, password string) error
	Delete(service, user string) error
}

type osKeyring struct{}

func (osKeyring) Get(service, user string) (string, error) { return keyring.Get(service, user) }
func (osKeyring) Set(service, user, password string) error { return keyring.Set(service, user, password) }
func (osKeyring) Delete(service, user string) error { return keyring.Delete(service, user) }

// KeyringStore persists the credential pair in the OS keychain/credential manager
type KeyringStore struct {
	scope   string
	secrets secrets
}

// NewKeyringStore creates a keyring-backed store namespaced by scope (see Scope)
func NewKeyringStore(scope string) *KeyringStore {
	return &KeyringStore{scope: scope, secrets: osKeyring{}}
}

// getKeyringKey returns a unique keyring user for one entry of the pair
func (s *KeyringStore) getKeyringKey(name string) string {
	return fmt.Sprintf("%s@%s", name, s.scope)
}

// Save writes both tokens. The keyring has no transactions, so a failed second
// write restores the previous access token. If that rollback fails too, both
// errors are returned.
func (s *KeyringStore) Save(creds Credentials) error {
	if !creds.Complete() {
		return ErrIncompleteCredentials
	}

	accessKey := s.getKeyringKey(AccessTokenKey)
	previous, prevErr := s.secrets.Get(service, accessKey)

	if err := s.secrets.Set(service, accessKey, creds.AccessToken); err != nil {
		return fmt.Errorf("failed to save access token: %w", err)
	}

	if err := s.secrets.Set(service, s.getKeyringKey(RefreshTokenKey), creds.RefreshToken); err != nil {
		err = fmt.Errorf("failed to save refresh token: %w", err)

		var rollbackErr error
		if prevErr == nil {
			rollbackErr = s.secrets.Set(service, accessKey, previous)
		} else {
			rollbackErr = s.secrets.Delete(service, accessKey)
		}
		if rollbackErr != nil && !errors.Is(rollbackErr, keyring.ErrNotFound) {
			return errors.Join(err, fmt.Errorf("failed to roll back access token: %w", rollbackErr))
		}
		return err
	}

	return nil
}

// Load retrieves the pair. A half-present pair counts as absent.
func (s *KeyringStore) Load() (Credentials, error) {
	access, err := s.get(AccessTokenKey)
	if err != nil {
		return Credentials{}, err
	}
	refresh, err := s.get(RefreshTokenKey)
	if err != nil {
		return Credentials{}, err
	}
	return Credentials{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *KeyringStore) get(name string) (string, error) {
	value, err := s.secrets.Get(service, s.getKeyringKey(name))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNoCredentials
		}
		return "", fmt.Errorf("failed to load %s: %w", name, err)
	}
	return value, nil
}

// AccessToken returns the stored access token
func (s *KeyringStore) AccessToken() (string, error) {
	return accessToken(s)
}

// Clear removes both entries. Missing entries are not an error.
func (s *KeyringStore) Clear() error {
	var errs []error
	for _, name := range []string{AccessTokenKey, RefreshTokenKey} {
		if err := s.secrets.Delete(service, s.getKeyringKey(name)); err != nil && !errors.Is(err, keyring.ErrNotFound) {
			errs = append(errs, fmt.Errorf("failed to delete %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}
