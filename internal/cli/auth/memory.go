package auth

import "sync"

// MemoryStore keeps the pair in process memory. Used by tests and --storage=memory.
type MemoryStore struct {
	mu    sync.Mutex
	creds Credentials
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Save(creds Credentials) error {
	if !creds.Complete() {
		return ErrIncompleteCredentials
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds = creds
	return nil
}

func (m *MemoryStore) Load() (Credentials, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.creds.Complete() {
		return Credentials{}, ErrNoCredentials
	}
	return m.creds, nil
}

func (m *MemoryStore) AccessToken() (string, error) {
	return accessToken(m)
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds = Credentials{}
	return nil
}
