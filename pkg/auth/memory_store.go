package auth

import "sync"

// MemoryStore holds a credential table in process memory.
type MemoryStore struct {
	mu    sync.Mutex
	creds []Credential
	saved bool

	// LoadErr, when set, is returned by Load.
	LoadErr error
}

// NewMemoryStore returns a store preloaded with creds
func NewMemoryStore(creds ...Credential) *MemoryStore {
	return &MemoryStore{creds: creds, saved: len(creds) > 0}
}

// Name implements Source
func (m *MemoryStore) Name() string { return "memory" }

// Load implements Source
func (m *MemoryStore) Load() ([]Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	if !m.saved {
		return nil, ErrCredentialsNotFound
	}
	out := make([]Credential, len(m.creds))
	copy(out, m.creds)
	return out, nil
}

// Save implements Store
func (m *MemoryStore) Save(creds []Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds = append([]Credential(nil), creds...)
	m.saved = true
	return nil
}

// Delete implements Store
func (m *MemoryStore) Delete() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.saved {
		return ErrCredentialsNotFound
	}
	m.creds = nil
	m.saved = false
	return nil
}
