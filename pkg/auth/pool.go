package auth

import (
	"sync"

	twerrors "twharvest/pkg/errors"
)

// Pool is an ordered, non-empty set of credentials with exactly one active.
// Callers never switch concurrently; the mutex only protects readers such
// as metrics collection.
type Pool struct {
	mu     sync.RWMutex
	creds  []Credential
	active int
}

// NewPool builds a pool with the first credential active.
func NewPool(creds []Credential) (*Pool, error) {
	if len(creds) == 0 {
		return nil, twerrors.Configuration("no credentials loaded")
	}
	cp := make([]Credential, len(creds))
	copy(cp, creds)
	return &Pool{creds: cp}, nil
}

// LoadPool reads src and builds a pool from it.
func LoadPool(src Source) (*Pool, error) {
	creds, err := src.Load()
	if err != nil {
		if twerrors.IsConfiguration(err) {
			return nil, err
		}
		return nil, twerrors.WrapConfiguration(err, "cannot load credentials from %s", src.Name())
	}
	if len(creds) == 0 {
		return nil, twerrors.Configuration("no credentials found in %s", src.Name())
	}
	return NewPool(creds)
}

// Switch makes index active and returns the previously active index.
func (p *Pool) Switch(index int) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if index < 0 || index >= len(p.creds) {
		return p.active, twerrors.IndexOutOfRange(index, len(p.creds))
	}
	prev := p.active
	p.active = index
	return prev, nil
}

// Active returns the active credential.
func (p *Pool) Active() Credential {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.creds[p.active]
}

// ActiveIndex returns the position of the active credential.
func (p *Pool) ActiveIndex() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.active
}

// Len returns the number of credentials.
func (p *Pool) Len() int {
	return len(p.creds)
}

// At returns the credential at index i. It panics when i is out of range.
func (p *Pool) At(i int) Credential {
	return p.creds[i]
}
