package auth

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "twharvest"
	keyringPrefix  = "pool_"
)

// KeyringStore keeps a credential table in the system keychain, one entry
// per profile, serialized as CSV text.
type KeyringStore struct {
	profile string
}

// NewKeyringStore creates a keyring store for profile
func NewKeyringStore(profile string) *KeyringStore {
	if profile == "" {
		profile = "default"
	}
	return &KeyringStore{profile: profile}
}

// Name implements Source
func (k *KeyringStore) Name() string { return "keyring:" + k.profile }

// Save replaces the profile's credential table
func (k *KeyringStore) Save(creds []Credential) error {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, creds); err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}
	if err := keyring.Set(keyringService, keyringPrefix+k.profile, buf.String()); err != nil {
		return fmt.Errorf("failed to store in keyring: %w", err)
	}
	return nil
}

// Load implements Source
func (k *KeyringStore) Load() ([]Credential, error) {
	data, err := keyring.Get(keyringService, keyringPrefix+k.profile)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, ErrCredentialsNotFound
		}
		return nil, fmt.Errorf("failed to retrieve from keyring: %w", err)
	}
	return ParseCSV(strings.NewReader(data))
}

// Delete removes the profile from the keychain
func (k *KeyringStore) Delete() error {
	if err := keyring.Delete(keyringService, keyringPrefix+k.profile); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrCredentialsNotFound
		}
		return fmt.Errorf("failed to delete from keyring: %w", err)
	}
	return nil
}
