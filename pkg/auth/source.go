package auth

import (
	"fmt"

	"twharvest/pkg/config"
)

// PassphraseFunc supplies the encrypted store passphrase on demand.
type PassphraseFunc func() (string, error)

// OpenSource selects the credential source named by cfg.
func OpenSource(cfg config.CredentialsConfig, passphrase PassphraseFunc) (Source, error) {
	switch cfg.Source {
	case "file", "":
		return FileSource{Path: cfg.File}, nil
	case "env":
		return EnvironmentSource{}, nil
	case "keyring":
		return NewKeyringStore(cfg.Profile), nil
	case "encrypted":
		return OpenEncrypted(cfg, passphrase)
	default:
		return nil, fmt.Errorf("unknown credentials source %q", cfg.Source)
	}
}

// OpenStore is OpenSource restricted to writable stores.
func OpenStore(cfg config.CredentialsConfig, passphrase PassphraseFunc) (Store, error) {
	switch cfg.Source {
	case "keyring":
		return NewKeyringStore(cfg.Profile), nil
	case "encrypted":
		return OpenEncrypted(cfg, passphrase)
	default:
		return nil, fmt.Errorf("%w: source %q is read-only", ErrStoreUnavailable, cfg.Source)
	}
}

// OpenEncrypted opens the encrypted store at cfg.EncryptedFile or the default path.
func OpenEncrypted(cfg config.CredentialsConfig, passphrase PassphraseFunc) (*EncryptedFileStore, error) {
	path := cfg.EncryptedFile
	if path == "" {
		var err error
		if path, err = DefaultEncryptedPath(); err != nil {
			return nil, err
		}
	}
	pass := PassphraseFromEnv()
	if pass == "" && passphrase != nil {
		var err error
		if pass, err = passphrase(); err != nil {
			return nil, fmt.Errorf("failed to read passphrase: %w", err)
		}
	}
	return NewEncryptedFileStore(path, pass)
}
