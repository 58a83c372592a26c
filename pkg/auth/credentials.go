package auth

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	twerrors "twharvest/pkg/errors"
)

// Credential is one complete authentication unit for the API.
type Credential struct {
	ConsumerKey    string `json:"consumer_key"`
	ConsumerSecret string `json:"consumer_secret"`
	AccessToken    string `json:"access_token"`
	AccessSecret   string `json:"access_secret"`
}

// Fields is the header of a credential table, in canonical order.
var Fields = []string{"consumer_key", "consumer_secret", "access_token", "access_secret"}

var (
	// ErrCredentialsNotFound is returned when a store holds no credential table
	ErrCredentialsNotFound = errors.New("credentials not found")

	// ErrStoreUnavailable is returned when a store cannot be written to
	ErrStoreUnavailable = errors.New("credential store unavailable")
)

// Source yields the ordered credential table a Pool is built from.
type Source interface {
	Load() ([]Credential, error)
	Name() string
}

// Store is a writable Source.
type Store interface {
	Source
	Save(creds []Credential) error
	Delete() error
}

// ID identifies the credential for per-credential bookkeeping such as pacing.
func (c Credential) ID() string {
	return c.ConsumerKey + ":" + c.AccessToken
}

// HasUserContext reports whether the access token pair is present.
func (c Credential) HasUserContext() bool {
	return c.AccessToken != "" && c.AccessSecret != ""
}

// Masked returns a copy safe for display
func (c Credential) Masked() Credential {
	return Credential{
		ConsumerKey:    Mask(c.ConsumerKey),
		ConsumerSecret: Mask(c.ConsumerSecret),
		AccessToken:    Mask(c.AccessToken),
		AccessSecret:   Mask(c.AccessSecret),
	}
}

// Mask hides all but the first and last four characters of s.
func Mask(s string) string {
	if len(s) <= 8 {
		return strings.Repeat("*", len(s))
	}
	return s[:4] + strings.Repeat("*", len(s)-8) + s[len(s)-4:]
}

// ParseCSV reads a credential table. The header must name the four
// credential fields, in any order; extra columns are ignored.
func ParseCSV(r io.Reader) ([]Credential, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, f := range Fields {
		if _, ok := index[f]; !ok {
			return nil, fmt.Errorf("missing column %q", f)
		}
	}

	var creds []Credential
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		get := func(field string) string {
			i := index[field]
			if i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}
		c := Credential{
			ConsumerKey:    get("consumer_key"),
			ConsumerSecret: get("consumer_secret"),
			AccessToken:    get("access_token"),
			AccessSecret:   get("access_secret"),
		}
		if c == (Credential{}) {
			continue
		}
		if c.ConsumerKey == "" || c.ConsumerSecret == "" {
			return nil, fmt.Errorf("line %d: consumer key and secret are required", line)
		}
		creds = append(creds, c)
	}
	return creds, nil
}

// WriteCSV writes creds as a credential table with a header row.
func WriteCSV(w io.Writer, creds []Credential) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Fields); err != nil {
		return err
	}
	for _, c := range creds {
		if err := writer.Write([]string{c.ConsumerKey, c.ConsumerSecret, c.AccessToken, c.AccessSecret}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// FileSource reads the credential table from a CSV file.
type FileSource struct {
	Path string
}

// Name implements Source
func (f FileSource) Name() string { return "file:" + f.Path }

// Load implements Source
func (f FileSource) Load() ([]Credential, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, twerrors.WrapConfiguration(err, "cannot open credentials file")
	}
	defer file.Close()

	creds, err := ParseCSV(file)
	if err != nil {
		return nil, twerrors.WrapConfiguration(err, "invalid credentials file %s", f.Path)
	}
	return creds, nil
}

// getConfigDir returns the twharvest configuration directory for the OS
func getConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			return "", errors.New("APPDATA environment variable not set")
		}
		configDir = filepath.Join(appData, "twharvest")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			configDir = filepath.Join(xdg, "twharvest")
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			configDir = filepath.Join(home, ".config", "twharvest")
		}
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return configDir, nil
}

// DefaultEncryptedPath is where the encrypted store lives when not configured.
func DefaultEncryptedPath() (string, error) {
	dir, err := getConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "credentials.enc"), nil
}
