package userlist

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"twharvest/pkg/logger"
)

const appName = "twharvest"

// FileName is the list's file name inside the data directory.
const FileName = "users.json"

const maxScreenNameLen = 15

// List is the persisted set of screen names harvested by default
type List struct {
	Users     []string  `json:"users"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int       `json:"version"`
}

// Manager loads and saves the user list
type Manager struct {
	path   string
	logger logger.Logger
}

// NewManager creates a manager for the list at path, or for the default
// location in the data directory when path is empty
func NewManager(path string) (*Manager, error) {
	if path == "" {
		dataDir, err := getDataDirectory()
		if err != nil {
			return nil, fmt.Errorf("failed to get data directory: %w", err)
		}
		path = filepath.Join(dataDir, FileName)
	} else if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create user list directory: %w", err)
	}

	return &Manager{
		path:   path,
		logger: logger.GetLogger().WithField("component", "userlist"),
	}, nil
}

// Path returns the list file location
func (m *Manager) Path() string {
	return m.path
}

// Load reads the list. A missing file is an empty list.
func (m *Manager) Load() (*List, error) {
	file, err := os.Open(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &List{Version: 1}, nil
		}
		return nil, fmt.Errorf("failed to open user list: %w", err)
	}
	defer file.Close()

	var list List
	if err := json.NewDecoder(file).Decode(&list); err != nil {
		return nil, fmt.Errorf("failed to decode user list: %w", err)
	}

	m.logger.WithFields(map[string]interface{}{
		"users":      len(list.Users),
		"updated_at": list.UpdatedAt,
	}).Debug("User list loaded")

	return &list, nil
}

// Set replaces the list with names, normalized
func (m *Manager) Set(names []string) (*List, error) {
	list := &List{Users: Normalize(names), Version: 1}
	if err := Validate(list.Users); err != nil {
		return nil, err
	}
	if err := m.Save(list); err != nil {
		return nil, err
	}

	m.logger.WithFields(map[string]interface{}{
		"users": len(list.Users),
		"path":  m.path,
	}).Info("User list saved")

	return list, nil
}

// Save writes the list to disk atomically
func (m *Manager) Save(list *List) error {
	list.UpdatedAt = time.Now()

	// Create temporary file
	tempPath := m.path + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temporary user list file: %w", err)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(list); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to encode user list: %w", err)
	}

	// Ensure data is written to disk
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to sync user list file: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close user list file: %w", err)
	}

	if err := os.Rename(tempPath, m.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace user list file: %w", err)
	}

	return nil
}

// Clear removes the list file
func (m *Manager) Clear() error {
	if err := os.Remove(m.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete user list: %w", err)
	}

	m.logger.Info("User list cleared")
	return nil
}

// Exists checks if a list file exists
func (m *Manager) Exists() bool {
	_, err := os.Stat(m.path)
	return err == nil
}

// Resolve returns args when given, otherwise the saved list. It fails when
// both are empty.
func (m *Manager) Resolve(args []string) ([]string, error) {
	if users := Normalize(args); len(users) > 0 {
		if err := Validate(users); err != nil {
			return nil, err
		}
		return users, nil
	}

	list, err := m.Load()
	if err != nil {
		return nil, err
	}
	if len(list.Users) == 0 {
		return nil, ErrNoUsers
	}
	if err := Validate(list.Users); err != nil {
		return nil, fmt.Errorf("saved user list %s: %w", m.path, err)
	}
	return list.Users, nil
}

// ErrNoUsers is returned by Resolve when neither args nor a saved list name anyone.
var ErrNoUsers = errors.New("no screen names given and no saved user list (see 'users set')")

// CheckScreenName rejects names that are not 1 to 15 letters, digits or
// underscores. Names become file names, so this runs before any API call.
func CheckScreenName(name string) error {
	if len(name) == 0 || len(name) > maxScreenNameLen {
		return fmt.Errorf("invalid screen name %q: must be 1-%d characters", name, maxScreenNameLen)
	}
	for _, c := range name {
		if !(c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z') {
			return fmt.Errorf("invalid screen name %q: only letters, digits and _ are allowed", name)
		}
	}
	return nil
}

// Validate checks every name with CheckScreenName.
func Validate(names []string) error {
	var errs []error
	for _, n := range names {
		if err := CheckScreenName(n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Normalize trims names, strips a leading @ and drops blanks and
// case-insensitive duplicates, keeping first-seen order.
func Normalize(names []string) []string {
	seen := make(map[string]bool, len(names))
	var out []string
	for _, n := range names {
		n = strings.TrimPrefix(strings.TrimSpace(n), "@")
		key := strings.ToLower(n)
		if n == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, n)
	}
	return out
}

// getDataDirectory returns the appropriate data directory for the current OS
func getDataDirectory() (string, error) {
	var dataDir string

	switch runtime.GOOS {
	case "darwin":
		// macOS: ~/Library/Application Support
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataDir = filepath.Join(home, "Library", "Application Support", appName)
	case "windows":
		// Windows: %APPDATA%
		appData := os.Getenv("APPDATA")
		if appData == "" {
			return "", fmt.Errorf("APPDATA environment variable not set")
		}
		dataDir = filepath.Join(appData, appName)
	default:
		// Use XDG_DATA_HOME if set, otherwise ~/.local/share
		if xdgDataHome := os.Getenv("XDG_DATA_HOME"); xdgDataHome != "" {
			dataDir = filepath.Join(xdgDataHome, appName)
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			dataDir = filepath.Join(home, ".local", "share", appName)
		}
	}

	// Create the data directory if it doesn't exist
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}

	return dataDir, nil
}
