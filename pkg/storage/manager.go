package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// TableExt is the extension of every table the harvester writes.
const TableExt = ".csv"

// QueryMarker starts the preamble row of search tables.
const QueryMarker = "#query"

// Manager handles the results directory and table writes
type Manager struct {
	outputDir string
	tables    map[string]bool
	mu        sync.RWMutex
}

// NewManager creates a new storage manager
func NewManager(outputDir string) (*Manager, error) {
	// Create output directory if it doesn't exist
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	manager := &Manager{
		outputDir: outputDir,
		tables:    make(map[string]bool),
	}

	// Scan existing tables so Exists and Tables see earlier runs
	if err := manager.scanExistingFiles(); err != nil {
		return nil, fmt.Errorf("failed to scan existing files: %w", err)
	}

	return manager, nil
}

// scanExistingFiles records the tables already in the output directory
func (m *Manager) scanExistingFiles() error {
	entries, err := os.ReadDir(m.outputDir)
	if err != nil {
		return fmt.Errorf("failed to read directory: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == TableExt {
			m.tables[entry.Name()] = true
		}
	}

	return nil
}

// TimelineFile names the table of screenName's tweets
func TimelineFile(screenName string) string {
	return screenName + "_tweets" + TableExt
}

// FriendsFile names the table of screenName's friends
func FriendsFile(screenName string) string {
	return screenName + "_friends" + TableExt
}

// SearchFile names the table of a search started at t
func SearchFile(t time.Time) string {
	return "search_" + t.Format("20060102_150405") + "_tweets" + TableExt
}

// Exists reports whether a table with the given file name is present
func (m *Manager) Exists(name string) bool {
	m.mu.RLock()
	known := m.tables[name]
	m.mu.RUnlock()
	if known {
		return true
	}

	// Double-check file existence
	if _, err := os.Stat(m.Path(name)); err == nil {
		m.mu.Lock()
		m.tables[name] = true
		m.mu.Unlock()
		return true
	}
	return false
}

// Path returns the full path of a table file
func (m *Manager) Path(name string) string {
	return filepath.Join(m.outputDir, name)
}

// Table is the content of one table file.
type Table struct {
	// Query is the raw search query from the preamble, if any.
	Query  string
	Header []string
	Rows   [][]string
}

// Records returns every row keyed by header name.
func (t *Table) Records() []map[string]string {
	out := make([]map[string]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := make(map[string]string, len(t.Header))
		for i, h := range t.Header {
			if i < len(row) {
				rec[h] = row[i]
			}
		}
		out = append(out, rec)
	}
	return out
}

// WriteTable writes a tab-separated table with CRLF line endings. A
// non-empty t.Query is written as a "#query" row before the header. The
// file is replaced atomically.
func (m *Manager) WriteTable(name string, t *Table) (string, error) {
	if name == "" || filepath.Base(name) != name || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("invalid table name %q", name)
	}
	filename := m.Path(name)

	// Create temporary file first
	out, err := os.CreateTemp(m.outputDir, "."+name+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}
	tempFile := out.Name()

	err = encodeTable(out, t)
	if err == nil {
		err = out.Chmod(0644)
	}
	if err == nil {
		err = out.Sync()
	}
	closeErr := out.Close()

	if err != nil {
		os.Remove(tempFile) // Clean up temp file
		return "", fmt.Errorf("failed to write table: %w", err)
	}

	if closeErr != nil {
		os.Remove(tempFile) // Clean up temp file
		return "", fmt.Errorf("failed to close file: %w", closeErr)
	}

	// Atomic rename
	if err := os.Rename(tempFile, filename); err != nil {
		os.Remove(tempFile) // Clean up temp file
		return "", fmt.Errorf("failed to rename temporary file: %w", err)
	}

	m.mu.Lock()
	m.tables[name] = true
	m.mu.Unlock()

	return filename, nil
}

func encodeTable(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	cw.UseCRLF = true

	if t.Query != "" {
		if err := cw.Write([]string{QueryMarker, t.Query}); err != nil {
			return err
		}
	}
	if err := cw.Write(t.Header); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return err
	}
	return cw.Error()
}

// ReadTable parses a table written by WriteTable.
func ReadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open table: %w", err)
	}
	defer f.Close()

	return DecodeTable(f)
}

// DecodeTable parses a table from r, picking up the query preamble if
// there is one.
func DecodeTable(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1

	all, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse table: %w", err)
	}

	t := &Table{}
	if len(all) > 0 && len(all[0]) > 0 && all[0][0] == QueryMarker {
		if len(all[0]) > 1 {
			t.Query = all[0][1]
		}
		all = all[1:]
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("failed to parse table: no header row")
	}
	t.Header = all[0]
	t.Rows = all[1:]
	return t, nil
}

// Tables returns the table files in the output directory, sorted by name.
// A non-empty prefix filters them.
func (m *Manager) Tables(prefix string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []string
	for name := range m.tables {
		if strings.HasPrefix(name, prefix) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// GetOutputDir returns the output directory path
func (m *Manager) GetOutputDir() string {
	return m.outputDir
}

// GetTableCount returns the number of known tables
func (m *Manager) GetTableCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tables)
}
