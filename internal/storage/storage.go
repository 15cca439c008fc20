package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

const DefaultDataDir = "~/.local/share/tradeshow-events"

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Storage manages the data directory
type Storage struct {
	dataDir string
}

// ExpandHome replaces a leading ~/ with the user's home directory
func ExpandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, path[2:]), nil
}

// New creates a new Storage instance, creating dataDir if needed
func New(dataDir string) (*Storage, error) {
	if dataDir == "" {
		dataDir = DefaultDataDir
	}

	dataDir, err := ExpandHome(dataDir)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &Storage{
		dataDir: dataDir,
	}, nil
}

// Dir returns the resolved data directory
func (s *Storage) Dir() string {
	return s.dataDir
}

// snapshotPath returns the path of the debug snapshot for name
func (s *Storage) snapshotPath(name string) string {
	name = strings.Trim(unsafeName.ReplaceAllString(strings.ToLower(name), "_"), "_")
	if name == "" {
		name = "page"
	}
	return filepath.Join(s.dataDir, fmt.Sprintf("debug_%s.html", name))
}

// SaveSnapshot writes the raw page HTML for later diagnosis and returns its path
func (s *Storage) SaveSnapshot(name, html string) (string, error) {
	path := s.snapshotPath(name)
	if err := os.WriteFile(path, []byte(html), 0644); err != nil {
		return "", fmt.Errorf("writing snapshot: %w", err)
	}
	return path, nil
}

// SaveReport writes v as indented JSON to <name>.json in the data directory
func (s *Storage) SaveReport(name string, v interface{}) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding report: %w", err)
	}

	path := filepath.Join(s.dataDir, name+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return path, nil
}

// LoadReport reads a report written by SaveReport into v
func (s *Storage) LoadReport(name string, v interface{}) error {
	data, err := os.ReadFile(filepath.Join(s.dataDir, name+".json"))
	if err != nil {
		return fmt.Errorf("reading report: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing report: %w", err)
	}
	return nil
}
