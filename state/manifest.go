// Package state records which files each input generated so that a later
// run can leave unchanged files alone and remove files that are no longer
// generated.
package state

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/cpcf/t4toolbox/output"
)

const (
	// ManifestFileName is the manifest written to the reconciler's root.
	ManifestFileName = ".t4toolbox.manifest.json"
	ManifestVersion  = "1"
)

// Entry describes one generated file. Path is relative to the manifest root
// when the file lives under it, with forward slashes.
type Entry struct {
	Path     string            `json:"path"`
	Hash     string            `json:"hash"`
	Size     int64             `json:"size"`
	ItemType string            `json:"item_type,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Preserve bool              `json:"preserve,omitempty"`
}

type Manifest struct {
	Version   string    `json:"version"`
	Generated time.Time `json:"generated"`
	// Inputs maps each input file, stored like Entry.Path, to the files it
	// generated in the last run.
	Inputs map[string][]Entry `json:"inputs"`
}

func NewManifest() *Manifest {
	return &Manifest{
		Version: ManifestVersion,
		Inputs:  make(map[string][]Entry),
	}
}

// Entries returns the files generated by input, ignoring path case.
func (m *Manifest) Entries(input string) []Entry {
	if entries, ok := m.Inputs[input]; ok {
		return entries
	}
	for key, entries := range m.Inputs {
		if strings.EqualFold(key, input) {
			return entries
		}
	}
	return nil
}

// SetEntries replaces the files generated by input. An empty list forgets
// the input.
func (m *Manifest) SetEntries(input string, entries []Entry) {
	for key := range m.Inputs {
		if strings.EqualFold(key, input) {
			delete(m.Inputs, key)
		}
	}
	if len(entries) > 0 {
		sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
		m.Inputs[input] = entries
	}
	m.Generated = time.Now().UTC()
}

// ManifestStore loads and saves the manifest of a root directory.
type ManifestStore struct {
	root string
	path string
}

// NewManifestStore keeps the manifest in root. A relative root is resolved
// against the working directory once, here.
func NewManifestStore(root string) *ManifestStore {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	return &ManifestStore{
		root: root,
		path: filepath.Join(root, ManifestFileName),
	}
}

func (s *ManifestStore) Path() string { return s.path }

// Load reads the manifest, returning an empty one when none was saved yet.
func (s *ManifestStore) Load() (*Manifest, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewManifest(), nil
		}
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode manifest %s: %w", s.path, err)
	}
	if m.Version != ManifestVersion {
		return nil, fmt.Errorf("unsupported manifest version %q in %s", m.Version, s.path)
	}
	if m.Inputs == nil {
		m.Inputs = make(map[string][]Entry)
	}
	return &m, nil
}

// Save writes the manifest atomically.
func (s *ManifestStore) Save(m *Manifest) error {
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return fmt.Errorf("failed to create manifest directory: %w", err)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write temporary manifest file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to move manifest file: %w", err)
	}
	return nil
}

// key converts path into the form stored in the manifest.
func (s *ManifestStore) key(path string) string {
	path = output.NormalizePath(path)
	if filepath.IsAbs(path) {
		if rel, err := filepath.Rel(s.root, path); err == nil && !strings.HasPrefix(rel, "..") {
			path = rel
		}
	}
	return filepath.ToSlash(filepath.Clean(path))
}

// resolve converts a stored path back into a file system path.
func (s *ManifestStore) resolve(key string) string {
	path := filepath.FromSlash(key)
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.root, path)
}

// Hash returns the hex SHA-256 of content.
func Hash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// hashFile returns the hash of the file at path.
func hashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return Hash(data), nil
}
