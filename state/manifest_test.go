package state

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestManifestStore_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := NewManifestStore(dir)

	m, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(m.Inputs) != 0 {
		t.Errorf("Expected empty manifest, got %v", m.Inputs)
	}

	m.SetEntries("Models.tt", []Entry{
		{Path: "b.cs", Hash: Hash([]byte("b"))},
		{Path: "a.cs", Hash: Hash([]byte("a")), Metadata: map[string]string{"Generator": "T"}},
	})
	if err := store.Save(m); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if diff := cmp.Diff(m, loaded, cmpopts.EquateApproxTime(0)); diff != "" {
		t.Errorf("Manifest mismatch (-want +got):\n%s", diff)
	}
	if got := loaded.Entries("models.TT"); len(got) != 2 || got[0].Path != "a.cs" {
		t.Errorf("Expected sorted entries found ignoring case, got %v", got)
	}
}

func TestManifest_SetEntriesForgetsEmptyInput(t *testing.T) {
	m := NewManifest()
	m.SetEntries("a.tt", []Entry{{Path: "a.cs"}})
	m.SetEntries("A.TT", nil)
	if len(m.Inputs) != 0 {
		t.Errorf("Expected input to be forgotten, got %v", m.Inputs)
	}
}

func TestManifestStore_Load_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"invalid json", "{", "failed to decode manifest"},
		{"unsupported version", `{"version": "0"}`, "unsupported manifest version"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if err := os.WriteFile(filepath.Join(dir, ManifestFileName), []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			_, err := NewManifestStore(dir).Load()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestManifestStore_Key(t *testing.T) {
	root := t.TempDir()
	store := NewManifestStore(root)
	outside := filepath.Join(filepath.Dir(root), "elsewhere", "x.cs")

	tests := []struct {
		path string
		want string
	}{
		{filepath.Join(root, "sub", "a.cs"), "sub/a.cs"},
		{filepath.Join("sub", "b.cs"), "sub/b.cs"},
		{outside, filepath.ToSlash(outside)},
	}
	for _, tt := range tests {
		key := store.key(tt.path)
		if key != tt.want {
			t.Errorf("key(%q): expected %q, got %q", tt.path, tt.want, key)
		}
		if resolved := store.resolve(key); !filepath.IsAbs(resolved) {
			t.Errorf("resolve(%q) must be absolute, got %q", key, resolved)
		}
	}
}

func TestParseCleanupMode(t *testing.T) {
	for _, mode := range []CleanupMode{CleanupModeDelete, CleanupModeBackup, CleanupModeReport, CleanupModeDisabled} {
		got, err := ParseCleanupMode(strings.ToUpper(mode.String()))
		if err != nil || got != mode {
			t.Errorf("ParseCleanupMode(%q): got %v, %v", mode.String(), got, err)
		}
	}
	if _, err := ParseCleanupMode("sometimes"); err == nil {
		t.Error("Expected error for unknown mode")
	}
}
