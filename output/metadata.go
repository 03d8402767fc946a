package output

import (
	"sort"
	"strings"
)

// Well-known project item metadata names.
const (
	MetadataCopyToOutputDirectory = "CopyToOutputDirectory"
	MetadataGenerator             = "Generator"
	MetadataCustomToolNamespace   = "CustomToolNamespace"
	MetadataLink                  = "Link"
	MetadataDependentUpon         = "DependentUpon"
)

// Common project item types.
const (
	ItemTypeNone             = "None"
	ItemTypeCompile          = "Compile"
	ItemTypeContent          = "Content"
	ItemTypeEmbeddedResource = "EmbeddedResource"
)

type metadataEntry struct {
	key   string
	value string
}

// Metadata is a string map whose keys compare without regard to case.
// The zero value is an empty map ready to use.
type Metadata struct {
	entries map[string]metadataEntry
}

func (m *Metadata) Get(key string) (string, bool) {
	entry, ok := m.entries[strings.ToLower(key)]
	return entry.value, ok
}

// Value returns the value stored under key, or an empty string.
func (m *Metadata) Value(key string) string {
	value, _ := m.Get(key)
	return value
}

// Set stores value under key. The casing of the first Set wins for Keys.
func (m *Metadata) Set(key, value string) {
	if m.entries == nil {
		m.entries = make(map[string]metadataEntry)
	}
	folded := strings.ToLower(key)
	if existing, ok := m.entries[folded]; ok {
		key = existing.key
	}
	m.entries[folded] = metadataEntry{key: key, value: value}
}

func (m *Metadata) Delete(key string) {
	delete(m.entries, strings.ToLower(key))
}

func (m *Metadata) Len() int {
	return len(m.entries)
}

// Keys returns the stored keys sorted case-insensitively.
func (m *Metadata) Keys() []string {
	keys := make([]string, 0, len(m.entries))
	for _, entry := range m.entries {
		keys = append(keys, entry.key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return strings.ToLower(keys[i]) < strings.ToLower(keys[j])
	})
	return keys
}

// Map returns a copy of the metadata keyed by the original key casing.
func (m *Metadata) Map() map[string]string {
	result := make(map[string]string, len(m.entries))
	for _, entry := range m.entries {
		result[entry.key] = entry.value
	}
	return result
}

// Equal reports whether both maps hold the same keys (ignoring case) and values.
func (m *Metadata) Equal(other *Metadata) bool {
	if m.Len() != other.Len() {
		return false
	}
	for folded, entry := range m.entries {
		otherEntry, ok := other.entries[folded]
		if !ok || otherEntry.value != entry.value {
			return false
		}
	}
	return true
}

// metadataOf folds a plain map into Metadata. Keys differing only in case
// collapse into one entry.
func metadataOf(values map[string]string) Metadata {
	var m Metadata
	for key, value := range values {
		m.Set(key, value)
	}
	return m
}
