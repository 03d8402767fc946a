// Package config reads YAML settings files, most notably the project
// description a standalone host hands to templates.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Validator is checked after a document has been decoded.
type Validator interface {
	Validate() error
}

// LoadYAML reads path into target. Targets implementing Validator are
// validated before returning.
func LoadYAML[T any](path string, target *T) error {
	full, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("config: resolve %q: %w", path, err)
	}
	data, err := os.ReadFile(full)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("config: %s not found", full)
	case err != nil:
		return fmt.Errorf("config: read %s: %w", full, err)
	}
	return decode(data, target)
}

// LoadYAMLFromString is LoadYAML for an in-memory document.
func LoadYAMLFromString[T any](doc string, target *T) error {
	return decode([]byte(doc), target)
}

func decode[T any](data []byte, target *T) error {
	if err := yaml.Unmarshal(data, target); err != nil {
		return fmt.Errorf("config: parse: %w", err)
	}
	v, ok := any(target).(Validator)
	if !ok {
		return nil
	}
	if err := v.Validate(); err != nil {
		return fmt.Errorf("config: invalid: %w", err)
	}
	return nil
}
