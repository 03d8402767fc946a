package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cpcf/t4toolbox/host"
	"github.com/cpcf/t4toolbox/output"
)

// Project describes a project for hosts that run outside an IDE. It is
// usually loaded from YAML:
//
//	path: Shop.csproj
//	properties:
//	  RootNamespace: Shop
//	items:
//	  Models/Models.tt:
//	    Link: Shared/Models.tt
//
// Property names and item paths are matched case-insensitively.
type Project struct {
	Path       string                       `yaml:"path"`
	Properties map[string]string            `yaml:"properties"`
	Items      map[string]map[string]string `yaml:"items"`
}

var _ host.ProjectProvider = (*Project)(nil)

// LoadProject reads a project description. A relative Path is resolved
// against the directory of the file; an empty Path names the file itself.
func LoadProject(path string) (*Project, error) {
	var p Project
	if err := LoadYAML(path, &p); err != nil {
		return nil, err
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path %q: %w", path, err)
	}
	switch {
	case p.Path == "":
		p.Path = absPath
	case !filepath.IsAbs(output.NormalizePath(p.Path)):
		p.Path = filepath.Join(filepath.Dir(absPath), output.NormalizePath(p.Path))
	}
	return &p, nil
}

func (p *Project) Validate() error {
	for item := range p.Items {
		if item == "" {
			return fmt.Errorf("project item with empty path")
		}
	}
	return nil
}

// FullPath is the absolute path of the project file.
func (p *Project) FullPath() string {
	path := output.NormalizePath(p.Path)
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// Dir is the directory item paths are relative to.
func (p *Project) Dir() string { return filepath.Dir(p.FullPath()) }

// GetPropertyValue serves the project path properties and the configured
// properties. Unknown properties are empty.
func (p *Project) GetPropertyValue(name string) string {
	switch {
	case strings.EqualFold(name, host.PropertyProjectFullPath):
		return p.FullPath()
	case strings.EqualFold(name, host.PropertyProjectDirectory):
		return p.Dir()
	}
	return lookupFold(p.Properties, name)
}

// GetMetadataValue returns metadata of the item at itemPath, which may be
// absolute or relative to the project directory.
func (p *Project) GetMetadataValue(itemPath, name string) string {
	target := p.relative(itemPath)
	for item, metadata := range p.Items {
		if strings.EqualFold(p.relative(item), target) {
			return lookupFold(metadata, name)
		}
	}
	return ""
}

func (p *Project) relative(itemPath string) string {
	path := output.NormalizePath(itemPath)
	if filepath.IsAbs(path) {
		if rel, err := filepath.Rel(p.Dir(), path); err == nil {
			return rel
		}
	}
	return filepath.Clean(path)
}

func lookupFold(values map[string]string, key string) string {
	if value, ok := values[key]; ok {
		return value
	}
	for k, value := range values {
		if strings.EqualFold(k, key) {
			return value
		}
	}
	return ""
}
