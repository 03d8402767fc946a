package engine

import (
	"path/filepath"
	"strings"
	"unicode"

	"github.com/cpcf/t4toolbox/host"
	"github.com/cpcf/t4toolbox/output"
)

// ClrTemplate is a Template generating code for a project with namespaces.
type ClrTemplate struct {
	Template
}

// RootNamespace is the project's RootNamespace property.
func (t *ClrTemplate) RootNamespace() (string, error) {
	ctx, err := t.Context()
	if err != nil {
		return "", err
	}
	return ctx.GetPropertyValue(host.PropertyRootNamespace), nil
}

// DefaultNamespace combines RootNamespace with the folders between the
// project directory and the template. The project item's Link metadata, when
// set, takes the place of the template's physical location.
func (t *ClrTemplate) DefaultNamespace() (string, error) {
	ctx, err := t.Context()
	if err != nil {
		return "", err
	}
	return defaultNamespace(
		ctx.GetPropertyValue(host.PropertyRootNamespace),
		ctx.ProjectFile(),
		ctx.SourceFile(),
		ctx.GetMetadataValue(output.MetadataLink),
	), nil
}

func defaultNamespace(rootNamespace, projectFile, itemPath, link string) string {
	projectDir := filepath.Dir(output.NormalizePath(projectFile))

	logical := output.NormalizePath(itemPath)
	if link != "" {
		logical = output.NormalizePath(link)
		if !filepath.IsAbs(logical) {
			logical = filepath.Join(projectDir, logical)
		}
	}

	var parts []string
	if rootNamespace != "" {
		parts = append(parts, rootNamespace)
	}

	relative, err := filepath.Rel(projectDir, filepath.Dir(logical))
	if err == nil && relative != "." && !strings.HasPrefix(relative, "..") {
		for _, segment := range strings.Split(relative, string(filepath.Separator)) {
			if segment != "" {
				parts = append(parts, identifier(segment))
			}
		}
	}

	return strings.Join(parts, ".")
}

// identifier replaces characters that cannot appear in a namespace segment.
func identifier(segment string) string {
	var b strings.Builder
	for i, r := range segment {
		switch {
		case i == 0 && unicode.IsDigit(r):
			b.WriteRune('_')
			b.WriteRune(r)
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
