// Package processors holds post-processors for generated output files.
package processors

import (
	"fmt"
	"go/format"
	"path/filepath"
	"strings"

	"golang.org/x/tools/imports"
)

// GoImports runs goimports over generated .go files and falls back to
// gofmt when import resolution fails. Other files pass through untouched.
type GoImports struct {
	TabWidth  int
	TabIndent bool
	AllErrors bool
	Comments  bool
	// Fragment accepts output that is only a list of declarations.
	Fragment bool
}

// NewGoImports matches the settings the gofmt command line uses.
func NewGoImports() *GoImports {
	return &GoImports{TabWidth: 8, TabIndent: true, Comments: true}
}

func (g *GoImports) options() *imports.Options {
	return &imports.Options{
		Fragment:  g.Fragment,
		AllErrors: g.AllErrors,
		Comments:  g.Comments,
		TabIndent: g.TabIndent,
		TabWidth:  g.TabWidth,
	}
}

func (g *GoImports) ProcessContent(filePath string, content []byte) ([]byte, error) {
	if !strings.EqualFold(filepath.Ext(filePath), ".go") {
		return content, nil
	}

	out, importsErr := imports.Process(filePath, content, g.options())
	if importsErr == nil {
		return out, nil
	}
	out, fmtErr := format.Source(content)
	if fmtErr != nil {
		return nil, fmt.Errorf("%s: goimports: %w; gofmt: %w", filePath, importsErr, fmtErr)
	}
	return out, nil
}
