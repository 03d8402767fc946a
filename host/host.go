// Package host defines what the generation pipeline needs from the program
// hosting a text transformation: an errors sink, a session, the template
// file path, project metadata and a receiver for generated files.
package host

import (
	"fmt"
	"strings"

	"github.com/cpcf/t4toolbox/output"
)

// Well-known project properties.
const (
	PropertyRootNamespace    = "RootNamespace"
	PropertyProjectFullPath  = "MSBuildProjectFullPath"
	PropertyProjectDirectory = "MSBuildProjectDirectory"
)

// ProjectProvider reads project properties and item metadata. Both methods
// return an empty string when the value is absent.
type ProjectProvider interface {
	GetPropertyValue(name string) string
	GetMetadataValue(itemPath, name string) string
}

// OutputReceiver accepts the complete set of files generated from one input
// file. It is called once per transformation.
type OutputReceiver interface {
	UpdatedOutputFiles(inputFile string, outputs []output.File) error
}

// Host is the program running the transformation.
type Host interface {
	ProjectProvider
	OutputReceiver
	TemplateFile() string
}

// Transformation is the host's handle for one template run.
type Transformation interface {
	Host() Host
	Session() Session
	Errors() *ErrorList
}

// Session carries values between cooperating generators for the duration of
// one transformation.
type Session map[string]any

// String returns the value stored under key when it is a string.
func (s Session) String(key string) string {
	value, _ := s[key].(string)
	return value
}

// CompilerError is an error or warning reported to the host.
type CompilerError struct {
	FileName    string
	Line        int
	Column      int
	ErrorNumber string
	ErrorText   string
	IsWarning   bool
}

func (e CompilerError) String() string {
	kind := "error"
	if e.IsWarning {
		kind = "warning"
	}

	var location strings.Builder
	location.WriteString(e.FileName)
	if e.Line > 0 {
		fmt.Fprintf(&location, "(%d", e.Line)
		if e.Column > 0 {
			fmt.Fprintf(&location, ",%d", e.Column)
		}
		location.WriteString(")")
	}
	if location.Len() > 0 {
		location.WriteString(": ")
	}

	if e.ErrorNumber != "" {
		return fmt.Sprintf("%s%s %s: %s", location.String(), kind, e.ErrorNumber, e.ErrorText)
	}
	return fmt.Sprintf("%s%s: %s", location.String(), kind, e.ErrorText)
}

// ErrorList is an ordered collection of compiler errors. The zero value is
// empty and ready to use.
type ErrorList struct {
	items []CompilerError
}

func (l *ErrorList) Add(errs ...CompilerError) {
	l.items = append(l.items, errs...)
}

func (l *ErrorList) Len() int {
	return len(l.items)
}

// At returns the i-th entry.
func (l *ErrorList) At(i int) CompilerError {
	return l.items[i]
}

// All returns a copy of the entries.
func (l *ErrorList) All() []CompilerError {
	return append([]CompilerError(nil), l.items...)
}

// HasErrors reports whether any entry is not a warning.
func (l *ErrorList) HasErrors() bool {
	for _, e := range l.items {
		if !e.IsWarning {
			return true
		}
	}
	return false
}

func (l *ErrorList) HasWarnings() bool {
	for _, e := range l.items {
		if e.IsWarning {
			return true
		}
	}
	return false
}

func (l *ErrorList) Clear() {
	l.items = nil
}

// SetDefaultFileName assigns name to every entry that has no file name yet.
func (l *ErrorList) SetDefaultFileName(name string) {
	for i := range l.items {
		if l.items[i].FileName == "" {
			l.items[i].FileName = name
		}
	}
}
