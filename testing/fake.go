// Package testing provides test doubles for code that runs inside a host
// transformation.
package testing

import (
	"strings"

	"github.com/cpcf/t4toolbox/host"
	"github.com/cpcf/t4toolbox/output"
)

// FakeHost is a host whose behavior is set through function fields. With a
// nil UpdatedOutputFilesFunc it records the delivered outputs instead.
type FakeHost struct {
	TemplateFilePath       string
	GetPropertyValueFunc   func(name string) string
	GetMetadataValueFunc   func(itemPath, name string) string
	UpdatedOutputFilesFunc func(inputFile string, outputs []output.File) error

	InputFile   string
	Outputs     []output.File
	UpdateCount int
}

func (h *FakeHost) TemplateFile() string { return h.TemplateFilePath }

func (h *FakeHost) GetPropertyValue(name string) string {
	if h.GetPropertyValueFunc == nil {
		return ""
	}
	return h.GetPropertyValueFunc(name)
}

func (h *FakeHost) GetMetadataValue(itemPath, name string) string {
	if h.GetMetadataValueFunc == nil {
		return ""
	}
	return h.GetMetadataValueFunc(itemPath, name)
}

func (h *FakeHost) UpdatedOutputFiles(inputFile string, outputs []output.File) error {
	h.UpdateCount++
	if h.UpdatedOutputFilesFunc != nil {
		return h.UpdatedOutputFilesFunc(inputFile, outputs)
	}
	h.InputFile = inputFile
	h.Outputs = outputs
	return nil
}

// Output returns the delivered output whose path is path.
func (h *FakeHost) Output(path string) (output.File, bool) {
	for _, file := range h.Outputs {
		if file.Path() == output.NormalizePath(path) {
			return file, true
		}
	}
	return output.File{}, false
}

// FakeTransformation is a host.Transformation backed by a FakeHost.
type FakeTransformation struct {
	FakeHost              FakeHost
	GenerationEnvironment strings.Builder

	session host.Session
	errors  host.ErrorList
}

func NewFakeTransformation() *FakeTransformation {
	return &FakeTransformation{session: make(host.Session)}
}

func (f *FakeTransformation) Host() host.Host { return &f.FakeHost }

func (f *FakeTransformation) Session() host.Session {
	if f.session == nil {
		f.session = make(host.Session)
	}
	return f.session
}

func (f *FakeTransformation) Errors() *host.ErrorList { return &f.errors }

// Properties returns a GetPropertyValueFunc serving values from a map.
func Properties(values map[string]string) func(string) string {
	return func(name string) string { return values[name] }
}
