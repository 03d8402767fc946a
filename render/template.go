// Package render executes text/template files as engine templates.
//
// A TextTemplate is a ClrTemplate whose text comes from a template file read
// through a Loader. Besides the data passed to it, the template can call
// functions bound to the running transformation:
//
//	namespace {{ defaultNamespace }}
//	{
//	{{ pushIndent "    " }}public class {{ pascal .Name }} { }
//	{{ popIndent }}}
package render

import (
	"fmt"
	"text/template"

	"github.com/cpcf/t4toolbox/engine"
)

// TextTemplate renders the template file at Path with Data.
type TextTemplate struct {
	engine.ClrTemplate

	Loader *Loader
	Path   string
	Data   any

	parsed *template.Template
}

func New(loader *Loader, path string, data any) *TextTemplate {
	return &TextTemplate{Loader: loader, Path: path, Data: data}
}

// Validate loads the template file. A missing or malformed file is reported
// as a transformation error against the template being run.
func (t *TextTemplate) Validate() error {
	if t.Loader == nil {
		return engine.NewTransformationError("template loader is not set")
	}
	if t.Path == "" {
		return engine.NewTransformationError("template path is not set")
	}

	parsed, err := t.Loader.Load(t.Path)
	if err != nil {
		return &engine.TransformationError{Err: err}
	}
	t.parsed = parsed
	return nil
}

func (t *TextTemplate) TransformText() error {
	if t.parsed == nil {
		return fmt.Errorf("template %s was not loaded", t.Path)
	}

	tmpl, err := t.parsed.Clone()
	if err != nil {
		return fmt.Errorf("failed to clone template %s: %w", t.Path, err)
	}
	tmpl.Funcs(t.contextFuncs())

	if err := tmpl.Execute(textWriter{&t.Template}, t.Data); err != nil {
		return fmt.Errorf("failed to execute template %s: %w", t.Path, err)
	}
	return nil
}

func (t *TextTemplate) contextFuncs() template.FuncMap {
	return template.FuncMap{
		"rootNamespace":    t.RootNamespace,
		"defaultNamespace": t.DefaultNamespace,
		"property":         t.property,
		"pushIndent": func(indent string) string {
			t.PushIndent(indent)
			return ""
		},
		"popIndent": func() string {
			t.PopIndent()
			return ""
		},
		"warning": func(message string) (string, error) {
			return "", t.Warning(message)
		},
		"error": func(message string) (string, error) {
			return "", t.Error(message)
		},
	}
}

func (t *TextTemplate) property(name string) (string, error) {
	ctx, err := t.Context()
	if err != nil {
		return "", err
	}
	return ctx.GetPropertyValue(name), nil
}

// textWriter routes template output through Template.Write so that the
// current indent applies.
type textWriter struct {
	t *engine.Template
}

func (w textWriter) Write(p []byte) (int, error) {
	w.t.Write(string(p))
	return len(p), nil
}
