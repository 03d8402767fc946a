package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cpcf/t4toolbox/host"
	"github.com/cpcf/t4toolbox/output"
)

// Template is embedded by text templates. The embedding type supplies
// TransformText, which produces text with Write and WriteLine; Transform,
// Render and RenderToFile drive it.
type Template struct {
	Generator

	disabled  bool
	output    *output.Item
	text      strings.Builder
	indents   []string
	lineStart bool
	rendering []func()
}

// Transformer is satisfied by types embedding Template that implement
// TransformText.
type Transformer interface {
	generator() *Generator
	template() *Template
	Initialize() error
	Validate() error
	TransformText() error
}

func (t *Template) template() *Template { return t }

// Initialize is the default initialization hook; it does nothing.
func (t *Template) Initialize() error { return nil }

// Enabled reports whether Render transforms the template. Templates are
// enabled by default.
func (t *Template) Enabled() bool { return !t.disabled }

func (t *Template) SetEnabled(enabled bool) { t.disabled = !enabled }

// Output describes the primary output of the template.
func (t *Template) Output() *output.Item {
	if t.output == nil {
		t.output = &output.Item{}
	}
	return t.output
}

// Session returns the session of the template's context.
func (t *Template) Session() (host.Session, error) {
	ctx, err := t.Context()
	if err != nil {
		return nil, err
	}
	return ctx.Session(), nil
}

// OnRendering registers a handler called at the start of every Render,
// before Enabled is checked.
func (t *Template) OnRendering(handler func()) {
	t.rendering = append(t.rendering, handler)
}

// Text returns the output produced by the current transformation so far.
func (t *Template) Text() string { return t.text.String() }

// Write appends text to the output, indenting each new line with the
// current indent.
func (t *Template) Write(text string) {
	if text == "" {
		return
	}
	indent := t.CurrentIndent()
	if indent == "" {
		t.text.WriteString(text)
		t.lineStart = strings.HasSuffix(text, "\n")
		return
	}

	for _, line := range strings.SplitAfter(text, "\n") {
		if line == "" {
			continue
		}
		if t.lineStart || t.text.Len() == 0 {
			t.text.WriteString(indent)
		}
		t.text.WriteString(line)
		t.lineStart = strings.HasSuffix(line, "\n")
	}
}

func (t *Template) WriteLine(text string) {
	t.Write(text + "\n")
}

func (t *Template) Writef(format string, args ...any) {
	t.Write(fmt.Sprintf(format, args...))
}

func (t *Template) PushIndent(indent string) {
	t.indents = append(t.indents, indent)
}

// PopIndent removes the most recently pushed indent and returns it.
func (t *Template) PopIndent() string {
	if len(t.indents) == 0 {
		return ""
	}
	last := t.indents[len(t.indents)-1]
	t.indents = t.indents[:len(t.indents)-1]
	return last
}

func (t *Template) ClearIndent() { t.indents = nil }

func (t *Template) CurrentIndent() string { return strings.Join(t.indents, "") }

// Transform resets the output and errors of the previous transformation,
// then initializes and validates tr and, unless validation recorded errors,
// calls TransformText. It returns the produced text, or an empty string when
// validation failed. Errors returned by the hooks, TransformationError
// included, are passed through.
func Transform(tr Transformer) (string, error) {
	t := tr.template()
	t.text.Reset()
	t.indents = nil
	t.lineStart = false
	t.errors.Clear()

	if err := tr.Initialize(); err != nil {
		return "", err
	}
	if err := tr.Validate(); err != nil {
		return "", &validationError{err: err}
	}
	if t.errors.HasErrors() {
		return "", nil
	}
	if err := tr.TransformText(); err != nil {
		return "", err
	}
	return t.text.String(), nil
}

// Render raises the rendering handlers and, when the template is enabled,
// transforms it and writes the text to Output. A TransformationError
// returned by Validate is recorded as an error; one returned by
// TransformText is not. No output is written when errors were recorded.
// Recorded errors and warnings are reported to the context.
func Render(tr Transformer) error {
	t := tr.template()
	for _, handler := range t.rendering {
		handler()
	}
	if !t.Enabled() {
		return nil
	}

	ctx, err := t.Context()
	if err != nil {
		return err
	}

	// Whatever was recorded so far reaches the host, even on failure.
	defer ctx.ReportErrors(&t.errors)

	text, err := Transform(tr)
	if err != nil {
		var ve *validationError
		if !errors.As(err, &ve) || !t.recordValidation(ve.err) {
			return err
		}
	}

	if t.errors.HasErrors() {
		return nil
	}
	if err := ctx.Write(t.Output(), text); err != nil {
		if !errors.Is(err, ErrOutputConflict) {
			return err
		}
		t.errors.Add(host.CompilerError{ErrorText: err.Error()})
	}
	return nil
}

// RenderToFile sets the file name of Output and renders the template.
func RenderToFile(tr Transformer, fileName string) error {
	if fileName == "" {
		return fmt.Errorf("file name: %w", ErrArgument)
	}
	tr.template().Output().SetFile(fileName)
	return Render(tr)
}
