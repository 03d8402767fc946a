package engine

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/cpcf/t4toolbox/host"
	"github.com/cpcf/t4toolbox/output"
	"github.com/cpcf/t4toolbox/postprocess"
)

// InputFileNameKey is the session key under which a host stores the input
// file of a file-based transformation.
const InputFileNameKey = "InputFileName"

var (
	currentMu sync.Mutex
	current   *Context
)

// Context holds the state of one host transformation: the host handle, the
// generation buffer for the default output and the output files rendered so
// far. Outputs are delivered to the host when the context is closed.
type Context struct {
	id             string
	transformation host.Transformation
	buffer         *strings.Builder
	logger         *slog.Logger
	postprocessors *postprocess.Chain

	outputs []*pendingOutput
	byPath  map[string]*pendingOutput
	closed  bool
}

type pendingOutput struct {
	file    output.File
	content strings.Builder
}

// NewContext creates a context that is not registered as current. Assign it
// to a generator with SetContext to run it in isolation from the ambient
// context.
func NewContext(transformation host.Transformation, buffer *strings.Builder, opts ...Option) (*Context, error) {
	if transformation == nil {
		return nil, fmt.Errorf("transformation: %w", ErrArgument)
	}
	if buffer == nil {
		return nil, fmt.Errorf("buffer: %w", ErrArgument)
	}

	s := newSettings(opts)
	return &Context{
		id:             s.id,
		transformation: transformation,
		buffer:         buffer,
		logger:         s.logger.With("transformation", s.id),
		postprocessors: s.postprocessors,
		byPath:         make(map[string]*pendingOutput),
	}, nil
}

// Initialize creates a context and makes it current. It fails with
// ErrAlreadyInitialized until Cleanup is called.
func Initialize(transformation host.Transformation, buffer *strings.Builder, opts ...Option) (*Context, error) {
	currentMu.Lock()
	defer currentMu.Unlock()

	if current != nil {
		return nil, ErrAlreadyInitialized
	}

	c, err := NewContext(transformation, buffer, opts...)
	if err != nil {
		return nil, err
	}

	current = c
	c.logger.Debug("transformation context initialized", "template", c.TemplateFile())
	return c, nil
}

// Cleanup closes the current context, delivering its outputs, and clears it.
func Cleanup() error {
	currentMu.Lock()
	c := current
	current = nil
	currentMu.Unlock()

	if c == nil {
		return ErrNoContext
	}
	return c.Close()
}

// Current returns the context established by Initialize.
func Current() (*Context, error) {
	currentMu.Lock()
	defer currentMu.Unlock()

	if current == nil {
		return nil, ErrNoContext
	}
	return current, nil
}

// ID identifies the transformation in logs.
func (c *Context) ID() string { return c.id }

func (c *Context) Transformation() host.Transformation { return c.transformation }

func (c *Context) Host() host.Host { return c.transformation.Host() }

func (c *Context) Session() host.Session { return c.transformation.Session() }

func (c *Context) Logger() *slog.Logger { return c.logger }

// TemplateFile is the path of the template being transformed, or empty.
func (c *Context) TemplateFile() string { return c.Host().TemplateFile() }

// InputFile is the input file of a file-based transformation, or empty.
func (c *Context) InputFile() string { return c.Session().String(InputFileNameKey) }

// SourceFile is the file errors are reported against: the input file when
// there is one, the template file otherwise.
func (c *Context) SourceFile() string {
	if input := c.InputFile(); input != "" {
		return input
	}
	return c.TemplateFile()
}

func (c *Context) GetPropertyValue(name string) string {
	return c.Host().GetPropertyValue(name)
}

// GetMetadataValue reads project item metadata of SourceFile.
func (c *Context) GetMetadataValue(name string) string {
	return c.Host().GetMetadataValue(c.SourceFile(), name)
}

// ProjectFile is the full path of the project containing SourceFile.
func (c *Context) ProjectFile() string {
	return c.GetPropertyValue(host.PropertyProjectFullPath)
}

// ReportErrors tags errs with SourceFile where they carry no file name and
// forwards them to the host.
func (c *Context) ReportErrors(errs *host.ErrorList) {
	if errs.Len() == 0 {
		return
	}
	errs.SetDefaultFileName(c.SourceFile())
	for _, e := range errs.All() {
		c.logger.Debug("reporting to host", "error", e.String())
	}
	c.transformation.Errors().Add(errs.All()...)
}

// Write appends content to the output described by item. An item without a
// file name refers to the default output of the transformation. Writing the
// same path twice appends to it; both writes must agree on project metadata.
func (c *Context) Write(item *output.Item, content string) error {
	if item == nil {
		return fmt.Errorf("output item: %w", ErrArgument)
	}
	if c.closed {
		return ErrContextClosed
	}

	if item.File() == "" {
		c.buffer.WriteString(content)
		return nil
	}

	file := item.Snapshot("")
	key := strings.ToLower(file.Path())
	if pending, ok := c.byPath[key]; ok {
		if !pending.file.Compatible(file) {
			return fmt.Errorf("%s: %w", file.Path(), ErrOutputConflict)
		}
		pending.file.References = mergeReferences(pending.file.References, file.References)
		pending.content.WriteString(content)
		return nil
	}

	pending := &pendingOutput{file: file}
	pending.content.WriteString(content)
	c.outputs = append(c.outputs, pending)
	c.byPath[key] = pending
	return nil
}

func mergeReferences(existing, added []string) []string {
	for _, ref := range added {
		if !slices.Contains(existing, ref) {
			existing = append(existing, ref)
		}
	}
	return existing
}

// Outputs returns the files rendered so far in creation order.
func (c *Context) Outputs() []output.File {
	files := make([]output.File, 0, len(c.outputs))
	for _, pending := range c.outputs {
		file := pending.file
		file.Content = pending.content.String()
		files = append(files, file)
	}
	return files
}

// Close post-processes the rendered outputs and hands them to the host. The
// host is called even when nothing was rendered so that it can remove files
// generated by a previous run. Closing twice is a no-op.
func (c *Context) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true

	files := c.Outputs()
	if c.postprocessors.HasProcessors() {
		for i := range files {
			processed, err := c.postprocessors.ProcessFile(files[i])
			if err != nil {
				// The unprocessed content is still delivered.
				c.logger.Warn("post-processing failed", "path", files[i].Path(), "error", err)
				c.transformation.Errors().Add(host.CompilerError{
					FileName:  files[i].Path(),
					ErrorText: err.Error(),
					IsWarning: true,
				})
				continue
			}
			files[i] = processed
		}
	}

	inputFile := c.SourceFile()
	if err := c.Host().UpdatedOutputFiles(inputFile, files); err != nil {
		return &GenerationError{Path: inputFile, Message: "failed to update output files", Err: err}
	}

	c.logger.Info("delivered output files", "input", inputFile, "count", len(files))
	return nil
}
