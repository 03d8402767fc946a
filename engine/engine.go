// Package engine implements the transformation lifecycle of text templates:
// a Context per host transformation, Generators that validate before they
// run, Templates that render text into one or more output files, and
// ClrTemplates that derive namespaces from the project layout.
//
// A host establishes a context, renders templates and closes the context,
// at which point every rendered file is handed to the host in one call:
//
//	eng := engine.New(engine.WithLogger(logger))
//	err := eng.Run(transformation, &buffer, func(ctx *engine.Context) error {
//		return engine.RenderToFile(tmpl, "Customer.cs")
//	})
package engine

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/cpcf/t4toolbox/host"
	"github.com/cpcf/t4toolbox/postprocess"
)

// Engine carries the settings shared by every transformation it runs.
type Engine struct {
	logger         *slog.Logger
	failMode       FailureMode
	postprocessors *postprocess.Chain
}

// FailureMode decides how RenderAll treats a template that fails.
type FailureMode int

const (
	// FailFast stops at the first failing template.
	FailFast FailureMode = iota
	// FailAtEnd renders every template and returns the failures as a
	// *MultiError.
	FailAtEnd
	// BestEffort logs failures and reports success.
	BestEffort
)

func New(opts ...Option) *Engine {
	s := newSettings(opts)
	return &Engine{
		logger:         s.logger,
		failMode:       s.failMode,
		postprocessors: s.postprocessors,
	}
}

// AddPostProcessor registers processor for contexts started after the call.
func (e *Engine) AddPostProcessor(processor postprocess.Processor) {
	e.postprocessors.Add(processor)
}

func (e *Engine) AddPostProcessorFunc(fn func(filePath string, content []byte) ([]byte, error)) {
	e.postprocessors.AddFunc(fn)
}

// Run makes a new context current for the duration of fn and cleans it up
// afterwards, delivering the rendered outputs to the host.
func (e *Engine) Run(transformation host.Transformation, buffer *strings.Builder, fn func(*Context) error) (err error) {
	ctx, err := Initialize(transformation, buffer, WithLogger(e.logger), withChain(e.postprocessors))
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, Cleanup())
	}()

	return fn(ctx)
}

// RenderAll renders templates within one transformation. Failing templates
// are handled according to the engine's FailureMode.
func (e *Engine) RenderAll(transformation host.Transformation, buffer *strings.Builder, templates ...Transformer) error {
	return e.Run(transformation, buffer, func(ctx *Context) error {
		var failed MultiError
		for _, tmpl := range templates {
			renderErr := Render(tmpl)
			if renderErr == nil {
				continue
			}
			target := tmpl.template().Output().Path()
			if e.failMode == FailFast {
				return renderErr
			}
			if e.failMode == BestEffort {
				ctx.Logger().Warn("template failed", "output", target, "error", renderErr)
				continue
			}
			failed.Add(target, "render failed", renderErr)
		}
		return failed.ErrorOrNil()
	})
}
