package engine

import (
	"errors"
	"fmt"

	"github.com/cpcf/t4toolbox/host"
)

// Generator is embedded by types that validate their input and then perform
// generation work, typically rendering one or more templates. Run drives it.
type Generator struct {
	context *Context
	errors  host.ErrorList
}

// Runner is satisfied by types embedding Generator that implement RunCore.
type Runner interface {
	generator() *Generator
	Validate() error
	RunCore() error
}

func (g *Generator) generator() *Generator { return g }

// Context returns the context assigned with SetContext, or the current one.
func (g *Generator) Context() (*Context, error) {
	if g.context != nil {
		return g.context, nil
	}
	return Current()
}

// SetContext overrides the current context for this generator. Passing nil
// is rejected rather than reverting to the current context.
func (g *Generator) SetContext(c *Context) error {
	if c == nil {
		return fmt.Errorf("context: %w", ErrArgument)
	}
	g.context = c
	return nil
}

// Errors returns the errors and warnings recorded since the last run.
func (g *Generator) Errors() *host.ErrorList { return &g.errors }

// Error records an error that prevents the run from producing output.
func (g *Generator) Error(message string) error {
	return g.add(message, false)
}

func (g *Generator) Errorf(format string, args ...any) error {
	if format == "" {
		return fmt.Errorf("format: %w", ErrArgument)
	}
	return g.add(fmt.Sprintf(format, args...), false)
}

// Warning records a warning. Warnings never block the run.
func (g *Generator) Warning(message string) error {
	return g.add(message, true)
}

func (g *Generator) Warningf(format string, args ...any) error {
	if format == "" {
		return fmt.Errorf("format: %w", ErrArgument)
	}
	return g.add(fmt.Sprintf(format, args...), true)
}

func (g *Generator) add(message string, warning bool) error {
	if message == "" {
		return fmt.Errorf("message: %w", ErrArgument)
	}
	g.errors.Add(host.CompilerError{ErrorText: message, IsWarning: warning})
	return nil
}

// Validate is the default validation hook; it accepts everything.
func (g *Generator) Validate() error { return nil }

// recordValidation turns a TransformationError into a recorded error and
// reports whether err was handled.
func (g *Generator) recordValidation(err error) bool {
	var te *TransformationError
	if !errors.As(err, &te) {
		return false
	}
	g.errors.Add(host.CompilerError{ErrorText: te.Error()})
	return true
}

// Run clears the errors of the previous run, validates r and calls RunCore
// unless validation recorded errors. Recorded errors and warnings are then
// reported to the context. A TransformationError from Validate is recorded;
// any other error, and any error from RunCore, is returned.
func Run(r Runner) error {
	g := r.generator()
	ctx, err := g.Context()
	if err != nil {
		return err
	}

	g.errors.Clear()
	if err := r.Validate(); err != nil && !g.recordValidation(err) {
		return err
	}

	var runErr error
	if !g.errors.HasErrors() {
		runErr = r.RunCore()
	}

	ctx.ReportErrors(&g.errors)
	return runErr
}
