package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cpcf/t4toolbox/output"
)

var (
	// ErrArgument reports a missing required value.
	ErrArgument = output.ErrArgument
	// ErrNoContext is returned when no transformation context is active.
	ErrNoContext = errors.New("transformation context is not initialized")
	// ErrAlreadyInitialized is returned by Initialize when Cleanup was not
	// called for the previous context.
	ErrAlreadyInitialized = errors.New("transformation context is already initialized")
	// ErrContextClosed is returned when writing to a context whose outputs
	// were already delivered.
	ErrContextClosed = errors.New("transformation context is closed")
	// ErrOutputConflict is returned when two renders target the same file
	// with different project metadata.
	ErrOutputConflict = errors.New("output conflicts with a previous render of the same file")
)

// TransformationError signals a problem with the input of a template or
// generator. Returned from a Validate hook it becomes a single reported
// error; returned from anywhere else it aborts the run like any other error.
type TransformationError struct {
	Message string
	Err     error
}

// NewTransformationError formats a TransformationError.
func NewTransformationError(format string, args ...any) *TransformationError {
	return &TransformationError{Message: fmt.Sprintf(format, args...)}
}

func (e *TransformationError) Error() string {
	if e.Err != nil {
		if e.Message == "" {
			return e.Err.Error()
		}
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *TransformationError) Unwrap() error {
	return e.Err
}

// IsTransformationError reports whether err wraps a TransformationError.
func IsTransformationError(err error) bool {
	var te *TransformationError
	return errors.As(err, &te)
}

// GenerationError ties a failure to the output file it affected.
type GenerationError struct {
	Path    string
	Message string
	Err     error
}

func (e *GenerationError) Error() string {
	msg := e.Path + ": " + e.Message
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *GenerationError) Unwrap() error { return e.Err }

// MultiError accumulates per-file failures so a batch can finish before
// reporting. The zero value is ready to use.
type MultiError struct {
	Errors []*GenerationError
}

func (m *MultiError) Add(path, message string, err error) {
	m.Errors = append(m.Errors, &GenerationError{Path: path, Message: message, Err: err})
}

func (m *MultiError) HasErrors() bool { return len(m.Errors) > 0 }

func (m *MultiError) Error() string {
	switch len(m.Errors) {
	case 0:
		return "no errors"
	case 1:
		return m.Errors[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d files failed:", len(m.Errors))
	for _, err := range m.Errors {
		b.WriteString("\n\t")
		b.WriteString(err.Error())
	}
	return b.String()
}

func (m *MultiError) Unwrap() []error {
	errs := make([]error, 0, len(m.Errors))
	for _, err := range m.Errors {
		errs = append(errs, err)
	}
	return errs
}

// ErrorOrNil converts an empty MultiError to a nil error.
func (m *MultiError) ErrorOrNil() error {
	if !m.HasErrors() {
		return nil
	}
	return m
}

// validationError marks an error returned by a Validate hook so that Render
// can tell it apart from errors raised while producing text.
type validationError struct {
	err error
}

func (e *validationError) Error() string { return e.err.Error() }

func (e *validationError) Unwrap() error { return e.err }
