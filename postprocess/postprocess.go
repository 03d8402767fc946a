// Package postprocess rewrites output file content after rendering and
// before the files reach the host.
//
//	eng := engine.New()
//	eng.AddPostProcessor(processors.NewGoImports())
//	eng.AddPostProcessorFunc(func(path string, content []byte) ([]byte, error) {
//		return append([]byte("// <auto-generated />\n"), content...), nil
//	})
package postprocess

import (
	"fmt"

	"github.com/cpcf/t4toolbox/output"
)

// Processor rewrites the content of one output file. Implementations pass
// through files they do not recognize.
type Processor interface {
	ProcessContent(filePath string, content []byte) ([]byte, error)
}

// ProcessorFunc lets a plain function act as a Processor.
type ProcessorFunc func(filePath string, content []byte) ([]byte, error)

func (f ProcessorFunc) ProcessContent(filePath string, content []byte) ([]byte, error) {
	return f(filePath, content)
}

// StepError identifies the processor that rejected a file.
type StepError struct {
	Step int
	Path string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("post-processing step %d on %s: %v", e.Step, e.Path, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Chain feeds the output of each processor into the next one. The zero
// value is an empty chain.
type Chain struct {
	steps []Processor
}

func NewChain(steps ...Processor) *Chain {
	c := &Chain{}
	c.Add(steps...)
	return c
}

// Add appends steps to the chain. Nil processors are ignored.
func (c *Chain) Add(steps ...Processor) {
	for _, step := range steps {
		if step != nil {
			c.steps = append(c.steps, step)
		}
	}
}

func (c *Chain) AddFunc(fn func(filePath string, content []byte) ([]byte, error)) {
	if fn != nil {
		c.steps = append(c.steps, ProcessorFunc(fn))
	}
}

// Process returns content after every step has rewritten it. The first
// failing step aborts the chain with a *StepError.
func (c *Chain) Process(filePath string, content []byte) ([]byte, error) {
	for i, step := range c.steps {
		next, err := step.ProcessContent(filePath, content)
		if err != nil {
			return nil, &StepError{Step: i, Path: filePath, Err: err}
		}
		content = next
	}
	return content, nil
}

// ProcessFile is Process applied to file.Content. On failure the original
// file is returned together with the error.
func (c *Chain) ProcessFile(file output.File) (output.File, error) {
	content, err := c.Process(file.Path(), []byte(file.Content))
	if err != nil {
		return file, err
	}
	file.Content = string(content)
	return file, nil
}

func (c *Chain) HasProcessors() bool { return c != nil && len(c.steps) > 0 }

func (c *Chain) Len() int {
	if c == nil {
		return 0
	}
	return len(c.steps)
}
