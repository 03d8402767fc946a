package engine

import (
	"testing"

	"github.com/cpcf/t4toolbox/host"
	t4test "github.com/cpcf/t4toolbox/testing"
)

const (
	testMessage = "Test Message"
	testOutput  = "Test Template Output"
	testFile    = "Test.txt"
)

// initialize makes a fake transformation current for the duration of the test.
func initialize(t *testing.T) *t4test.FakeTransformation {
	t.Helper()

	transformation := t4test.NewFakeTransformation()
	if _, err := Initialize(transformation, &transformation.GenerationEnvironment); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	t.Cleanup(func() {
		// Tests that end the transformation themselves leave nothing to clean.
		_ = Cleanup()
	})
	return transformation
}

func newStandaloneContext(t *testing.T) (*Context, *t4test.FakeTransformation) {
	t.Helper()

	transformation := t4test.NewFakeTransformation()
	ctx, err := NewContext(transformation, &transformation.GenerationEnvironment)
	if err != nil {
		t.Fatalf("NewContext failed: %v", err)
	}
	return ctx, transformation
}

type fakeGenerator struct {
	Generator
	validate func() error
	runCore  func() error
}

func (g *fakeGenerator) Validate() error {
	if g.validate != nil {
		return g.validate()
	}
	return nil
}

func (g *fakeGenerator) RunCore() error {
	if g.runCore != nil {
		return g.runCore()
	}
	return nil
}

type fakeTemplate struct {
	Template
	initialize    func() error
	validate      func() error
	transformText func() error
}

func (f *fakeTemplate) Initialize() error {
	if f.initialize != nil {
		return f.initialize()
	}
	return nil
}

func (f *fakeTemplate) Validate() error {
	if f.validate != nil {
		return f.validate()
	}
	return nil
}

func (f *fakeTemplate) TransformText() error {
	if f.transformText != nil {
		return f.transformText()
	}
	return nil
}

type fakeClrTemplate struct {
	ClrTemplate
}

func (f *fakeClrTemplate) TransformText() error { return nil }

func assertSingleError(t *testing.T, errs *host.ErrorList, text string, warning bool) host.CompilerError {
	t.Helper()
	if errs.Len() != 1 {
		t.Fatalf("Expected exactly one entry, got %d: %v", errs.Len(), errs.All())
	}
	entry := errs.At(0)
	if entry.ErrorText != text {
		t.Errorf("Expected text %q, got %q", text, entry.ErrorText)
	}
	if entry.IsWarning != warning {
		t.Errorf("Expected IsWarning %v, got %v", warning, entry.IsWarning)
	}
	return entry
}
