package postprocess

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cpcf/t4toolbox/output"
)

// prefixProcessor tags content with its name, or applies transform when set.
type prefixProcessor struct {
	name      string
	transform func(string, []byte) ([]byte, error)
}

func (p *prefixProcessor) ProcessContent(filePath string, content []byte) ([]byte, error) {
	if p.transform != nil {
		return p.transform(filePath, content)
	}
	return []byte(p.name + ":" + string(content)), nil
}

func TestChain_Process(t *testing.T) {
	failing := &prefixProcessor{transform: func(string, []byte) ([]byte, error) {
		return nil, errors.New("processor error")
	}}

	cases := map[string]struct {
		steps   []Processor
		want    string
		wantErr bool
	}{
		"no steps":          {want: "hello"},
		"steps run in turn": {steps: []Processor{&prefixProcessor{name: "A"}, &prefixProcessor{name: "B"}}, want: "B:A:hello"},
		"failure aborts":    {steps: []Processor{failing, &prefixProcessor{name: "never"}}, wantErr: true},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := NewChain(tc.steps...).Process("test.txt", []byte("hello"))
			if tc.wantErr {
				if err == nil || got != nil {
					t.Errorf("Expected error and no content, got %q, %v", got, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Process failed: %v", err)
			}
			if string(got) != tc.want {
				t.Errorf("Process = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestChain_ProcessFile(t *testing.T) {
	chain := NewChain()
	chain.AddFunc(func(filePath string, content []byte) ([]byte, error) {
		if filepath.Ext(filePath) != ".cs" {
			return content, nil
		}
		return []byte(strings.ToUpper(string(content))), nil
	})

	var item output.Item
	item.SetFile(`Folder\Test.cs`)
	item.SetCustomTool("TextTemplatingFileGenerator")

	processed, err := chain.ProcessFile(item.Snapshot("class c {}"))
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}
	if processed.Content != "CLASS C {}" {
		t.Errorf("Expected processed content, got %q", processed.Content)
	}
	if processed.Path() != item.Path() || processed.CustomTool() != "TextTemplatingFileGenerator" {
		t.Error("ProcessFile must keep identity and metadata")
	}

	item.SetFile("notes.txt")
	untouched, err := chain.ProcessFile(item.Snapshot("plain"))
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}
	if untouched.Content != "plain" {
		t.Errorf("Expected unrelated file to pass through, got %q", untouched.Content)
	}
}

func TestChain_IgnoresNil(t *testing.T) {
	chain := NewChain(nil, &prefixProcessor{name: "a"})
	chain.Add(nil)
	chain.AddFunc(nil)
	if chain.Len() != 1 || !chain.HasProcessors() {
		t.Fatalf("Expected 1 processor, got %d", chain.Len())
	}

	var empty *Chain
	if empty.HasProcessors() || empty.Len() != 0 {
		t.Error("Expected nil chain to be empty")
	}
}

func TestChain_StepError(t *testing.T) {
	cause := errors.New("bad syntax")
	chain := NewChain(&prefixProcessor{name: "a"}, ProcessorFunc(func(string, []byte) ([]byte, error) {
		return nil, cause
	}))

	_, err := chain.Process("gen/model.go", []byte("x"))
	var stepErr *StepError
	if !errors.As(err, &stepErr) {
		t.Fatalf("Expected *StepError, got %T", err)
	}
	if stepErr.Step != 1 || stepErr.Path != "gen/model.go" {
		t.Errorf("Unexpected step error %+v", stepErr)
	}
	if !errors.Is(err, cause) {
		t.Error("Expected step error to wrap the processor error")
	}
}
