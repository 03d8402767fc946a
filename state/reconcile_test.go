package state

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/cpcf/t4toolbox/engine"
	"github.com/cpcf/t4toolbox/output"
	"github.com/cpcf/t4toolbox/write"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func file(name, content string) output.File {
	return output.File{Name: name, Content: content}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", path, err)
	}
	return string(data)
}

func manifestPaths(t *testing.T, r *Reconciler, input string) []string {
	t.Helper()
	manifest, err := r.Manifest()
	if err != nil {
		t.Fatalf("Manifest failed: %v", err)
	}
	var paths []string
	for _, entry := range manifest.Entries(input) {
		paths = append(paths, entry.Path)
	}
	return paths
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestReconciler_WritesAndCleansUp(t *testing.T) {
	root := t.TempDir()
	r := NewReconciler(root, WithLogger(quietLogger()))

	err := r.UpdatedOutputFiles("Models.tt", []output.File{
		file("Customer.cs", "class Customer {}"),
		file("Order.cs", "class Order {}"),
	})
	if err != nil {
		t.Fatalf("UpdatedOutputFiles failed: %v", err)
	}
	if got := readFile(t, filepath.Join(root, "Customer.cs")); got != "class Customer {}" {
		t.Errorf("Unexpected content %q", got)
	}

	old := time.Now().Add(-time.Hour).Truncate(time.Second)
	customer := filepath.Join(root, "Customer.cs")
	if err := os.Chtimes(customer, old, old); err != nil {
		t.Fatal(err)
	}

	err = r.UpdatedOutputFiles("Models.tt", []output.File{
		file("Customer.cs", "class Customer {}"),
		file("Invoice.cs", "class Invoice {}"),
	})
	if err != nil {
		t.Fatalf("UpdatedOutputFiles failed: %v", err)
	}

	info, err := os.Stat(customer)
	if err != nil {
		t.Fatal(err)
	}
	if !info.ModTime().Equal(old) {
		t.Errorf("Unchanged file must not be rewritten, mod time %v", info.ModTime())
	}
	if exists(filepath.Join(root, "Order.cs")) {
		t.Error("Expected stale Order.cs to be removed")
	}

	summary := r.LastSummary()
	want := Summary{
		Input:     "Models.tt",
		Created:   []string{filepath.Join(root, "Invoice.cs")},
		Unchanged: []string{customer},
		Cleanup:   []CleanupResult{{Path: filepath.Join(root, "Order.cs"), Action: CleanupActionDelete}},
	}
	if diff := cmp.Diff(want, summary); diff != "" {
		t.Errorf("Summary mismatch (-want +got):\n%s", diff)
	}

	manifest, err := r.Manifest()
	if err != nil {
		t.Fatal(err)
	}
	var paths []string
	for _, entry := range manifest.Entries("Models.tt") {
		paths = append(paths, entry.Path)
	}
	if diff := cmp.Diff([]string{"Customer.cs", "Invoice.cs"}, paths); diff != "" {
		t.Errorf("Manifest mismatch (-want +got):\n%s", diff)
	}
}

func TestReconciler_InputsAreIndependent(t *testing.T) {
	root := t.TempDir()
	r := NewReconciler(root, WithLogger(quietLogger()))

	if err := r.UpdatedOutputFiles("A.tt", []output.File{file("a.cs", "a")}); err != nil {
		t.Fatal(err)
	}
	if err := r.UpdatedOutputFiles("B.tt", []output.File{file("b.cs", "b")}); err != nil {
		t.Fatal(err)
	}
	if err := r.UpdatedOutputFiles("B.tt", nil); err != nil {
		t.Fatal(err)
	}

	if !exists(filepath.Join(root, "a.cs")) {
		t.Error("Files of another input must be kept")
	}
	if exists(filepath.Join(root, "b.cs")) {
		t.Error("Expected b.cs to be removed")
	}
}

func TestReconciler_DoesNotRemoveModifiedFiles(t *testing.T) {
	root := t.TempDir()
	r := NewReconciler(root, WithLogger(quietLogger()))

	if err := r.UpdatedOutputFiles("A.tt", []output.File{file("a.cs", "generated")}); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(root, "a.cs")
	if err := os.WriteFile(path, []byte("edited by hand"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := r.UpdatedOutputFiles("A.tt", nil); err != nil {
		t.Fatal(err)
	}

	if readFile(t, path) != "edited by hand" {
		t.Error("Modified file must be kept")
	}
	result := r.LastSummary().Cleanup[0]
	if result.Action != CleanupActionSkip || result.Reason != reasonModified {
		t.Errorf("Expected skip for modified file, got %+v", result)
	}
	if diff := cmp.Diff([]string{"a.cs"}, manifestPaths(t, r, "A.tt")); diff != "" {
		t.Errorf("Modified file must stay tracked (-want +got):\n%s", diff)
	}

	// Once the edits are reverted the file is removed as usual.
	if err := os.WriteFile(path, []byte("generated"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := r.UpdatedOutputFiles("A.tt", nil); err != nil {
		t.Fatal(err)
	}
	if exists(path) {
		t.Error("Expected reverted file to be removed")
	}
	if paths := manifestPaths(t, r, "A.tt"); len(paths) != 0 {
		t.Errorf("Expected empty manifest, got %v", paths)
	}
}

func TestReconciler_RelativeRoot(t *testing.T) {
	t.Chdir(t.TempDir())
	r := NewReconciler("gen", WithLogger(quietLogger()))

	if err := r.UpdatedOutputFiles("Models.tt", []output.File{file("Order.cs", "class Order {}")}); err != nil {
		t.Fatal(err)
	}
	if !exists(filepath.Join("gen", "Order.cs")) {
		t.Fatal("Expected gen/Order.cs to be written")
	}
	if diff := cmp.Diff([]string{"Order.cs"}, manifestPaths(t, r, "Models.tt")); diff != "" {
		t.Errorf("Manifest paths must be relative to the root (-want +got):\n%s", diff)
	}

	if err := r.UpdatedOutputFiles("Models.tt", nil); err != nil {
		t.Fatal(err)
	}
	if exists(filepath.Join("gen", "Order.cs")) {
		t.Errorf("Expected stale gen/Order.cs to be removed, cleanup: %+v", r.LastSummary().Cleanup)
	}
}

// failingWriter rejects writes to one file name and passes the rest through.
type failingWriter struct {
	*write.FileWriter
	name string
}

func (w failingWriter) Write(path string, content []byte, options write.Options) error {
	if filepath.Base(path) == w.name {
		return errors.New("disk full")
	}
	return w.FileWriter.Write(path, content, options)
}

func TestReconciler_FailedWriteKeepsTracking(t *testing.T) {
	root := t.TempDir()
	healthy := NewReconciler(root, WithLogger(quietLogger()))
	if err := healthy.UpdatedOutputFiles("A.tt", []output.File{file("Order.cs", "v1")}); err != nil {
		t.Fatal(err)
	}

	broken := NewReconciler(root,
		WithLogger(quietLogger()),
		WithWriter(failingWriter{FileWriter: write.NewFileWriter(), name: "Order.cs"}),
	)
	err := broken.UpdatedOutputFiles("A.tt", []output.File{file("Order.cs", "v2")})
	var multi *engine.MultiError
	if !errors.As(err, &multi) || len(multi.Errors) != 1 {
		t.Fatalf("Expected one write failure, got %v", err)
	}
	if diff := cmp.Diff([]string{"Order.cs"}, manifestPaths(t, broken, "A.tt")); diff != "" {
		t.Errorf("Failed write must keep the previous entry (-want +got):\n%s", diff)
	}

	if err := healthy.UpdatedOutputFiles("A.tt", nil); err != nil {
		t.Fatal(err)
	}
	if exists(filepath.Join(root, "Order.cs")) {
		t.Error("Expected Order.cs to be removed once it is no longer generated")
	}
}

func TestReconciler_PreserveExistingFile(t *testing.T) {
	root := t.TempDir()
	r := NewReconciler(root, WithLogger(quietLogger()))

	partial := file("Customer.partial.cs", "// add members here")
	partial.PreserveExistingFile = true
	if err := r.UpdatedOutputFiles("A.tt", []output.File{partial}); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(root, "Customer.partial.cs")
	if err := os.WriteFile(path, []byte("// user code"), 0o644); err != nil {
		t.Fatal(err)
	}

	partial.Content = "// regenerated"
	if err := r.UpdatedOutputFiles("A.tt", []output.File{partial}); err != nil {
		t.Fatal(err)
	}
	if readFile(t, path) != "// user code" {
		t.Error("Preserved file must not be overwritten")
	}
	if diff := cmp.Diff([]string{path}, r.LastSummary().Preserved); diff != "" {
		t.Errorf("Preserved mismatch (-want +got):\n%s", diff)
	}

	if err := r.UpdatedOutputFiles("A.tt", nil); err != nil {
		t.Fatal(err)
	}
	if !exists(path) {
		t.Error("Preserved file must not be cleaned up")
	}
}

func TestReconciler_CleanupModes(t *testing.T) {
	tests := []struct {
		name       string
		mode       CleanupMode
		wantExists bool
		wantAction CleanupAction
	}{
		{"delete", CleanupModeDelete, false, CleanupActionDelete},
		{"backup", CleanupModeBackup, false, CleanupActionBackup},
		{"report", CleanupModeReport, true, CleanupActionSkip},
		{"disabled", CleanupModeDisabled, true, CleanupActionSkip},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			backupDir := filepath.Join(root, "backup")
			r := NewReconciler(root,
				WithCleanupMode(tt.mode),
				WithBackupDirectory(backupDir),
				WithLogger(quietLogger()))

			if err := r.UpdatedOutputFiles("A.tt", []output.File{file("a.cs", "a")}); err != nil {
				t.Fatal(err)
			}
			if err := r.UpdatedOutputFiles("A.tt", nil); err != nil {
				t.Fatal(err)
			}

			path := filepath.Join(root, "a.cs")
			if exists(path) != tt.wantExists {
				t.Errorf("Expected exists=%v", tt.wantExists)
			}
			result := r.LastSummary().Cleanup[0]
			if result.Action != tt.wantAction {
				t.Errorf("Expected %v, got %v", tt.wantAction, result.Action)
			}
			if tt.mode == CleanupModeBackup && readFile(t, filepath.Join(backupDir, "a.cs.bak")) != "a" {
				t.Error("Expected backup of the stale file")
			}
		})
	}
}

func TestReconciler_IgnorePatterns(t *testing.T) {
	root := t.TempDir()
	r := NewReconciler(root, WithIgnorePatterns("*.keep"), WithLogger(quietLogger()))

	if err := r.UpdatedOutputFiles("A.tt", []output.File{file("a.keep", "a"), file("b.cs", "b")}); err != nil {
		t.Fatal(err)
	}
	if err := r.UpdatedOutputFiles("A.tt", nil); err != nil {
		t.Fatal(err)
	}
	if !exists(filepath.Join(root, "a.keep")) {
		t.Error("Ignored file must be kept")
	}
	if exists(filepath.Join(root, "b.cs")) {
		t.Error("Expected b.cs to be removed")
	}
}

func TestReconciler_DryRun(t *testing.T) {
	root := t.TempDir()
	dry := write.NewDryRunWriter()
	r := NewReconciler(root, WithDryRun(dry), WithLogger(quietLogger()))

	if err := r.UpdatedOutputFiles("A.tt", []output.File{file("a.cs", "abc")}); err != nil {
		t.Fatal(err)
	}
	if exists(filepath.Join(root, "a.cs")) || exists(filepath.Join(root, ManifestFileName)) {
		t.Error("Dry run must not touch the file system")
	}
	want := []write.Change{{Path: filepath.Join(root, "a.cs"), Action: write.ActionCreate, Size: 3}}
	if diff := cmp.Diff(want, dry.Changes()); diff != "" {
		t.Errorf("Changes mismatch (-want +got):\n%s", diff)
	}
}
