package state

import (
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cpcf/t4toolbox/engine"
	"github.com/cpcf/t4toolbox/host"
	"github.com/cpcf/t4toolbox/output"
	"github.com/cpcf/t4toolbox/write"
)

// Summary reports what one reconciliation did.
type Summary struct {
	Input     string          `json:"input"`
	Created   []string        `json:"created,omitempty"`
	Updated   []string        `json:"updated,omitempty"`
	Unchanged []string        `json:"unchanged,omitempty"`
	Preserved []string        `json:"preserved,omitempty"`
	Cleanup   []CleanupResult `json:"cleanup,omitempty"`
}

// Removed lists the stale files that were deleted or backed up.
func (s Summary) Removed() []string {
	var removed []string
	for _, result := range s.Cleanup {
		if result.Action != CleanupActionSkip && result.Error == "" {
			removed = append(removed, result.Path)
		}
	}
	return removed
}

// Reconciler is a host.OutputReceiver that writes output files to disk and
// removes the files an input generated in its previous run but no longer
// does. Relative output paths are resolved against the directory of an
// absolute input file, otherwise against the root directory. The root also
// holds the manifest.
type Reconciler struct {
	root    string
	store   *ManifestStore
	writer  write.Writer
	options write.Options
	cleaner cleaner
	logger  *slog.Logger

	mu   sync.Mutex
	last Summary
}

var _ host.OutputReceiver = (*Reconciler)(nil)

type Option func(*Reconciler)

func WithWriter(w write.Writer) Option {
	return func(r *Reconciler) {
		r.writer = w
	}
}

// WithDryRun records changes in w instead of making them. The manifest is
// not saved.
func WithDryRun(w *write.DryRunWriter) Option {
	return func(r *Reconciler) {
		r.writer = w
		r.cleaner.dryRun = true
	}
}

func WithWriteOptions(options write.Options) Option {
	return func(r *Reconciler) {
		r.options = options
	}
}

func WithCleanupMode(mode CleanupMode) Option {
	return func(r *Reconciler) {
		r.cleaner.mode = mode
	}
}

// WithBackupDirectory sets where CleanupModeBackup copies stale files.
func WithBackupDirectory(dir string) Option {
	return func(r *Reconciler) {
		r.cleaner.backupDir = dir
	}
}

// WithIgnorePatterns protects stale files matching any pattern from cleanup.
// Patterns match the base name or the root-relative slash path.
func WithIgnorePatterns(patterns ...string) Option {
	return func(r *Reconciler) {
		r.cleaner.patterns = append(r.cleaner.patterns, patterns...)
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Reconciler) {
		r.logger = logger
	}
}

func NewReconciler(root string, opts ...Option) *Reconciler {
	store := NewManifestStore(root)
	r := &Reconciler{
		root:    store.root,
		store:   store,
		writer:  write.NewFileWriter(),
		options: write.DefaultOptions,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.cleaner.writer = r.writer
	r.cleaner.logger = r.logger
	return r
}

// Manifest returns the manifest as last saved.
func (r *Reconciler) Manifest() (*Manifest, error) {
	return r.store.Load()
}

// LastSummary returns the summary of the most recent reconciliation.
func (r *Reconciler) LastSummary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

// UpdatedOutputFiles writes outputs and cleans up the files inputFile
// generated previously but not now. Every file is attempted; failures are
// returned together.
func (r *Reconciler) UpdatedOutputFiles(inputFile string, outputs []output.File) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	manifest, err := r.store.Load()
	if err != nil {
		return err
	}

	input := r.store.key(inputFile)
	summary := Summary{Input: input}
	var multiErr engine.MultiError

	previous := make(map[string]Entry)
	for _, entry := range manifest.Entries(input) {
		previous[strings.ToLower(entry.Path)] = entry
	}

	current := make(map[string]bool, len(outputs))
	entries := make([]Entry, 0, len(outputs))
	for _, file := range outputs {
		path := r.resolve(inputFile, file)
		file.Project, file.Directory, file.Name = "", filepath.Dir(path), filepath.Base(path)
		key := r.store.key(path)
		folded := strings.ToLower(key)
		current[folded] = true

		entry, err := r.writeFile(file, key, &summary)
		if err != nil {
			multiErr.Add(path, "write failed", err)
			// The old copy is still on disk and still ours.
			if old, ok := previous[folded]; ok {
				entries = append(entries, old)
			}
			continue
		}
		entries = append(entries, entry)
	}

	for _, stale := range manifest.Entries(input) {
		if current[strings.ToLower(stale.Path)] {
			continue
		}
		result := r.cleaner.clean(r.store.resolve(stale.Path), stale.Path, stale)
		summary.Cleanup = append(summary.Cleanup, result)
		if result.Error != "" {
			multiErr.Add(result.Path, "cleanup failed", errors.New(result.Error))
		}
		// Anything left on disk stays tracked and is reconsidered next time.
		if (result.Action == CleanupActionSkip && result.Reason != reasonMissing) || result.Error != "" {
			entries = append(entries, stale)
		}
	}

	manifest.SetEntries(input, entries)
	if !r.cleaner.dryRun {
		if err := r.store.Save(manifest); err != nil {
			multiErr.Add(r.store.Path(), "manifest save failed", err)
		}
	}

	r.last = summary
	r.logger.Info("reconciled outputs",
		"input", input,
		"created", len(summary.Created),
		"updated", len(summary.Updated),
		"unchanged", len(summary.Unchanged),
		"preserved", len(summary.Preserved),
		"removed", len(summary.Removed()),
	)
	return multiErr.ErrorOrNil()
}

// resolve returns the location of file generated from inputFile.
func (r *Reconciler) resolve(inputFile string, file output.File) string {
	path := file.Path()
	if filepath.IsAbs(path) {
		return path
	}
	if input := output.NormalizePath(inputFile); filepath.IsAbs(input) {
		return filepath.Join(filepath.Dir(input), path)
	}
	return filepath.Join(r.root, path)
}

func (r *Reconciler) writeFile(file output.File, key string, summary *Summary) (Entry, error) {
	path := file.Path()
	action, err := write.WriteFile(r.writer, file, r.options)
	if err != nil {
		return Entry{}, err
	}
	r.logger.Debug("wrote output", "path", path, "action", string(action))

	switch action {
	case write.ActionCreate:
		summary.Created = append(summary.Created, path)
	case write.ActionUpdate:
		summary.Updated = append(summary.Updated, path)
	case write.ActionUnchanged:
		summary.Unchanged = append(summary.Unchanged, path)
	case write.ActionPreserve:
		summary.Preserved = append(summary.Preserved, path)
	}

	content, err := file.Bytes()
	if err != nil {
		return Entry{}, err
	}
	return Entry{
		Path:     key,
		Hash:     Hash(content),
		Size:     int64(len(content)),
		ItemType: file.ItemType,
		Metadata: file.Metadata,
		Preserve: file.PreserveExistingFile,
	}, nil
}
