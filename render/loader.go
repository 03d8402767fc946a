package render

import (
	"fmt"
	"io/fs"
	"log/slog"
	"text/template"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/cpcf/t4toolbox/engine"
)

// DefaultCacheSize bounds the number of parsed templates a Loader keeps.
const DefaultCacheSize = 128

// Loader reads and parses templates from a file system. Parsed templates are
// kept in an LRU cache keyed by path and shared by every TextTemplate using
// the loader.
type Loader struct {
	fsys      fs.FS
	funcs     template.FuncMap
	cacheSize int
	logger    *slog.Logger
	cache     *lru.Cache[string, *template.Template]
}

type LoaderOption func(*Loader)

// WithFuncs adds functions available to every template. They override the
// defaults of the same name.
func WithFuncs(funcs template.FuncMap) LoaderOption {
	return func(l *Loader) {
		for name, fn := range funcs {
			l.funcs[name] = fn
		}
	}
}

func WithCacheSize(size int) LoaderOption {
	return func(l *Loader) {
		l.cacheSize = size
	}
}

func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

func NewLoader(fsys fs.FS, opts ...LoaderOption) (*Loader, error) {
	if fsys == nil {
		return nil, fmt.Errorf("file system: %w", engine.ErrArgument)
	}

	l := &Loader{
		fsys:      fsys,
		funcs:     DefaultFuncMap(),
		cacheSize: DefaultCacheSize,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}

	cache, err := lru.New[string, *template.Template](l.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create template cache: %w", err)
	}
	l.cache = cache
	return l, nil
}

// FS returns the file system templates are read from.
func (l *Loader) FS() fs.FS { return l.fsys }

// Load returns the parsed template at path, parsing it on first use.
func (l *Loader) Load(path string) (*template.Template, error) {
	if tmpl, ok := l.cache.Get(path); ok {
		return tmpl, nil
	}

	content, err := fs.ReadFile(l.fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template %s: %w", path, err)
	}

	// Context functions are bound per execution; placeholders let the
	// template parse.
	tmpl, err := template.New(path).
		Funcs(l.funcs).
		Funcs((&TextTemplate{}).contextFuncs()).
		Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", path, err)
	}

	l.cache.Add(path, tmpl)
	l.logger.Debug("parsed template", "path", path)
	return tmpl, nil
}

// Len returns the number of cached templates.
func (l *Loader) Len() int { return l.cache.Len() }

// Purge drops every cached template.
func (l *Loader) Purge() { l.cache.Purge() }
