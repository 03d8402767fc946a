package render

import (
	"io/fs"
	"strings"

	"github.com/cpcf/t4toolbox/engine"
)

// TemplateExt marks the files DirGenerator renders.
const TemplateExt = ".tmpl"

// DirGenerator renders every template file under Dir into an output file at
// the same relative path with TemplateExt removed.
type DirGenerator struct {
	engine.Generator

	Loader *Loader
	Dir    string
	Data   any

	// Configure, when set, adjusts each template before it is rendered,
	// typically its Output item.
	Configure func(*TextTemplate)
}

func (g *DirGenerator) Validate() error {
	if g.Loader == nil {
		return engine.NewTransformationError("template loader is not set")
	}
	if g.Dir == "" {
		g.Dir = "."
	}
	return nil
}

func (g *DirGenerator) RunCore() error {
	ctx, err := g.Context()
	if err != nil {
		return err
	}

	return fs.WalkDir(g.Loader.FS(), g.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, TemplateExt) {
			return nil
		}

		tmpl := New(g.Loader, path, g.Data)
		if err := tmpl.SetContext(ctx); err != nil {
			return err
		}
		tmpl.Output().SetFile(strings.TrimSuffix(relative(g.Dir, path), TemplateExt))
		if g.Configure != nil {
			g.Configure(tmpl)
		}
		return engine.Render(tmpl)
	})
}

func relative(dir, path string) string {
	if dir == "." {
		return path
	}
	return strings.TrimPrefix(strings.TrimPrefix(path, dir), "/")
}
