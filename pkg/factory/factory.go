// Package factory selects and constructs the template engine named in the
// application configuration.
package factory

import (
	"io/fs"

	"github.com/goliatone/go-templating/pkg/config"
	"github.com/goliatone/go-templating/pkg/engines/django"
	"github.com/goliatone/go-templating/pkg/engines/gohtml"
	"github.com/goliatone/go-templating/pkg/engines/handlebars"
	"github.com/goliatone/go-templating/pkg/templating"
)

// Engine names accepted in config.Templating.Engine.
const (
	EngineNone       = "none"
	EngineDjango     = django.Name
	EngineGoHTML     = gohtml.Name
	EngineHandlebars = handlebars.Name
)

var aliases = map[string]string{
	"pongo2": EngineDjango,
	"jinja":  EngineDjango,
	"html":   EngineGoHTML,
	"hbs":    EngineHandlebars,
}

// DefaultRegistry returns a registry holding the built-in engines.
func DefaultRegistry(options ...Option) *Registry {
	r := NewRegistry(options...)
	r.MustRegister(EngineDjango, newDjango)
	r.MustRegister(EngineGoHTML, newGoHTML)
	r.MustRegister(EngineHandlebars, newHandlebars)
	return r
}

// MakeRenderer builds the configured renderer from cfg.Dir. A nil renderer
// with a nil error means templating is disabled.
func MakeRenderer(cfg config.Templating, options ...Option) (templating.Renderer, error) {
	return DefaultRegistry(options...).Make(cfg, nil)
}

// MakeRendererFS is MakeRenderer with an additional template source, such as
// an embedded filesystem.
func MakeRendererFS(cfg config.Templating, fsys fs.FS, options ...Option) (templating.Renderer, error) {
	return DefaultRegistry(options...).Make(cfg, fsys)
}

func newDjango(cfg config.Templating, fsys fs.FS) (templating.Renderer, error) {
	opts := []django.Option{
		django.WithExtension(cfg.Extension),
		django.WithAutoescape(cfg.Autoescape),
		django.WithGlobalData(cfg.Globals),
	}
	if cfg.Dir != "" {
		opts = append(opts, django.WithBaseDir(cfg.Dir))
	}
	if fsys != nil {
		opts = append(opts, django.WithFS(fsys))
	}
	return django.New(opts...)
}

func newGoHTML(cfg config.Templating, fsys fs.FS) (templating.Renderer, error) {
	opts := []gohtml.Option{
		gohtml.WithExtension(cfg.Extension),
		gohtml.WithAutoescape(cfg.Autoescape),
		gohtml.WithGlobalData(cfg.Globals),
		gohtml.WithBaseDir(cfg.Dir),
	}
	if fsys != nil {
		opts = append(opts, gohtml.WithFS(fsys))
	}
	return gohtml.New(opts...)
}

func newHandlebars(cfg config.Templating, fsys fs.FS) (templating.Renderer, error) {
	opts := []handlebars.Option{
		handlebars.WithExtension(cfg.Extension),
		handlebars.WithAutoescape(cfg.Autoescape),
		handlebars.WithGlobalData(cfg.Globals),
		handlebars.WithBaseDir(cfg.Dir),
	}
	if fsys != nil {
		opts = append(opts, handlebars.WithFS(fsys))
	}
	return handlebars.New(opts...)
}
