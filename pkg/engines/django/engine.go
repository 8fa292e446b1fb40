// Package django renders Django-syntax templates through pongo2.
//
// Interpolations are escaped by default and `|safe` opts out. With
// WithAutoescape(false) every template is wrapped in an
// `{% autoescape off %}` block and `|escape` opts back in.
package django

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-templating/internal/argconv"
	"github.com/goliatone/go-templating/internal/sanitize"
	"github.com/goliatone/go-templating/pkg/templating"
)

// Name is the engine identifier used by the factory.
const Name = "django"

// DefaultExtension is appended to template names that carry no extension.
const DefaultExtension = ".html"

// Option configures the engine before construction.
type Option func(*config)

type config struct {
	baseDir    string
	templates  fs.FS
	extension  string
	autoescape bool
	templateFn map[string]any
	globalData map[string]any
}

// WithBaseDir loads templates from a directory on disk.
func WithBaseDir(dir string) Option {
	return func(cfg *config) {
		cfg.baseDir = strings.TrimSpace(dir)
	}
}

// WithFS loads templates from an fs.FS.
func WithFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templates = files
	}
}

// WithExtension overrides DefaultExtension.
func WithExtension(ext string) Option {
	return func(cfg *config) {
		trimmed := strings.TrimSpace(ext)
		if trimmed == "" {
			return
		}
		if !strings.HasPrefix(trimmed, ".") {
			trimmed = "." + trimmed
		}
		cfg.extension = trimmed
	}
}

// WithAutoescape toggles escaping of interpolated values. Defaults to true.
func WithAutoescape(enabled bool) Option {
	return func(cfg *config) {
		cfg.autoescape = enabled
	}
}

// WithTemplateFunc registers pongo2 filters, or callable globals for any
// other func, when the engine loads.
func WithTemplateFunc(funcs map[string]any) Option {
	return func(cfg *config) {
		if len(funcs) == 0 {
			return
		}
		if cfg.templateFn == nil {
			cfg.templateFn = make(map[string]any, len(funcs))
		}
		for name, fn := range funcs {
			if name = strings.TrimSpace(name); name != "" {
				cfg.templateFn[name] = fn
			}
		}
	}
}

// WithGlobalData seeds values available to every template.
func WithGlobalData(data map[string]any) Option {
	return func(cfg *config) {
		if len(data) == 0 {
			return
		}
		if cfg.globalData == nil {
			cfg.globalData = make(map[string]any, len(data))
		}
		for key, value := range data {
			cfg.globalData[strings.TrimSpace(key)] = value
		}
	}
}

// Engine is a pongo2-backed templating.Renderer.
type Engine struct {
	mu sync.RWMutex

	templateSet *pongo2.TemplateSet
	templates   map[string]*pongo2.Template
	sources     []fs.FS
	tplExt      string
	autoescape  bool
}

var _ templating.Renderer = (*Engine)(nil)

// New constructs an Engine. Either a base dir or an fs.FS is required.
func New(options ...Option) (*Engine, error) {
	cfg := &config{
		extension:  DefaultExtension,
		autoescape: true,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cfg)
	}

	if cfg.baseDir == "" && cfg.templates == nil {
		return nil, errors.New("django: need to provide either base dir or fs.FS")
	}

	var (
		loaders []pongo2.TemplateLoader
		sources []fs.FS
	)
	if cfg.baseDir != "" {
		loader, err := pongo2.NewLocalFileSystemLoader(cfg.baseDir)
		if err != nil {
			return nil, fmt.Errorf("django: create local loader: %w", err)
		}
		loaders = append(loaders, loader)
		sources = append(sources, os.DirFS(cfg.baseDir))
	}
	if cfg.templates != nil {
		loaders = append(loaders, pongo2.NewFSLoader(cfg.templates))
		sources = append(sources, cfg.templates)
	}

	engine := &Engine{
		templateSet: pongo2.NewSet("templating", loaders...),
		templates:   make(map[string]*pongo2.Template),
		sources:     sources,
		tplExt:      cfg.extension,
		autoescape:  cfg.autoescape,
	}
	registerDefaultFilters()

	if err := engine.setGlobals(cfg.globalData); err != nil {
		return nil, fmt.Errorf("django: apply global data: %w", err)
	}
	for name, fn := range cfg.templateFn {
		if err := engine.registerTemplateFunc(name, fn); err != nil {
			return nil, fmt.Errorf("django: register template func %q: %w", name, err)
		}
	}

	return engine, nil
}

// Render executes the named template with args.
func (e *Engine) Render(name string, args templating.Args) (string, error) {
	if e == nil || e.templateSet == nil {
		return "", errors.New("django: engine is nil")
	}
	templatePath := name
	if !strings.HasSuffix(templatePath, e.tplExt) {
		templatePath += e.tplExt
	}

	tmpl, err := e.getTemplate(templatePath)
	if err != nil {
		return "", err
	}
	return e.execute(tmpl, args, fmt.Sprintf("template %q", templatePath))
}

// RenderString parses and executes templateContent without caching it.
func (e *Engine) RenderString(templateContent string, args templating.Args) (string, error) {
	if e == nil || e.templateSet == nil {
		return "", errors.New("django: engine is nil")
	}

	tmpl, err := e.templateSet.FromString(e.wrap(templateContent))
	if err != nil {
		return "", fmt.Errorf("django: parse template string: %w", err)
	}
	return e.execute(tmpl, args, "template string")
}

func (e *Engine) setGlobals(data map[string]any) error {
	if len(data) == 0 {
		return nil
	}
	globals, err := argconv.Map(data)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.templateSet.Globals == nil {
		e.templateSet.Globals = make(pongo2.Context)
	}
	e.templateSet.Globals.Update(pongo2.Context(globals))
	return nil
}

func (e *Engine) execute(tmpl *pongo2.Template, args templating.Args, label string) (string, error) {
	viewContext, err := argconv.Map(map[string]any(args))
	if err != nil {
		return "", fmt.Errorf("django: convert args: %w", err)
	}

	var buf bytes.Buffer

	e.mu.RLock()
	err = tmpl.ExecuteWriter(pongo2.Context(viewContext), &buf)
	e.mu.RUnlock()

	if err != nil {
		return "", fmt.Errorf("django: execute %s: %w", label, err)
	}
	return buf.String(), nil
}

// registerTemplateFunc installs fn as a filter when it has the pongo2 filter
// signature and as a callable global otherwise. Filters live in pongo2's
// process-wide registry, so the first registration of a name wins.
func (e *Engine) registerTemplateFunc(name string, fn any) error {
	switch f := fn.(type) {
	case nil:
		return nil
	case pongo2.FilterFunction:
		return registerFilter(name, f)
	case func(*pongo2.Value, *pongo2.Value) (*pongo2.Value, *pongo2.Error):
		return registerFilter(name, f)
	}
	if !argconv.IsCallable(fn) {
		return fmt.Errorf("%T is not a func", fn)
	}
	return e.setGlobals(map[string]any{name: fn})
}

func registerFilter(name string, filter pongo2.FilterFunction) error {
	if pongo2.FilterExists(name) {
		return nil
	}
	return pongo2.RegisterFilter(name, filter)
}

func (e *Engine) getTemplate(path string) (*pongo2.Template, error) {
	e.mu.RLock()
	if tmpl, ok := e.templates[path]; ok {
		e.mu.RUnlock()
		return tmpl, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	if tmpl, ok := e.templates[path]; ok {
		return tmpl, nil
	}

	tmpl, err := e.load(path)
	if err != nil {
		return nil, fmt.Errorf("django: load template %q: %w", path, err)
	}

	e.templates[path] = tmpl
	return tmpl, nil
}

func (e *Engine) load(path string) (*pongo2.Template, error) {
	if e.autoescape {
		return e.templateSet.FromFile(path)
	}

	var lastErr error = fs.ErrNotExist
	for _, source := range e.sources {
		data, err := fs.ReadFile(source, path)
		if err != nil {
			lastErr = err
			continue
		}
		return e.templateSet.FromString(e.wrap(string(data)))
	}
	return nil, lastErr
}

func (e *Engine) wrap(content string) string {
	if e.autoescape {
		return content
	}
	return "{% autoescape off %}" + content + "{% endautoescape %}"
}

func registerDefaultFilters() {
	_ = registerFilter("trim", filterTrim)
	_ = registerFilter("sanitize", filterSanitize)
}

func filterTrim(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if in.IsNil() {
		return pongo2.AsValue(""), nil
	}
	return pongo2.AsValue(strings.TrimSpace(in.String())), nil
}

func filterSanitize(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if in.IsNil() {
		return pongo2.AsSafeValue(""), nil
	}
	return pongo2.AsSafeValue(sanitize.HTML(in.String())), nil
}
