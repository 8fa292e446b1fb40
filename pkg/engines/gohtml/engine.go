// Package gohtml renders Go templates. With autoescape on (the default) it
// uses html/template's contextual escaping and a `safe` func marks trusted
// markup. With autoescape off it uses text/template and templates opt in to
// escaping through the builtin `html` func.
package gohtml

import (
	"bytes"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"io/fs"
	"os"
	"strings"
	"sync"
	texttemplate "text/template"

	"github.com/goliatone/go-templating/internal/argconv"
	"github.com/goliatone/go-templating/internal/sanitize"
	"github.com/goliatone/go-templating/pkg/templating"
)

// Name is the engine identifier used by the factory.
const Name = "gohtml"

// DefaultExtension is appended to template names that carry no extension.
const DefaultExtension = ".html"

// Option configures the engine before construction.
type Option func(*config)

type config struct {
	sources    []fs.FS
	extension  string
	autoescape bool
	funcs      map[string]any
	globalData map[string]any
}

// WithBaseDir loads templates from a directory on disk.
func WithBaseDir(dir string) Option {
	return func(cfg *config) {
		if trimmed := strings.TrimSpace(dir); trimmed != "" {
			cfg.sources = append(cfg.sources, os.DirFS(trimmed))
		}
	}
}

// WithFS loads templates from an fs.FS. Sources are searched in the order
// they were added.
func WithFS(files fs.FS) Option {
	return func(cfg *config) {
		if files != nil {
			cfg.sources = append(cfg.sources, files)
		}
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

// WithAutoescape selects html/template (true, default) or text/template.
func WithAutoescape(enabled bool) Option {
	return func(cfg *config) {
		cfg.autoescape = enabled
	}
}

// WithTemplateFunc adds funcs to every template's FuncMap.
func WithTemplateFunc(funcs map[string]any) Option {
	return func(cfg *config) {
		for name, fn := range funcs {
			name = strings.TrimSpace(name)
			if name == "" || !argconv.IsCallable(fn) {
				continue
			}
			if cfg.funcs == nil {
				cfg.funcs = make(map[string]any, len(funcs))
			}
			cfg.funcs[name] = fn
		}
	}
}

// WithGlobalData seeds values merged under every call's arguments.
func WithGlobalData(data map[string]any) Option {
	return func(cfg *config) {
		for key, value := range data {
			key = strings.TrimSpace(key)
			if key == "" {
				continue
			}
			if cfg.globalData == nil {
				cfg.globalData = make(map[string]any, len(data))
			}
			cfg.globalData[key] = value
		}
	}
}

type executor interface {
	Execute(w *bytes.Buffer, data any) error
}

type htmlExecutor struct{ tmpl *htmltemplate.Template }

func (x htmlExecutor) Execute(w *bytes.Buffer, data any) error { return x.tmpl.Execute(w, data) }

type textExecutor struct{ tmpl *texttemplate.Template }

func (x textExecutor) Execute(w *bytes.Buffer, data any) error { return x.tmpl.Execute(w, data) }

// Engine is a html/template or text/template backed templating.Renderer.
type Engine struct {
	mu sync.RWMutex

	sources    []fs.FS
	tplExt     string
	autoescape bool
	funcs      map[string]any
	globals    map[string]any
	templates  map[string]executor
}

var _ templating.Renderer = (*Engine)(nil)

// New constructs an Engine. At least one template source is required.
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
	if len(cfg.sources) == 0 {
		return nil, errors.New("gohtml: need to provide either base dir or fs.FS")
	}

	globals, err := argconv.Map(cfg.globalData)
	if err != nil {
		return nil, fmt.Errorf("gohtml: apply global data: %w", err)
	}

	engine := &Engine{
		sources:    cfg.sources,
		tplExt:     cfg.extension,
		autoescape: cfg.autoescape,
		globals:    globals,
		templates:  make(map[string]executor),
	}
	engine.funcs = engine.defaultFuncs()
	for name, fn := range cfg.funcs {
		engine.funcs[name] = fn
	}
	return engine, nil
}

// Render executes the named template with args. Global data sits underneath
// args.
func (e *Engine) Render(name string, args templating.Args) (string, error) {
	if e == nil {
		return "", errors.New("gohtml: engine is nil")
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
	if e == nil {
		return "", errors.New("gohtml: engine is nil")
	}
	tmpl, err := e.parse("inline", templateContent)
	if err != nil {
		return "", fmt.Errorf("gohtml: parse template string: %w", err)
	}
	return e.execute(tmpl, args, "template string")
}

func (e *Engine) execute(tmpl executor, args templating.Args, label string) (string, error) {
	data, err := argconv.Map(map[string]any(args))
	if err != nil {
		return "", fmt.Errorf("gohtml: convert args: %w", err)
	}
	if len(e.globals) > 0 {
		merged := make(map[string]any, len(e.globals)+len(data))
		for key, value := range e.globals {
			merged[key] = value
		}
		for key, value := range data {
			merged[key] = value
		}
		data = merged
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("gohtml: execute %s: %w", label, err)
	}
	return buf.String(), nil
}

func (e *Engine) getTemplate(path string) (executor, error) {
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

	content, err := e.read(path)
	if err != nil {
		return nil, fmt.Errorf("gohtml: load template %q: %w", path, err)
	}
	tmpl, err := e.parse(path, content)
	if err != nil {
		return nil, fmt.Errorf("gohtml: parse template %q: %w", path, err)
	}

	e.templates[path] = tmpl
	return tmpl, nil
}

func (e *Engine) read(path string) (string, error) {
	var lastErr error = fs.ErrNotExist
	for _, source := range e.sources {
		data, err := fs.ReadFile(source, path)
		if err != nil {
			lastErr = err
			continue
		}
		return string(data), nil
	}
	return "", lastErr
}

func (e *Engine) parse(name, content string) (executor, error) {
	if e.autoescape {
		tmpl, err := htmltemplate.New(name).Funcs(htmltemplate.FuncMap(e.funcs)).Parse(content)
		if err != nil {
			return nil, err
		}
		return htmlExecutor{tmpl: tmpl}, nil
	}
	tmpl, err := texttemplate.New(name).Funcs(texttemplate.FuncMap(e.funcs)).Parse(content)
	if err != nil {
		return nil, err
	}
	return textExecutor{tmpl: tmpl}, nil
}

func (e *Engine) defaultFuncs() map[string]any {
	if e.autoescape {
		return map[string]any{
			"safe": func(v any) htmltemplate.HTML {
				return htmltemplate.HTML(stringify(v))
			},
			"sanitize": func(v any) htmltemplate.HTML {
				return htmltemplate.HTML(sanitize.HTML(v))
			},
		}
	}
	return map[string]any{
		"safe":     stringify,
		"sanitize": sanitize.HTML,
	}
}

func stringify(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
