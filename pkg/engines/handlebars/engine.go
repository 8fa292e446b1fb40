// Package handlebars renders Handlebars templates through raymond.
//
// `{{value}}` is escaped and `{{{value}}}` is not. With WithAutoescape(false)
// every string argument is passed as raymond.SafeString and the `escape`
// helper opts back in.
//
// Built-in helpers:
//   - raw - mark a value as trusted markup
//   - escape - HTML-escape a value
//   - sanitize - strip markup outside the bluemonday UGC policy
//   - uppercase, lowercase, trim
//   - default - return the second argument when the first is empty
package handlebars

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"strings"
	"sync"

	"github.com/aymerick/raymond"

	"github.com/goliatone/go-templating/internal/argconv"
	"github.com/goliatone/go-templating/internal/sanitize"
	"github.com/goliatone/go-templating/pkg/templating"
)

// Name is the engine identifier used by the factory.
const Name = "handlebars"

// DefaultExtension is appended to template names that carry no extension.
const DefaultExtension = ".hbs"

// Option configures the engine before construction.
type Option func(*config)

type config struct {
	sources    []fs.FS
	extension  string
	autoescape bool
	helpers    map[string]any
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

// WithFS loads templates from an fs.FS.
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

// WithAutoescape toggles escaping of `{{value}}`. Defaults to true.
func WithAutoescape(enabled bool) Option {
	return func(cfg *config) {
		cfg.autoescape = enabled
	}
}

// WithTemplateFunc registers extra helpers on every template. Built-in
// helper names cannot be replaced.
func WithTemplateFunc(helpers map[string]any) Option {
	return func(cfg *config) {
		for name, fn := range helpers {
			name = strings.TrimSpace(name)
			if name == "" || !argconv.IsCallable(fn) {
				continue
			}
			if cfg.helpers == nil {
				cfg.helpers = make(map[string]any, len(helpers))
			}
			cfg.helpers[name] = fn
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

// Engine is a raymond-backed templating.Renderer.
type Engine struct {
	mu    sync.RWMutex
	cache map[string]*raymond.Template

	sources    []fs.FS
	tplExt     string
	autoescape bool
	helpers    map[string]any
	globals    map[string]any
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
		return nil, errors.New("handlebars: need to provide either base dir or fs.FS")
	}

	globals, err := argconv.Map(cfg.globalData)
	if err != nil {
		return nil, fmt.Errorf("handlebars: apply global data: %w", err)
	}

	helpers := defaultHelpers()
	for name, fn := range cfg.helpers {
		if _, builtin := helpers[name]; builtin {
			return nil, fmt.Errorf("handlebars: helper %q already exists", name)
		}
		helpers[name] = fn
	}
	if err := validateHelpers(helpers); err != nil {
		return nil, err
	}

	return &Engine{
		cache:      make(map[string]*raymond.Template),
		sources:    cfg.sources,
		tplExt:     cfg.extension,
		autoescape: cfg.autoescape,
		helpers:    helpers,
		globals:    globals,
	}, nil
}

// Render executes the named template with args.
func (e *Engine) Render(name string, args templating.Args) (string, error) {
	if e == nil {
		return "", errors.New("handlebars: engine is nil")
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
		return "", errors.New("handlebars: engine is nil")
	}
	tmpl, err := e.parse(templateContent)
	if err != nil {
		return "", fmt.Errorf("handlebars: parse template string: %w", err)
	}
	return e.execute(tmpl, args, "template string")
}

func (e *Engine) execute(tmpl *raymond.Template, args templating.Args, label string) (string, error) {
	data, err := argconv.Map(map[string]any(args))
	if err != nil {
		return "", fmt.Errorf("handlebars: convert args: %w", err)
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
	if !e.autoescape {
		data = markSafe(data).(map[string]any)
	}

	result, err := tmpl.Exec(data)
	if err != nil {
		return "", fmt.Errorf("handlebars: execute %s: %w", label, err)
	}
	return result, nil
}

func (e *Engine) getTemplate(path string) (*raymond.Template, error) {
	e.mu.RLock()
	if tmpl, ok := e.cache[path]; ok {
		e.mu.RUnlock()
		return tmpl, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	if tmpl, ok := e.cache[path]; ok {
		return tmpl, nil
	}

	content, err := e.read(path)
	if err != nil {
		return nil, fmt.Errorf("handlebars: load template %q: %w", path, err)
	}
	tmpl, err := e.parse(content)
	if err != nil {
		return nil, fmt.Errorf("handlebars: parse template %q: %w", path, err)
	}

	e.cache[path] = tmpl
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

// parse registers helpers per template; raymond's global registry panics on
// duplicate names, which would break building more than one engine.
func (e *Engine) parse(content string) (*raymond.Template, error) {
	tmpl, err := raymond.Parse(content)
	if err != nil {
		return nil, err
	}
	tmpl.RegisterHelpers(e.helpers)
	return tmpl, nil
}

// validateHelpers rejects helpers raymond would panic on when a template
// registers them.
func validateHelpers(helpers map[string]any) (err error) {
	for name, fn := range helpers {
		if typ := reflect.TypeOf(fn); typ.Kind() != reflect.Func || typ.NumOut() != 1 {
			return fmt.Errorf("handlebars: helper %q must be a func returning one value", name)
		}
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handlebars: invalid helper: %v", r)
		}
	}()
	tmpl, err := raymond.Parse("")
	if err != nil {
		return fmt.Errorf("handlebars: validate helpers: %w", err)
	}
	tmpl.RegisterHelpers(helpers)
	return nil
}

func markSafe(value any) any {
	switch v := value.(type) {
	case string:
		return raymond.SafeString(v)
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = markSafe(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = markSafe(item)
		}
		return out
	default:
		return value
	}
}

func defaultHelpers() map[string]any {
	return map[string]any{
		"raw": func(value any) raymond.SafeString {
			return raymond.SafeString(raymond.Str(value))
		},
		"escape": func(value any) raymond.SafeString {
			return raymond.SafeString(raymond.Escape(raymond.Str(value)))
		},
		"sanitize": func(value any) raymond.SafeString {
			return raymond.SafeString(sanitize.HTML(raymond.Str(value)))
		},
		"uppercase": func(value any) string {
			return strings.ToUpper(raymond.Str(value))
		},
		"lowercase": func(value any) string {
			return strings.ToLower(raymond.Str(value))
		},
		"trim": func(value any) string {
			return strings.TrimSpace(raymond.Str(value))
		},
		"default": func(value any, fallback any) any {
			if value == nil || value == "" {
				return fallback
			}
			return value
		},
	}
}
