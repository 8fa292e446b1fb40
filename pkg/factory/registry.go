package factory

import (
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/goliatone/go-templating/pkg/config"
	"github.com/goliatone/go-templating/pkg/templating"
)

// Constructor builds a renderer from engine configuration. fsys is an
// optional template source used in addition to cfg.Dir.
type Constructor func(cfg config.Templating, fsys fs.FS) (templating.Renderer, error)

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used to report engine selection.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Registry stores engine constructors by name.
type Registry struct {
	mu           sync.RWMutex
	constructors map[string]Constructor
	logger       *zap.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(options ...Option) *Registry {
	r := &Registry{
		constructors: make(map[string]Constructor),
		logger:       zap.NewNop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Register adds a constructor. Names are case-insensitive; duplicates, empty
// names and the reserved "none" return an error.
func (r *Registry) Register(name string, constructor Constructor) error {
	if constructor == nil {
		return fmt.Errorf("factory: constructor is required")
	}
	key := Normalize(name)
	if key == "" {
		return fmt.Errorf("factory: engine name is required")
	}
	if key == EngineNone {
		return fmt.Errorf("factory: engine name %q is reserved", EngineNone)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.constructors[key]; exists {
		return fmt.Errorf("factory: engine %q already registered", key)
	}
	r.constructors[key] = constructor
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Registry) MustRegister(name string, constructor Constructor) {
	if err := r.Register(name, constructor); err != nil {
		panic(err)
	}
}

// Has reports whether an engine is registered under name or one of its
// aliases.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.constructors[Normalize(name)]
	return ok
}

// List returns the registered engine names in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.constructors))
	for name := range r.constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Make builds the renderer selected by cfg.Engine. The "none" engine yields
// a nil renderer and a nil error.
func (r *Registry) Make(cfg config.Templating, fsys fs.FS) (templating.Renderer, error) {
	key := Normalize(cfg.Engine)
	if key == "" || key == EngineNone {
		r.logger.Info("templating disabled", zap.String("engine", EngineNone))
		return nil, nil
	}

	r.mu.RLock()
	constructor, ok := r.constructors[key]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("factory: unknown engine %q (available: %s)", cfg.Engine, strings.Join(r.List(), ", "))
	}

	renderer, err := constructor(cfg, fsys)
	if err != nil {
		return nil, fmt.Errorf("factory: build %s renderer: %w", key, err)
	}

	r.logger.Info("templating engine selected",
		zap.String("engine", key),
		zap.String("dir", cfg.Dir),
		zap.Bool("autoescape", cfg.Autoescape),
		zap.Bool("embedded", fsys != nil),
	)
	return renderer, nil
}

// Normalize lowercases and trims an engine name and resolves aliases such as
// "pongo2" or "hbs" to the canonical engine name.
func Normalize(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := aliases[key]; ok {
		return alias
	}
	return key
}
