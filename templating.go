// Package templating is the top-level entry point: it turns application
// configuration into a ready-to-use templating.Templating.
package templating

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/goliatone/go-templating/pkg/config"
	"github.com/goliatone/go-templating/pkg/factory"
	core "github.com/goliatone/go-templating/pkg/templating"
)

// Templating aliases the dispatcher type for callers importing only the
// module root.
type Templating = core.Templating

// Args aliases the rendering arguments type.
type Args = core.Args

// MakeRenderer builds the renderer named by cfg. Without a template dir the
// bundled templates for the engine are used. A nil renderer means
// templating is disabled.
func MakeRenderer(cfg config.Config, logger *zap.Logger) (core.Renderer, error) {
	engineCfg := cfg.Templating

	opts := []factory.Option{factory.WithLogger(logger)}
	if engineCfg.Dir != "" {
		return factory.MakeRenderer(engineCfg, opts...)
	}
	return factory.MakeRendererFS(engineCfg, EmbeddedTemplates(engineCfg.Engine), opts...)
}

// NewTemplating wires config, engine factory and dispatcher together.
// options are applied after the renderer and logger, so they can override
// either.
func NewTemplating(cfg config.Config, logger *zap.Logger, options ...core.Option) (*Templating, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	renderer, err := MakeRenderer(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("templating: %w", err)
	}

	opts := append([]core.Option{
		core.WithRenderer(renderer),
		core.WithLogger(logger),
	}, options...)
	return core.New(opts...), nil
}
