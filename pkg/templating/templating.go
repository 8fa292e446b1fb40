package templating

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Option configures a Templating instance.
type Option func(*Templating)

// WithRenderer sets the renderer used when the request slot is empty.
func WithRenderer(renderer Renderer) Option {
	return func(t *Templating) {
		t.renderer = renderer
	}
}

// WithArgsProvider replaces the provider behind the Rendering.
func WithArgsProvider(provider ArgsProvider) Option {
	return func(t *Templating) {
		t.rendering = NewRendering(provider)
	}
}

// WithRendering installs a pre-built Rendering.
func WithRendering(rendering *Rendering) Option {
	return func(t *Templating) {
		if rendering != nil {
			t.rendering = rendering
		}
	}
}

// WithLogger sets the logger used for render diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(t *Templating) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// Templating dispatches render calls to the active renderer with the
// arguments built by its Rendering.
type Templating struct {
	rendering *Rendering
	renderer  Renderer
	logger    *zap.Logger
}

// New constructs a Templating. Without options it has no renderer of its own
// and relies on the request slot.
func New(options ...Option) *Templating {
	t := &Templating{
		rendering: NewRendering(nil),
		logger:    zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(t)
	}
	return t
}

// Rendering returns the argument builder.
func (t *Templating) Rendering() *Rendering {
	return t.rendering
}

// Renderer returns the renderer configured on the instance, which may be nil.
func (t *Templating) Renderer() Renderer {
	return t.renderer
}

// Render renders name as a page with no page value. args are merged over
// the framework arguments; later values win.
func (t *Templating) Render(req *Request, name string, args Args) (string, error) {
	return t.render(req, "render", name, t.rendering.PageArgs(req, nil), args)
}

// Page renders name with page exposed as "element".
func (t *Templating) Page(req *Request, name string, page any, args Args) (string, error) {
	return t.render(req, "page", name, t.rendering.PageArgs(req, page), args)
}

// Element renders name with element exposed as "element".
func (t *Templating) Element(req *Request, name string, element any, args Args) (string, error) {
	return t.render(req, "element", name, t.rendering.ElementArgs(req, element), args)
}

// Middleware attaches the instance renderer to every request context.
func (t *Templating) Middleware() func(http.Handler) http.Handler {
	return Middleware(t.renderer)
}

func (t *Templating) render(req *Request, kind, name string, base, extra Args) (string, error) {
	renderer := t.resolve(req)
	if renderer == nil {
		t.logger.Error("render without renderer",
			zap.String("template", name),
			zap.String("kind", kind),
		)
		return "", ErrNoRenderer
	}

	args := base
	if len(extra) > 0 {
		args = base.Merge(extra)
	}

	started := time.Now()
	out, err := renderer.Render(name, args)
	if err != nil {
		t.logger.Error("render failed",
			zap.String("template", name),
			zap.String("kind", kind),
			zap.Error(err),
		)
		return "", err
	}

	t.logger.Debug("rendered template",
		zap.String("template", name),
		zap.String("kind", kind),
		zap.Int("bytes", len(out)),
		zap.Duration("duration", time.Since(started)),
	)
	return out, nil
}

func (t *Templating) resolve(req *Request) Renderer {
	if renderer := req.Renderer(); renderer != nil {
		return renderer
	}
	return t.renderer
}

var defaultTemplating = New()

// Render renders name using the renderer in the request slot.
func Render(req *Request, name string, args Args) (string, error) {
	return defaultTemplating.Render(req, name, args)
}

// Page renders name as a page using the renderer in the request slot.
func Page(req *Request, name string, page any, args Args) (string, error) {
	return defaultTemplating.Page(req, name, page, args)
}

// Element renders name as an element using the renderer in the request slot.
func Element(req *Request, name string, element any, args Args) (string, error) {
	return defaultTemplating.Element(req, name, element, args)
}
