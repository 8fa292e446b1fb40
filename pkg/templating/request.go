package templating

import (
	"context"
	"net/http"
)

type rendererContextKey struct{}

// ContextWithRenderer returns a copy of ctx carrying renderer. A nil renderer
// is stored as-is and resolves to "no renderer".
func ContextWithRenderer(ctx context.Context, renderer Renderer) context.Context {
	return context.WithValue(ctx, rendererContextKey{}, renderer)
}

// RendererFromContext returns the renderer attached by ContextWithRenderer.
func RendererFromContext(ctx context.Context) (Renderer, bool) {
	if ctx == nil {
		return nil, false
	}
	renderer, ok := ctx.Value(rendererContextKey{}).(Renderer)
	return renderer, ok && renderer != nil
}

// Request is the per-request handle passed through the rendering call chain.
// It carries the HTTP request and an explicit renderer slot.
type Request struct {
	HTTP     *http.Request
	renderer Renderer
}

// NewRequest wraps r, filling the renderer slot from the request context when
// a renderer was attached there by Middleware.
func NewRequest(r *http.Request) *Request {
	req := &Request{HTTP: r}
	if r != nil {
		if renderer, ok := RendererFromContext(r.Context()); ok {
			req.renderer = renderer
		}
	}
	return req
}

// WithRenderer returns a copy of the request with the renderer slot set.
func (r *Request) WithRenderer(renderer Renderer) *Request {
	out := &Request{renderer: renderer}
	if r != nil {
		out.HTTP = r.HTTP
	}
	return out
}

// Renderer returns the renderer in the slot, or nil.
func (r *Request) Renderer() Renderer {
	if r == nil {
		return nil
	}
	return r.renderer
}

// URL returns a URL helper bound to the request.
func (r *Request) URL() URL {
	if r == nil {
		return NewURL(nil)
	}
	return NewURL(r.HTTP)
}

// Middleware attaches renderer to every request context so NewRequest picks
// it up downstream.
func Middleware(renderer Renderer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(ContextWithRenderer(r.Context(), renderer)))
		})
	}
}
