package templating

// Renderer converts a template identifier plus rendering arguments into
// markup. Implementations are built once at startup and shared across
// requests, so Render must be safe for concurrent use.
type Renderer interface {
	Render(name string, args Args) (string, error)
}

// RendererFunc adapts a plain function to the Renderer interface.
type RendererFunc func(name string, args Args) (string, error)

// Render calls f(name, args).
func (f RendererFunc) Render(name string, args Args) (string, error) {
	return f(name, args)
}
