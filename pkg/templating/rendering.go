package templating

// ArgsProvider computes the arguments common to every template rendered for
// a request. It is the extension point for application-wide template data.
type ArgsProvider interface {
	Args(req *Request) Args
}

// ArgsProviderFunc adapts a function to ArgsProvider.
type ArgsProviderFunc func(req *Request) Args

// Args calls f(req).
func (f ArgsProviderFunc) Args(req *Request) Args {
	return f(req)
}

// DefaultArgs provides the base argument set: the request-bound url helper.
type DefaultArgs struct{}

// Args returns {"url": req.URL()}.
func (DefaultArgs) Args(req *Request) Args {
	return Args{ArgURL: req.URL()}
}

// Extend layers fn on top of base. fn receives a fresh copy of base's result
// and may add or overwrite keys.
func Extend(base ArgsProvider, fn func(req *Request, args Args) Args) ArgsProvider {
	if base == nil {
		base = DefaultArgs{}
	}
	if fn == nil {
		return base
	}
	return ArgsProviderFunc(func(req *Request) Args {
		args := base.Args(req).Clone()
		if out := fn(req, args); out != nil {
			return out
		}
		return args
	})
}

// Rendering builds the argument maps for the three rendering entry points.
// ElementArgs and PageArgs always derive from the configured provider, so a
// key added there is visible to pages and elements alike.
type Rendering struct {
	provider ArgsProvider
}

// NewRendering returns a Rendering backed by provider, or DefaultArgs when
// provider is nil.
func NewRendering(provider ArgsProvider) *Rendering {
	if provider == nil {
		provider = DefaultArgs{}
	}
	return &Rendering{provider: provider}
}

// Args returns the common arguments for req.
func (r *Rendering) Args(req *Request) Args {
	args := r.argsProvider().Args(req)
	// providers may hand back shared maps; callers get their own copy
	return args.Clone()
}

// ElementArgs returns Args(req) plus the element under "element".
func (r *Rendering) ElementArgs(req *Request, element any) Args {
	args := r.Args(req)
	args[ArgElement] = element
	return args
}

// PageArgs returns Args(req) plus the page under "element". Pages and
// elements share the key so templates can be used as either.
func (r *Rendering) PageArgs(req *Request, page any) Args {
	args := r.Args(req)
	args[ArgElement] = page
	return args
}

func (r *Rendering) argsProvider() ArgsProvider {
	if r == nil || r.provider == nil {
		return DefaultArgs{}
	}
	return r.provider
}
