// Package templating is the engine-neutral rendering layer for HTTP handlers.
//
// A Renderer wraps one template engine. Templating resolves the renderer for
// a request, builds the rendering arguments through an ArgsProvider, and hands
// both to the renderer:
//
//	t := templating.New(templating.WithRenderer(renderer))
//	mux.Handle("/", t.Middleware()(t.PageHandler("index", func(req *templating.Request) (any, templating.Args, error) {
//	  return map[string]any{"title": "Home"}, nil, nil
//	})))
//
// Every template receives a `url` helper bound to the current request. Pages
// and elements also receive `element`. Applications push extra, app-wide
// values to every template by supplying their own ArgsProvider:
//
//	provider := templating.Extend(templating.DefaultArgs{}, func(req *templating.Request, args templating.Args) templating.Args {
//	  args["app_name"] = "example"
//	  return args
//	})
//	t := templating.New(templating.WithArgsProvider(provider))
package templating
