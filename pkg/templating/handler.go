package templating

import (
	"errors"
	"net/http"

	"go.uber.org/zap"
)

const htmlContentType = "text/html; charset=utf-8"

// ContentFunc produces the value to render (page or element) and any extra
// template arguments for a request.
type ContentFunc func(req *Request) (value any, args Args, err error)

// StatusError lets a ContentFunc choose the response status for its error.
type StatusError interface {
	error
	StatusCode() int
}

// PageHandler serves the result of fn rendered through template name as a
// page. Errors are logged and answered with their StatusCode, or 500.
func (t *Templating) PageHandler(name string, fn ContentFunc) http.Handler {
	return t.handler("page", name, fn, t.Page)
}

// ElementHandler serves the result of fn rendered through template name as an
// element, for fragment endpoints.
func (t *Templating) ElementHandler(name string, fn ContentFunc) http.Handler {
	return t.handler("element", name, fn, t.Element)
}

type renderFn func(req *Request, name string, value any, args Args) (string, error)

func (t *Templating) handler(kind, name string, fn ContentFunc, render renderFn) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := NewRequest(r)

		var (
			value any
			args  Args
		)
		if fn != nil {
			var err error
			value, args, err = fn(req)
			if err != nil {
				t.fail(w, r, kind, name, err)
				return
			}
		}

		out, err := render(req, name, value, args)
		if err != nil {
			t.fail(w, r, kind, name, err)
			return
		}

		w.Header().Set("Content-Type", htmlContentType)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(out))
	})
}

func (t *Templating) fail(w http.ResponseWriter, r *http.Request, kind, name string, err error) {
	status := http.StatusInternalServerError
	var statusErr StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode() >= 400 {
		status = statusErr.StatusCode()
	}

	t.logger.Error("template handler failed",
		zap.String("template", name),
		zap.String("kind", kind),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.Error(err),
	)
	http.Error(w, http.StatusText(status), status)
}
