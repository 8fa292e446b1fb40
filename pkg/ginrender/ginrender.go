// Package ginrender wires templating into gin handlers.
//
//	r := gin.New()
//	r.Use(ginrender.Middleware(renderer))
//	r.GET("/", func(c *gin.Context) {
//	  ginrender.Page(c, t, http.StatusOK, "index", nil, templating.Args{"title": "Home"})
//	})
package ginrender

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/goliatone/go-templating/pkg/templating"
)

const htmlContentType = "text/html; charset=utf-8"

// Middleware attaches renderer to the request context of every gin request.
func Middleware(renderer templating.Renderer) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(templating.ContextWithRenderer(c.Request.Context(), renderer))
		c.Next()
	}
}

// Request wraps the gin request for templating calls.
func Request(c *gin.Context) *templating.Request {
	return templating.NewRequest(c.Request)
}

// Page renders name as a page and writes it with status. On failure the
// error is recorded on the context and the request aborts with 500.
func Page(c *gin.Context, t *templating.Templating, status int, name string, page any, args templating.Args) {
	out, err := t.Page(Request(c), name, page, args)
	write(c, status, out, err)
}

// Element renders name as an element and writes it with status.
func Element(c *gin.Context, t *templating.Templating, status int, name string, element any, args templating.Args) {
	out, err := t.Element(Request(c), name, element, args)
	write(c, status, out, err)
}

// PageHandler is the gin form of Templating.PageHandler: fn supplies the page
// and extra args, and a fn error aborts with its StatusCode or 500.
func PageHandler(t *templating.Templating, name string, fn templating.ContentFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, args, ok := content(c, fn)
		if !ok {
			return
		}
		Page(c, t, http.StatusOK, name, value, args)
	}
}

// ElementHandler is PageHandler for elements.
func ElementHandler(t *templating.Templating, name string, fn templating.ContentFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, args, ok := content(c, fn)
		if !ok {
			return
		}
		Element(c, t, http.StatusOK, name, value, args)
	}
}

func content(c *gin.Context, fn templating.ContentFunc) (any, templating.Args, bool) {
	if fn == nil {
		return nil, nil, true
	}
	value, args, err := fn(Request(c))
	if err != nil {
		status := http.StatusInternalServerError
		var statusErr templating.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode() >= 400 {
			status = statusErr.StatusCode()
		}
		_ = c.AbortWithError(status, err)
		return nil, nil, false
	}
	return value, args, true
}

func write(c *gin.Context, status int, out string, err error) {
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	c.Data(status, htmlContentType, []byte(out))
}
