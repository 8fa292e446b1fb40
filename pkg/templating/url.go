package templating

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
)

// URL builds links relative to the request it was created from. Templates
// see it under the `url` argument; engines that normalise arguments through
// JSON get the fields listed in MarshalJSON.
type URL struct {
	scheme string
	host   string
	path   string
	query  string
}

// NewURL binds a URL helper to r. A nil request yields a helper rooted at "/".
func NewURL(r *http.Request) URL {
	if r == nil || r.URL == nil {
		return URL{scheme: "http", path: "/"}
	}

	scheme := r.URL.Scheme
	if scheme == "" {
		scheme = "http"
		if r.TLS != nil {
			scheme = "https"
		}
	}
	host := r.Host
	if host == "" {
		host = r.URL.Host
	}
	p := r.URL.EscapedPath()
	if p == "" {
		p = "/"
	}

	return URL{
		scheme: scheme,
		host:   host,
		path:   p,
		query:  r.URL.RawQuery,
	}
}

// Abs returns the host-relative URL of the request: path plus query.
func (u URL) Abs() string {
	if u.query == "" {
		return u.path
	}
	return u.path + "?" + u.query
}

// Path returns the escaped request path.
func (u URL) Path() string {
	return u.path
}

// Query returns the raw query string without the leading "?".
func (u URL) Query() string {
	return u.query
}

// Host returns the request host, including the port when one was sent.
func (u URL) Host() string {
	return u.host
}

// Scheme returns the request scheme.
func (u URL) Scheme() string {
	return u.scheme
}

// Root returns the application root, e.g. "http://example.com/".
func (u URL) Root() string {
	if u.host == "" {
		return "/"
	}
	return u.scheme + "://" + u.host + "/"
}

// Full returns the absolute URL including scheme and host.
func (u URL) Full() string {
	if u.host == "" {
		return u.Abs()
	}
	return u.scheme + "://" + u.host + u.Abs()
}

// Child returns the path of a resource below the current one. Segments are
// path-escaped; the query string is dropped.
func (u URL) Child(segments ...string) string {
	base := strings.TrimSuffix(u.path, "/")
	var b strings.Builder
	b.WriteString(base)
	for _, segment := range segments {
		if segment == "" {
			continue
		}
		b.WriteByte('/')
		b.WriteString(url.PathEscape(segment))
	}
	if b.Len() == 0 {
		return "/"
	}
	return b.String()
}

// Parent returns the path one level above the current one.
func (u URL) Parent() string {
	trimmed := strings.TrimSuffix(u.path, "/")
	idx := strings.LastIndex(trimmed, "/")
	if idx <= 0 {
		return "/"
	}
	return trimmed[:idx]
}

// String returns Abs.
func (u URL) String() string {
	return u.Abs()
}

// MarshalJSON exposes the helper's values as plain fields.
func (u URL) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{
		"abs":    u.Abs(),
		"path":   u.Path(),
		"query":  u.Query(),
		"host":   u.Host(),
		"scheme": u.Scheme(),
		"root":   u.Root(),
		"full":   u.Full(),
	})
}
