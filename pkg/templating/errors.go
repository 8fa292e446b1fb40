package templating

import "errors"

// ErrNoRenderer is returned when rendering is attempted without a renderer on
// either the request or the Templating instance. It signals a configuration
// problem: a nil renderer is a valid factory result until something renders.
var ErrNoRenderer = errors.New("templating: no renderer configured")
