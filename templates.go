package templating

import (
	"embed"
	"io/fs"

	"github.com/goliatone/go-templating/pkg/factory"
)

//go:embed templates/django/*.html templates/gohtml/*.html templates/handlebars/*.hbs
var embeddedTemplates embed.FS

// EmbeddedTemplates exposes the bundled example templates for engine so
// callers can serve pages without shipping a template directory. Unknown
// engines yield nil.
func EmbeddedTemplates(engine string) fs.FS {
	name := factory.Normalize(engine)
	if name == "" || name == factory.EngineNone {
		return nil
	}
	sub, err := fs.Sub(embeddedTemplates, "templates/"+name)
	if err != nil {
		return nil
	}
	entries, err := fs.ReadDir(sub, ".")
	if err != nil || len(entries) == 0 {
		return nil
	}
	return sub
}
