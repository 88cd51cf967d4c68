// internal/app/features/secrets/templates.go
package secrets

import (
	"embed"

	"github.com/dalemusser/waffle/pantry/templates"
)

//go:embed templates/*.gohtml
var FS embed.FS

func init() {
	templates.Register(templates.Set{
		Name:     "secrets",
		FS:       FS,
		Patterns: []string{"templates/*.gohtml"},
	})
}
