// internal/app/features/submit/routes.go
package submit

import (
	"github.com/go-chi/chi/v5"
	"github.com/siddhanthpranavrao/authentication/internal/app/system/auth"
)

// Routes wires the submit feature. Both the form and the post are gated:
// anonymous visitors are redirected to /login with a return URL.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Get("/", h.ServeSubmit)
		pr.Post("/", h.HandleSubmitPost)
	})

	return r
}
