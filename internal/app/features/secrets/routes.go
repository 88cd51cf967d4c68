// internal/app/features/secrets/routes.go
package secrets

import "github.com/go-chi/chi/v5"

// Routes returns the router for the public secrets board.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeSecrets)
	return r
}
