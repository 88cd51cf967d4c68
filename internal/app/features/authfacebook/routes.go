// internal/app/features/authfacebook/routes.go
package authfacebook

import "github.com/go-chi/chi/v5"

// Routes returns the router for Facebook OAuth endpoints.
// These routes are public (no authentication required).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	// GET /auth/facebook - Initiate Facebook OAuth flow
	r.Get("/", h.ServeLogin)

	// GET /auth/facebook/secrets - Handle Facebook OAuth callback
	r.Get("/secrets", h.ServeCallback)

	return r
}
