// internal/app/features/register/routes.go
package register

import "github.com/go-chi/chi/v5"

// Routes returns the router for the registration form.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeRegister)
	r.Post("/", h.HandleRegisterPost)
	return r
}
