package user

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes mounts the caller's profile. Goals themselves are managed under
// /goals.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Get("/me", h.Me)

	return r
}
