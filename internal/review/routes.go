package review

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes mounts the ledger views. Review-exam generation lives with the
// paper composer and is passed in.
func Routes(h *Handler, generateReview http.HandlerFunc) http.Handler {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Post("/review/generate", generateReview)

	return r
}
