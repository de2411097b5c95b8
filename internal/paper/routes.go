package paper

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes mounts the student exam list. Starting an exam belongs to the
// attempt runtime and is passed in.
func Routes(h *Handler, startExam http.HandlerFunc) http.Handler {
	r := chi.NewRouter()

	r.Get("/", h.ListPublished)
	r.Post("/{id}/start", startExam)

	return r
}

func AdminRoutes(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Get("/", h.AdminList)
	r.Post("/{id}/publish", h.Publish)
	r.Post("/{id}/archive", h.Archive)
	r.Post("/diagnostic/regenerate", h.RegenerateDiagnostic)

	return r
}
