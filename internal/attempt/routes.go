package attempt

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Get("/history", h.History)
	r.Get("/{id}", h.Detail)
	r.Post("/{id}/answer", h.SaveAnswer)
	r.Post("/{id}/submit", h.Submit)
	r.Get("/{id}/result", h.Result)

	return r
}
