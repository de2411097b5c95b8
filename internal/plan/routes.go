package plan

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Post("/generate", h.Generate)
	r.Get("/active", h.Active)
	r.Post("/items/{id}/start", h.StartItem)
	r.Patch("/items/{id}/status", h.UpdateItemStatus)

	return r
}
