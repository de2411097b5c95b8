package mastery

import (
	"net/http"

	"github.com/saulo-duarte/exam-prep-lambda/internal/auth"
	"github.com/saulo-duarte/exam-prep-lambda/internal/config"
)

type Handler struct {
	service        Service
	defaultSubject string
}

func NewHandler(service Service, defaultSubject string) *Handler {
	return &Handler{service: service, defaultSubject: defaultSubject}
}

func (h *Handler) ModuleMastery(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	userID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		log.Warn("User not authenticated")
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	subject := r.URL.Query().Get("subject")
	if subject == "" {
		subject = h.defaultSubject
	}

	resp, err := h.service.ModuleMastery(r.Context(), userID, subject)
	if err != nil {
		config.WriteError(w, r, err)
		return
	}

	config.JSON(w, http.StatusOK, resp)
}
