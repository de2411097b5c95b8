package review

import (
	"net/http"
	"strconv"

	"github.com/saulo-duarte/exam-prep-lambda/internal/auth"
	"github.com/saulo-duarte/exam-prep-lambda/internal/config"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	userID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		log.Warn("User not authenticated")
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	query := ListQuery{}
	values := r.URL.Query()
	query.DueOnly, _ = strconv.ParseBool(values.Get("due_only"))
	if v := values.Get("page"); v != "" {
		if query.Page, err = strconv.Atoi(v); err != nil {
			http.Error(w, "invalid page", http.StatusBadRequest)
			return
		}
	}
	if v := values.Get("size"); v != "" {
		if query.Size, err = strconv.Atoi(v); err != nil {
			http.Error(w, "invalid size", http.StatusBadRequest)
			return
		}
	}

	resp, err := h.service.List(r.Context(), userID, query)
	if err != nil {
		config.WriteError(w, r, err)
		return
	}

	config.JSON(w, http.StatusOK, resp)
}
