package paper

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/saulo-duarte/exam-prep-lambda/internal/auth"
	"github.com/saulo-duarte/exam-prep-lambda/internal/config"
)

type Handler struct {
	service  Service
	composer *Composer
}

func NewHandler(service Service, composer *Composer) *Handler {
	return &Handler{service: service, composer: composer}
}

// ListPublished shows students only the exams they can start.
func (h *Handler) ListPublished(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	query, ok := parseExamListQuery(w, r)
	if !ok {
		return
	}
	query.Status = ExamStatusPublished
	query.Viewer = userID

	resp, err := h.service.ListExams(r.Context(), query)
	if err != nil {
		config.WriteError(w, r, err)
		return
	}
	config.JSON(w, http.StatusOK, resp)
}

func (h *Handler) AdminList(w http.ResponseWriter, r *http.Request) {
	query, ok := parseExamListQuery(w, r)
	if !ok {
		return
	}
	query.Status = ExamStatus(strings.ToUpper(r.URL.Query().Get("status")))

	resp, err := h.service.ListExams(r.Context(), query)
	if err != nil {
		config.WriteError(w, r, err)
		return
	}
	config.JSON(w, http.StatusOK, resp)
}

func (h *Handler) Publish(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	resp, err := h.service.Publish(r.Context(), id)
	if err != nil {
		config.WriteError(w, r, err)
		return
	}
	config.JSON(w, http.StatusOK, resp)
}

func (h *Handler) Archive(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	resp, err := h.service.Archive(r.Context(), id)
	if err != nil {
		config.WriteError(w, r, err)
		return
	}
	config.JSON(w, http.StatusOK, resp)
}

func (h *Handler) RegenerateDiagnostic(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	adminID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		log.Warn("User not authenticated")
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var dto DiagnosticRegenerateRequest
	if err := config.DecodeJSON(r, &dto); err != nil {
		config.WriteError(w, r, err)
		return
	}
	if err := config.Validate(dto); err != nil {
		config.WriteError(w, r, err)
		return
	}

	c, err := h.composer.ComposeDiagnostic(r.Context(), DiagnosticRequest{
		Subject:   dto.Subject,
		PerModule: dto.PerModule,
		CreatedBy: adminID,
	})
	if err != nil {
		config.WriteError(w, r, err)
		return
	}
	config.JSON(w, http.StatusCreated, ToCompositionResponse(c))
}

func (h *Handler) GeneratePractice(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	userID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		log.Warn("User not authenticated")
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var dto PracticeGenerateRequest
	if err := config.DecodeJSON(r, &dto); err != nil {
		config.WriteError(w, r, err)
		return
	}
	if err := config.Validate(dto); err != nil {
		config.WriteError(w, r, err)
		return
	}

	c, err := h.composer.ComposePractice(r.Context(), PracticeRequest{
		UserID:      userID,
		KnowledgeID: dto.KnowledgeID,
		Count:       dto.Count,
		Mode:        PracticeMode(strings.ToUpper(string(dto.Mode))),
	})
	if err != nil {
		config.WriteError(w, r, err)
		return
	}
	config.JSON(w, http.StatusCreated, ToCompositionResponse(c))
}

func (h *Handler) GenerateMock(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	userID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		log.Warn("User not authenticated")
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var dto MockGenerateRequest
	if err := config.DecodeJSON(r, &dto); err != nil {
		config.WriteError(w, r, err)
		return
	}
	if err := config.Validate(dto); err != nil {
		config.WriteError(w, r, err)
		return
	}

	c, err := h.composer.ComposeMock(r.Context(), MockRequest{
		Subject:   dto.Subject,
		Total:     dto.Total,
		Ratio:     dto.Ratio,
		CreatedBy: userID,
	})
	if err != nil {
		config.WriteError(w, r, err)
		return
	}
	config.JSON(w, http.StatusCreated, ToCompositionResponse(c))
}

func (h *Handler) GenerateReview(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	userID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		log.Warn("User not authenticated")
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var dto ReviewGenerateRequest
	if err := config.DecodeJSON(r, &dto); err != nil {
		config.WriteError(w, r, err)
		return
	}
	if err := config.Validate(dto); err != nil {
		config.WriteError(w, r, err)
		return
	}

	c, err := h.composer.ComposeReview(r.Context(), ReviewRequest{
		UserID:      userID,
		Count:       dto.Count,
		QuestionIDs: dto.QuestionIDs,
	})
	if err != nil {
		config.WriteError(w, r, err)
		return
	}
	config.JSON(w, http.StatusCreated, ToCompositionResponse(c))
}

func parseExamListQuery(w http.ResponseWriter, r *http.Request) (ExamListQuery, bool) {
	values := r.URL.Query()
	query := ExamListQuery{Category: Category(strings.ToUpper(values.Get("category")))}

	var err error
	if v := values.Get("page"); v != "" {
		if query.Page, err = strconv.Atoi(v); err != nil {
			http.Error(w, "invalid page", http.StatusBadRequest)
			return query, false
		}
	}
	if v := values.Get("size"); v != "" {
		if query.Size, err = strconv.Atoi(v); err != nil {
			http.Error(w, "invalid size", http.StatusBadRequest)
			return query, false
		}
	}
	return query, true
}
