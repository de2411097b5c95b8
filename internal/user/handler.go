package user

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/saulo-duarte/exam-prep-lambda/internal/auth"
	"github.com/saulo-duarte/exam-prep-lambda/internal/config"
	"github.com/saulo-duarte/exam-prep-lambda/internal/goal"
)

// Handler serves the caller's own identity. Accounts live with the
// identity provider; this service only sees token claims.
type Handler struct {
	goals goal.Service
}

func NewHandler(goals goal.Service) *Handler {
	return &Handler{goals: goals}
}

type MeResponse struct {
	UserID uuid.UUID          `json:"user_id"`
	Role   string             `json:"role"`
	Goal   *goal.GoalResponse `json:"goal,omitempty"`
}

// Me returns the token identity with the current goal, if any.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	claims, err := auth.GetUserClaimsFromContext(r.Context())
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	resp := MeResponse{UserID: userID, Role: claims.Role}
	current, err := h.goals.Current(userID)
	switch {
	case err == nil:
		resp.Goal = current
	case errors.Is(err, goal.ErrNoGoal):
	default:
		log.WithError(err).Error("Failed to load current goal")
		config.WriteError(w, r, err)
		return
	}

	config.JSON(w, http.StatusOK, resp)
}
