package auth

import (
	"net/http"

	"github.com/saulo-duarte/exam-prep-lambda/internal/config"
)

type Handler struct {
	cookieDomain string
}

func NewHandler() *Handler {
	return &Handler{cookieDomain: config.GetEnv("COOKIE_DOMAIN", "")}
}

// Logout clears the jwt cookie read by AuthMiddleware.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "jwt",
		Value:    "",
		Path:     "/",
		Domain:   h.cookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})

	config.JSON(w, http.StatusOK, map[string]string{
		"message": "logout successful",
	})
}
