package config

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/saulo-duarte/exam-prep-lambda/internal/apperr"
)

var ErrInvalidBody = apperr.Validation("INVALID_BODY", "invalid request body")

// DecodeJSON reads the request body into dst. An empty body leaves dst
// untouched so that every field keeps its default.
func DecodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return ErrInvalidBody
	}
	return nil
}

func JSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

// WriteError maps apperr kinds to their status and hides everything else
// behind a generic 500.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	log := WithContext(r.Context())
	status := apperr.HTTPStatus(err)

	if e, ok := apperr.As(err); ok {
		log.WithError(err).Warn("Request rejected")
		JSON(w, status, e)
		return
	}

	log.WithError(err).Error("Request failed")
	JSON(w, status, map[string]string{
		"kind":    "INTERNAL",
		"message": "internal server error",
	})
}
