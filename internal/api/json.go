package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/nikbrunner/bmsort/internal/apperr"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// writeError maps err onto a status code and writes it as JSON.
func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", slog.String("error", err.Error()))
	}
	writeJSON(w, status, errResponse{Error: err.Error(), Kind: apperr.Kind(err)})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, apperr.ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrRunActive):
		return http.StatusConflict
	case errors.Is(err, apperr.ErrConfig):
		return http.StatusPreconditionFailed
	case errors.Is(err, apperr.ErrTargetNotFound):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperr.ErrTransport), errors.Is(err, apperr.ErrUpstream), errors.Is(err, apperr.ErrSchema):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
