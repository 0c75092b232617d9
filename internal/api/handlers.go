package api

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/nikbrunner/bmsort/internal/ai"
	"github.com/nikbrunner/bmsort/internal/apperr"
	"github.com/nikbrunner/bmsort/internal/organizer"
)

const maxBodyBytes = 1 << 20

// Handler holds the API route handlers.
type Handler struct {
	org    *organizer.Organizer
	logger *slog.Logger
}

// NewHandler creates a Handler serving org.
func NewHandler(org *organizer.Organizer, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{org: org, logger: logger}
}

// Status handles GET /api/status.
func (h *Handler) Status(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.org.Controller().Status())
}

// Organize handles POST /api/organize. It blocks until the run ends. A
// client that disconnects stops the run.
func (h *Handler) Organize(w http.ResponseWriter, r *http.Request) {
	sum, err := h.org.OrganizeAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

type stopResponse struct {
	Stopped bool `json:"stopped"`
}

// Stop handles POST /api/organize/stop.
func (h *Handler) Stop(w http.ResponseWriter, _ *http.Request) {
	stopped := h.org.Controller().RequestStop()
	h.logger.Info("api: stop requested", slog.Bool("accepted", stopped))
	writeJSON(w, http.StatusOK, stopResponse{Stopped: stopped})
}

type addRequest struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// AddBookmark handles POST /api/bookmarks.
func (h *Handler) AddBookmark(w http.ResponseWriter, r *http.Request) {
	var req addRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	res, err := h.org.AddBookmark(r.Context(), ai.Page{Title: req.Title, URL: req.URL, Description: req.Description})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// CheckBookmark handles GET /api/bookmarks/check?url=.
func (h *Handler) CheckBookmark(w http.ResponseWriter, r *http.Request) {
	res, err := h.org.Check(r.Context(), r.URL.Query().Get("url"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func decodeBody(r *http.Request, v any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: read body: %v", apperr.ErrInvalid, err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: invalid JSON: %v", apperr.ErrInvalid, err)
	}
	return nil
}
