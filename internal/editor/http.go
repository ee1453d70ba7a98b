package editor

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/quizforge/packadmin/internal/catalog"
	"github.com/quizforge/packadmin/internal/pack"
	httperrors "github.com/quizforge/packadmin/pkg/http/errors"
)

// HTTPHandler exposes editing sessions over REST.
type HTTPHandler struct {
	registry *Registry
	logger   zerolog.Logger
}

func NewHTTPHandler(registry *Registry, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{
		registry: registry,
		logger:   logger.With().Str("component", "editor_http").Logger(),
	}
}

type openRequest struct {
	PackID string `json:"pack_id"`
}

// Open handles POST /v1/sessions. The body is optional; without a pack_id
// a blank pack is opened.
func (h *HTTPHandler) Open(w http.ResponseWriter, r *http.Request) {
	var req openRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}

	view, err := h.registry.Open(r.Context(), req.PackID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	httperrors.RespondJSON(w, http.StatusCreated, view)
}

// Get handles GET /v1/sessions/{id}
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.registry.Get(r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	httperrors.RespondJSON(w, http.StatusOK, view)
}

// Apply handles POST /v1/sessions/{id}/commands
func (h *HTTPHandler) Apply(w http.ResponseWriter, r *http.Request) {
	var cmd pack.Command
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}

	view, err := h.registry.Apply(r.PathValue("id"), cmd)
	if err != nil {
		h.writeError(w, err)
		return
	}
	httperrors.RespondJSON(w, http.StatusOK, view)
}

// Save handles POST /v1/sessions/{id}/save
func (h *HTTPHandler) Save(w http.ResponseWriter, r *http.Request) {
	rec, err := h.registry.Save(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	httperrors.RespondJSON(w, http.StatusOK, rec)
}

// Discard handles DELETE /v1/sessions/{id}
func (h *HTTPHandler) Discard(w http.ResponseWriter, r *http.Request) {
	if err := h.registry.Discard(r.PathValue("id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrSessionNotFound) {
		httperrors.RespondNotFound(w, httperrors.ErrCodeSessionNotFound, err.Error())
		return
	}
	catalog.WriteError(w, h.logger, err)
}
