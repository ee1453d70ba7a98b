package catalog

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	httperrors "github.com/quizforge/packadmin/pkg/http/errors"
)

// HTTPHandler exposes categories and persisted packs over REST.
type HTTPHandler struct {
	svc    *Service
	logger zerolog.Logger
}

func NewHTTPHandler(svc *Service, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{
		svc:    svc,
		logger: logger.With().Str("component", "catalog_http").Logger(),
	}
}

type categoryRequest struct {
	Name string `json:"name"`
}

// ListCategories handles GET /v1/categories
func (h *HTTPHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListCategories(r.Context())
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}
	httperrors.RespondJSON(w, http.StatusOK, map[string]any{"categories": list})
}

// CreateCategory handles POST /v1/categories
func (h *HTTPHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	c, err := h.svc.CreateCategory(r.Context(), req.Name)
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}
	httperrors.RespondJSON(w, http.StatusCreated, c)
}

// RenameCategory handles PUT /v1/categories/{id}
func (h *HTTPHandler) RenameCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	c, err := h.svc.RenameCategory(r.Context(), r.PathValue("id"), req.Name)
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}
	httperrors.RespondJSON(w, http.StatusOK, c)
}

// DeleteCategory handles DELETE /v1/categories/{id}
func (h *HTTPHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteCategory(r.Context(), r.PathValue("id")); err != nil {
		WriteError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListPacks handles GET /v1/packs?category_id=
func (h *HTTPHandler) ListPacks(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListPacks(r.Context(), r.URL.Query().Get("category_id"))
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}
	httperrors.RespondJSON(w, http.StatusOK, map[string]any{"packs": list})
}

// GetPack handles GET /v1/packs/{id}
func (h *HTTPHandler) GetPack(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.GetPack(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}
	httperrors.RespondJSON(w, http.StatusOK, rec)
}

// DeletePack handles DELETE /v1/packs/{id}
func (h *HTTPHandler) DeletePack(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeletePack(r.Context(), r.PathValue("id")); err != nil {
		WriteError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
