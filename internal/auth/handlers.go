package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	httperrors "github.com/quizforge/packadmin/pkg/http/errors"
)

// HTTPHandlers provides REST endpoints for authentication.
type HTTPHandlers struct {
	authSvc *Service
	logger  zerolog.Logger
}

func NewHTTPHandlers(authSvc *Service, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{authSvc: authSvc, logger: logger}
}

// Login handles POST /v1/auth/login
func (h *HTTPHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}

	token, err := h.authSvc.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			httperrors.RespondUnauthorized(w, httperrors.ErrCodeLoginFailed, err.Error())
			return
		}
		h.logger.Error().Err(err).Msg("token issue failed")
		httperrors.RespondInternalError(w, "Internal server error")
		return
	}
	httperrors.RespondJSON(w, http.StatusOK, token)
}
