package catalog

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/quizforge/packadmin/internal/db"
	"github.com/quizforge/packadmin/internal/pack"
	httperrors "github.com/quizforge/packadmin/pkg/http/errors"
)

// WriteError maps catalog and editing errors onto the HTTP error shape:
// pack rejections are 422 (404 for a missing question), missing rows 404,
// stale versions 409, anything else 500.
func WriteError(w http.ResponseWriter, logger zerolog.Logger, err error) {
	var perr *pack.Error
	switch {
	case errors.As(err, &perr):
		if perr.Kind == pack.KindNotFound {
			httperrors.RespondNotFound(w, string(perr.Kind), perr.Message)
			return
		}
		httperrors.RespondValidationError(w, string(perr.Kind), perr.Message, perr.Field)
	case errors.Is(err, db.ErrNotFound):
		httperrors.RespondNotFound(w, httperrors.ErrCodeNotFound, err.Error())
	case errors.Is(err, db.ErrVersionConflict):
		httperrors.RespondConflict(w, httperrors.ErrCodeVersionConflict, "pack was changed by another save; reopen it and retry")
	default:
		logger.Error().Err(err).Msg("request failed")
		httperrors.RespondInternalError(w, "Internal server error")
	}
}
