package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/scry-trainer/internal/api/shared"
	"github.com/phrazzld/scry-trainer/internal/catalog"
	"github.com/phrazzld/scry-trainer/internal/platform/logger"
)

// collectionParam extracts the {collection} path parameter in canonical form.
// It writes a 400 and returns false when the parameter is empty.
func collectionParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	collection := chi.URLParam(r, "collection")
	if collection == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, GetSafeErrorMessage(catalog.ErrInvalidPackName))
		return "", false
	}
	return catalog.CanonicalName(collection), true
}

// decodeAndValidate reads a JSON body into v and validates it. It writes a
// 400 and returns false on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v any, log *slog.Logger) bool {
	if log == nil {
		log = logger.FromContextOrDefault(r.Context(), slog.Default())
	}
	if err := shared.DecodeJSON(r, v); err != nil {
		log.Debug("invalid request body", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return false
	}
	if err := shared.ValidateRequest(v); err != nil {
		log.Debug("request validation failed", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return false
	}
	return true
}
