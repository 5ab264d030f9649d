package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/phrazzld/scry-trainer/internal/api/shared"
	"github.com/phrazzld/scry-trainer/internal/catalog"
	"github.com/phrazzld/scry-trainer/internal/domain"
	"github.com/phrazzld/scry-trainer/internal/domain/srs"
	"github.com/phrazzld/scry-trainer/internal/store"
	"github.com/phrazzld/scry-trainer/internal/trainer"
)

// ErrTermNotFound is returned when a jump target is not in the session pool.
var ErrTermNotFound = errors.New("term not found in collection")

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// leaking internal error types to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, catalog.ErrPackNotFound),
		errors.Is(err, ErrTermNotFound):
		return http.StatusNotFound

	case errors.Is(err, trainer.ErrNoCurrentItem):
		return http.StatusConflict

	case errors.Is(err, catalog.ErrInvalidPackName),
		errors.Is(err, srs.ErrInvalidOutcome),
		errors.Is(err, domain.ErrInvalidReviewOutcome),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrEmptyItemID),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a user-facing message for err.
func GetSafeErrorMessage(err error) string {
	switch {
	case err == nil:
		return "An unexpected error occurred"
	case errors.Is(err, catalog.ErrPackNotFound):
		return "Collection not found"
	case errors.Is(err, ErrTermNotFound):
		return "Term not found"
	case errors.Is(err, trainer.ErrNoCurrentItem):
		return "Session has no current item"
	case errors.Is(err, catalog.ErrInvalidPackName):
		return "Invalid collection name"
	case errors.Is(err, srs.ErrInvalidOutcome),
		errors.Is(err, domain.ErrInvalidReviewOutcome):
		return "Invalid outcome"
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrEmptyItemID),
		errors.Is(err, store.ErrInvalidEntity):
		return "Invalid request"
	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError maps err to a status and a safe message and writes it.
// A non-empty fallback replaces the generic message for server errors.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallback != "" {
		message = fallback
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}

// SanitizeValidationError turns a validator error into a short message
// naming the field and the failed rule.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	if strings.Contains(errMsg, "Field validation") {
		// "Key: 'ReviewRequest.Outcome' Error:Field validation for 'Outcome' failed on the 'oneof' tag"
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}
				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "oneof":
		return "invalid value"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "dive":
		return "invalid element"
	default:
		return "validation failed"
	}
}
