package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidReviewOutcome is returned when a review outcome is not one of
	// ok, hard or ng.
	ErrInvalidReviewOutcome = errors.New("invalid review outcome")

	// ErrEmptyItemID is returned when an item has no stable identity.
	ErrEmptyItemID = errors.New("item ID cannot be empty")
)
