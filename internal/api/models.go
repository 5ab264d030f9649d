package api

import (
	"github.com/phrazzld/scry-trainer/internal/domain"
	"github.com/phrazzld/scry-trainer/internal/trainer"
)

// ReviewRequest is the body of POST .../session/review.
type ReviewRequest struct {
	Outcome string `json:"outcome" validate:"required,oneof=ok hard ng"`
}

// RestartRequest is the body of POST .../session/restart.
type RestartRequest struct {
	Shuffled bool `json:"shuffled"`
}

// JumpRequest is the body of POST .../session/jump.
type JumpRequest struct {
	Term string `json:"term" validate:"required"`
}

// SeedMistakesRequest is the body of POST /mistakes.
type SeedMistakesRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,required"`
}

// ReviewResponse returns the updated record and the session after advancing.
type ReviewResponse struct {
	Record  domain.SRSRecord `json:"record"`
	Session trainer.State    `json:"session"`
}

// ProgressResponse describes a collection's saved progress.
type ProgressResponse struct {
	Collection string  `json:"collection"`
	LastIndex  int     `json:"last_index"`
	SeenCount  int     `json:"seen_count"`
	Total      int     `json:"total"`
	Percent    float64 `json:"percent"`
}

// MistakesResponse reports the relay size after seeding.
type MistakesResponse struct {
	Pending int `json:"pending"`
}

// OrderRequest is the body of PUT .../session/order.
type OrderRequest struct {
	Order string `json:"order" validate:"required"`
}
