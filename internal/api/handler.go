package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/scry-trainer/internal/api/shared"
	"github.com/phrazzld/scry-trainer/internal/catalog"
	"github.com/phrazzld/scry-trainer/internal/domain"
	"github.com/phrazzld/scry-trainer/internal/mistakes"
	"github.com/phrazzld/scry-trainer/internal/plan"
	"github.com/phrazzld/scry-trainer/internal/platform/logger"
	"github.com/phrazzld/scry-trainer/internal/progress"
	"github.com/phrazzld/scry-trainer/internal/service/scheduling"
	"github.com/phrazzld/scry-trainer/internal/trainer"
)

// PackLister lists the available word packs.
type PackLister interface {
	Packs() ([]string, error)
}

// HandlerDeps are the collaborators of a TrainerHandler.
type HandlerDeps struct {
	Sessions *Registry
	Engine   *scheduling.Engine
	Progress *progress.Tracker
	Catalog  PackLister
	Relay    *mistakes.Buffer
	Steps    plan.Steps
	Now      func() time.Time
	Logger   *slog.Logger
}

// TrainerHandler serves the trainer's HTTP endpoints.
type TrainerHandler struct {
	sessions *Registry
	engine   *scheduling.Engine
	progress *progress.Tracker
	catalog  PackLister
	relay    *mistakes.Buffer
	steps    plan.Steps
	now      func() time.Time
	logger   *slog.Logger
}

// NewTrainerHandler creates a TrainerHandler.
func NewTrainerHandler(deps HandlerDeps) *TrainerHandler {
	if deps.Sessions == nil {
		panic("sessions cannot be nil for TrainerHandler")
	}
	if deps.Engine == nil {
		panic("engine cannot be nil for TrainerHandler")
	}
	if deps.Progress == nil {
		panic("progress cannot be nil for TrainerHandler")
	}
	if deps.Logger == nil {
		panic("logger cannot be nil for TrainerHandler")
	}
	if deps.Relay == nil {
		deps.Relay = mistakes.NewBuffer()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &TrainerHandler{
		sessions: deps.Sessions,
		engine:   deps.Engine,
		progress: deps.Progress,
		catalog:  deps.Catalog,
		relay:    deps.Relay,
		steps:    deps.Steps,
		now:      deps.Now,
		logger:   deps.Logger.With(slog.String("component", "trainer_handler")),
	}
}

// ListCollections handles GET /collections.
func (h *TrainerHandler) ListCollections(w http.ResponseWriter, r *http.Request) {
	names := []string{}
	if h.catalog != nil {
		packs, err := h.catalog.Packs()
		if err != nil {
			HandleAPIError(w, r, err, "Failed to list collections")
			return
		}
		names = append(names, packs...)
	}
	names = append(names, catalog.AllCollections)
	shared.RespondWithJSON(w, r, http.StatusOK, map[string][]string{"collections": names})
}

// GetSession handles GET /collections/{collection}/session.
func (h *TrainerHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(_ context.Context, s *trainer.Session) (any, error) {
		return s.State(), nil
	})
}

// Advance handles POST /collections/{collection}/session/advance.
func (h *TrainerHandler) Advance(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(ctx context.Context, s *trainer.Session) (any, error) {
		s.Advance(ctx)
		return s.State(), nil
	})
}

// Reveal handles POST /collections/{collection}/session/reveal.
func (h *TrainerHandler) Reveal(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(_ context.Context, s *trainer.Session) (any, error) {
		if _, ok := s.Current(); !ok {
			return nil, trainer.ErrNoCurrentItem
		}
		s.Reveal()
		return s.State(), nil
	})
}

// Review handles POST /collections/{collection}/session/review.
func (h *TrainerHandler) Review(w http.ResponseWriter, r *http.Request) {
	var req ReviewRequest
	if !decodeAndValidate(w, r, &req, h.logger) {
		return
	}
	outcome, err := domain.ParseReviewOutcome(req.Outcome)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	h.withSession(w, r, func(ctx context.Context, s *trainer.Session) (any, error) {
		rec, err := s.Review(ctx, outcome)
		if err != nil {
			return nil, err
		}
		return ReviewResponse{Record: rec, Session: s.State()}, nil
	})
}

// Restart handles POST /collections/{collection}/session/restart.
func (h *TrainerHandler) Restart(w http.ResponseWriter, r *http.Request) {
	var req RestartRequest
	if !decodeAndValidate(w, r, &req, h.logger) {
		return
	}
	h.withSession(w, r, func(ctx context.Context, s *trainer.Session) (any, error) {
		s.Restart(ctx, req.Shuffled)
		return s.State(), nil
	})
}

// Jump handles POST /collections/{collection}/session/jump.
func (h *TrainerHandler) Jump(w http.ResponseWriter, r *http.Request) {
	var req JumpRequest
	if !decodeAndValidate(w, r, &req, h.logger) {
		return
	}
	h.withSession(w, r, func(ctx context.Context, s *trainer.Session) (any, error) {
		if !s.JumpToTerm(ctx, req.Term) {
			return nil, ErrTermNotFound
		}
		return s.State(), nil
	})
}

// PickRandom handles POST /collections/{collection}/session/random.
func (h *TrainerHandler) PickRandom(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(ctx context.Context, s *trainer.Session) (any, error) {
		s.PickRandom(ctx)
		return s.State(), nil
	})
}

// SetOrder handles PUT /collections/{collection}/session/order.
func (h *TrainerHandler) SetOrder(w http.ResponseWriter, r *http.Request) {
	var req OrderRequest
	if !decodeAndValidate(w, r, &req, h.logger) {
		return
	}
	order, err := trainer.ParseOrder(req.Order)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid order")
		return
	}
	h.withSession(w, r, func(_ context.Context, s *trainer.Session) (any, error) {
		s.UpdateOrder(order)
		return s.State(), nil
	})
}

// GetPlan handles GET /collections/{collection}/plan.
func (h *TrainerHandler) GetPlan(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(_ context.Context, s *trainer.Session) (any, error) {
		return plan.BuildForWords(h.engine, s.Items(), h.steps, h.now()), nil
	})
}

// GetProgress handles GET /collections/{collection}/progress.
func (h *TrainerHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(_ context.Context, s *trainer.Session) (any, error) {
		collection := s.Collection()
		total := len(s.Items())
		p := h.progress.Progress(collection)
		return ProgressResponse{
			Collection: collection,
			LastIndex:  p.LastIndex,
			SeenCount:  len(p.SeenIDs),
			Total:      total,
			Percent:    h.progress.PercentComplete(collection, total),
		}, nil
	})
}

// ResetProgress handles DELETE /collections/{collection}/progress. The
// collection's session is dropped so the next request starts from the top.
func (h *TrainerHandler) ResetProgress(w http.ResponseWriter, r *http.Request) {
	collection, ok := collectionParam(w, r)
	if !ok {
		return
	}
	if err := h.progress.Reset(r.Context(), collection); err != nil {
		HandleAPIError(w, r, err, "Failed to reset progress")
		return
	}
	h.sessions.Drop(collection)
	w.WriteHeader(http.StatusNoContent)
}

// GetItemStatus handles GET /items/{id}/status.
func (h *TrainerHandler) GetItemStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		HandleAPIError(w, r, domain.ErrEmptyItemID, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, h.engine.Status(id, h.now()))
}

// ResetRecords handles DELETE /records.
func (h *TrainerHandler) ResetRecords(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	if err := h.engine.Reset(r.Context()); err != nil {
		HandleAPIError(w, r, err, "Failed to reset records")
		return
	}
	log.Info("srs records reset")
	w.WriteHeader(http.StatusNoContent)
}

// SeedMistakes handles POST /mistakes. Each ID waits in the relay until a
// session whose pool contains it starts or restarts.
func (h *TrainerHandler) SeedMistakes(w http.ResponseWriter, r *http.Request) {
	var req SeedMistakesRequest
	if !decodeAndValidate(w, r, &req, h.logger) {
		return
	}
	h.relay.Seed(req.IDs...)
	shared.RespondWithJSON(w, r, http.StatusAccepted, MistakesResponse{Pending: h.relay.Len()})
}

// withSession runs fn against the collection's session and writes its result.
func (h *TrainerHandler) withSession(
	w http.ResponseWriter,
	r *http.Request,
	fn func(ctx context.Context, s *trainer.Session) (any, error),
) {
	collection, ok := collectionParam(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	log := logger.FromContextOrDefault(ctx, h.logger)

	var result any
	err := h.sessions.With(ctx, collection, func(s *trainer.Session) error {
		var err error
		result, err = fn(ctx, s)
		return err
	})
	if err != nil {
		if !errors.Is(err, trainer.ErrNoCurrentItem) {
			log.Debug("session request failed",
				slog.String("collection", collection),
				slog.String("error", err.Error()))
		}
		HandleAPIError(w, r, err, "Failed to process session request")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, result)
}
