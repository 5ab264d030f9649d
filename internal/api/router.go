package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/scry-trainer/internal/api/middleware"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	// Observer receives request durations. Optional.
	Observer middleware.RequestObserver
	// Metrics serves GET /metrics. Optional.
	Metrics http.Handler
	Logger  *slog.Logger
}

// NewRouter wires h into a chi router with the standard middleware stack.
func NewRouter(h *TrainerHandler, opts RouterOptions) http.Handler {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.NewTraceMiddleware(log))
	if opts.Observer != nil {
		r.Use(middleware.NewMetricsMiddleware(opts.Observer))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			log.Error("failed to write health check response", "error", err)
		}
	})
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	r.Get("/collections", h.ListCollections)
	r.Route("/collections/{collection}", func(r chi.Router) {
		r.Get("/session", h.GetSession)
		r.Post("/session/advance", h.Advance)
		r.Post("/session/reveal", h.Reveal)
		r.Post("/session/review", h.Review)
		r.Post("/session/restart", h.Restart)
		r.Post("/session/jump", h.Jump)
		r.Post("/session/random", h.PickRandom)
		r.Put("/session/order", h.SetOrder)
		r.Get("/plan", h.GetPlan)
		r.Get("/progress", h.GetProgress)
		r.Delete("/progress", h.ResetProgress)
	})
	r.Get("/items/{id}/status", h.GetItemStatus)
	r.Delete("/records", h.ResetRecords)
	r.Post("/mistakes", h.SeedMistakes)

	return r
}
