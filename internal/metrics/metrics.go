// Package metrics provides Prometheus metrics for the trainer.
package metrics

import (
	"context"
	"net/http"

	"github.com/phrazzld/scry-trainer/internal/events"
	"github.com/phrazzld/scry-trainer/internal/quota"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the trainer.
type Metrics struct {
	SelectionsTotal *prometheus.CounterVec
	ReviewsTotal    *prometheus.CounterVec
	ResetsTotal     prometheus.Counter
	DueItems        *prometheus.GaugeVec
	RequestDuration *prometheus.HistogramVec

	registry *prometheus.Registry
}

// New creates and registers all metrics on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		SelectionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scry_trainer_selections_total",
				Help: "Items served by the session selector, by source.",
			},
			[]string{"source"},
		),
		ReviewsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scry_trainer_reviews_total",
				Help: "Review outcomes applied by the scheduling engine.",
			},
			[]string{"outcome"},
		),
		ResetsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "scry_trainer_record_resets_total",
				Help: "Bulk resets of the SRS record store.",
			},
		),
		DueItems: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "scry_trainer_due_items",
				Help: "Items due for review at the last reminder check, by collection.",
			},
			[]string{"collection"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "scry_trainer_http_request_duration_seconds",
				Help:    "HTTP request duration by route and status.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "status"},
		),
		registry: reg,
	}

	reg.MustRegister(m.SelectionsTotal)
	reg.MustRegister(m.ReviewsTotal)
	reg.MustRegister(m.ResetsTotal)
	reg.MustRegister(m.DueItems)
	reg.MustRegister(m.RequestDuration)

	return m
}

// Handler returns an http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordSelection increments the selection counter.
func (m *Metrics) RecordSelection(source quota.Kind) {
	m.SelectionsTotal.WithLabelValues(string(source)).Inc()
}

// SetDueItems sets the due gauge of collection.
func (m *Metrics) SetDueItems(collection string, count int) {
	m.DueItems.WithLabelValues(collection).Set(float64(count))
}

// ObserveRequest records the duration of one HTTP request.
func (m *Metrics) ObserveRequest(route, status string, seconds float64) {
	m.RequestDuration.WithLabelValues(route, status).Observe(seconds)
}

// HandleEvent implements events.EventHandler.
func (m *Metrics) HandleEvent(_ context.Context, event *events.RecordUpdatedEvent) error {
	switch event.Kind {
	case events.KindReviewed:
		m.ReviewsTotal.WithLabelValues(string(event.Outcome)).Inc()
	case events.KindReset:
		m.ResetsTotal.Inc()
	}
	return nil
}

// NotifyDue sets the due gauge so reminder checks show up in /metrics.
func (m *Metrics) NotifyDue(_ context.Context, collection string, count int) error {
	m.SetDueItems(collection, count)
	return nil
}
