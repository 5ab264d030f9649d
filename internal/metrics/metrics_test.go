package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/phrazzld/scry-trainer/internal/domain"
	"github.com/phrazzld/scry-trainer/internal/events"
	"github.com/phrazzld/scry-trainer/internal/quota"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleEvent(t *testing.T) {
	t.Parallel()
	m := New()
	ctx := context.Background()

	reviewed := events.NewRecordUpdatedEvent(events.KindReviewed, "w1",
		domain.NewSRSRecord(), domain.NewSRSRecord(), time.Now())
	reviewed.Outcome = domain.ReviewOutcomeNG
	require.NoError(t, m.HandleEvent(ctx, reviewed))
	require.NoError(t, m.HandleEvent(ctx, reviewed))
	require.NoError(t, m.HandleEvent(ctx, events.NewRecordUpdatedEvent(events.KindReset, "",
		domain.SRSRecord{}, domain.NewSRSRecord(), time.Now())))
	require.NoError(t, m.HandleEvent(ctx, events.NewRecordUpdatedEvent(events.KindOverridden, "w1",
		domain.SRSRecord{}, domain.NewSRSRecord(), time.Now())))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ReviewsTotal.WithLabelValues("ng")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ResetsTotal))
}

func TestRecordSelectionAndGauge(t *testing.T) {
	t.Parallel()
	m := New()

	m.RecordSelection(quota.KindFallback)
	m.RecordSelection(quota.KindReview)
	m.RecordSelection(quota.KindReview)
	m.SetDueItems("all", 7)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.SelectionsTotal.WithLabelValues("review")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SelectionsTotal.WithLabelValues("fallback")))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.DueItems.WithLabelValues("all")))
}

func TestHandler(t *testing.T) {
	t.Parallel()
	m := New()
	m.RecordSelection(quota.KindNew)
	m.ObserveRequest("/healthz", "200", 0.01)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `scry_trainer_selections_total{source="new"} 1`)
	assert.Contains(t, string(body), "scry_trainer_http_request_duration_seconds")
}
