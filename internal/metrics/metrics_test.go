package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardioshield/predictor/internal/models"
)

func TestNewProvider_IndependentRegistries(t *testing.T) {
	// Each provider owns its registry, so two of them never collide
	a := NewProvider()
	b := NewProvider()

	require.NotNil(t, a.Tracer)
	require.NotNil(t, a.Metrics)
	assert.NotSame(t, a.Registry(), b.Registry())
}

func TestRecordPrediction(t *testing.T) {
	p := NewProvider()
	ctx, span := p.StartPrediction(context.Background(), "SVM")
	defer span.End()

	p.RecordPrediction(ctx, models.NewPrediction("SVM", 1), time.Millisecond)
	p.RecordPrediction(ctx, models.NewPrediction("SVM", 0), time.Millisecond)
	p.RecordPrediction(ctx, models.NewPrediction("SVM", 1), time.Millisecond)

	assert.InDelta(t, 2, testutil.ToFloat64(p.Metrics.PredictionsTotal.WithLabelValues("SVM", OutcomeHeartDisease)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(p.Metrics.PredictionsTotal.WithLabelValues("SVM", OutcomeNoHeartDisease)), 0)
}

func TestRecordPredictionError(t *testing.T) {
	p := NewProvider()

	p.RecordPredictionError(context.Background(), "Random Forest", ReasonUnavailable, errors.New("missing"))

	assert.InDelta(t, 1, testutil.ToFloat64(p.Metrics.PredictionErrors.WithLabelValues("Random Forest", ReasonUnavailable)), 0)
}

func TestObserveModelStatus(t *testing.T) {
	p := NewProvider()

	p.ObserveModelStatus([]models.ModelStatus{
		{Name: "Random Forest", Available: true},
		{Name: "SVM", Available: false},
	})

	assert.InDelta(t, 1, testutil.ToFloat64(p.Metrics.ModelAvailable.WithLabelValues("Random Forest")), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(p.Metrics.ModelAvailable.WithLabelValues("SVM")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(p.Metrics.ModelReloads), 0)
}

func TestHistoryAndTokenCounters(t *testing.T) {
	p := NewProvider()

	p.RecordHistoryWrite(true)
	p.RecordHistoryWrite(false)
	p.AddHistoryDeleted(3)
	p.AddHistoryDeleted(0)
	p.RecordTokenRequest("sent")

	assert.InDelta(t, 1, testutil.ToFloat64(p.Metrics.HistoryWrites.WithLabelValues("ok")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(p.Metrics.HistoryWrites.WithLabelValues("error")), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(p.Metrics.HistoryDeleted), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(p.Metrics.TokensRequested.WithLabelValues("sent")), 0)
}

func TestHandler_ExposesMetrics(t *testing.T) {
	p := NewProvider()
	p.RecordPrediction(context.Background(), models.NewPrediction("Random Forest", 0), time.Millisecond)

	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "cardioshield_predictions_total"))
	assert.True(t, strings.Contains(body, "go_goroutines"))
}
