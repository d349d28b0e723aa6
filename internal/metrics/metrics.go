// Package metrics provides Prometheus instrumentation and tracing for the
// prediction service.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/cardioshield/predictor/internal/models"
)

const (
	serviceName = "cardioshield"
	namespace   = "cardioshield"
)

// Outcome label values
const (
	OutcomeHeartDisease   = "heart_disease"
	OutcomeNoHeartDisease = "no_heart_disease"
)

// Error reason label values
const (
	ReasonValidation   = "validation"
	ReasonUnavailable  = "unavailable"
	ReasonUnknownModel = "unknown_model"
	ReasonModel        = "model_error"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	PredictionsTotal   *prometheus.CounterVec
	PredictionErrors   *prometheus.CounterVec
	PredictionDuration *prometheus.HistogramVec

	ModelAvailable *prometheus.GaugeVec
	ModelReloads   prometheus.Counter

	HistoryWrites   *prometheus.CounterVec
	HistoryDeleted  prometheus.Counter
	TokensRequested *prometheus.CounterVec
}

// Provider wraps the metric set, its registry and a tracer
type Provider struct {
	Tracer   trace.Tracer
	Metrics  *Metrics
	registry *prometheus.Registry
}

// NewProvider creates a provider with its own registry.
// The registry also carries the Go runtime and process collectors.
func NewProvider() *Provider {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Provider{
		Tracer:   otel.Tracer(serviceName),
		Metrics:  initMetrics(reg),
		registry: reg,
	}
}

// Registry returns the underlying registry
func (p *Provider) Registry() *prometheus.Registry {
	return p.registry
}

// Handler returns the Prometheus HTTP handler for the /metrics endpoint
func (p *Provider) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

func initMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	m := &Metrics{}

	m.PredictionsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "predictions_total",
		Help:      "Total successful predictions by model and outcome",
	}, []string{"model", "outcome"})

	m.PredictionErrors = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "prediction_errors_total",
		Help:      "Total failed prediction requests by model and reason",
	}, []string{"model", "reason"})

	m.PredictionDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "prediction_duration_seconds",
		Help:      "Time spent evaluating a model",
		Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
	}, []string{"model"})

	m.ModelAvailable = factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "model_available",
		Help:      "1 when the model artifact is loaded, 0 otherwise",
	}, []string{"model"})

	m.ModelReloads = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "model_reloads_total",
		Help:      "Total model registry reloads",
	})

	m.HistoryWrites = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "history_writes_total",
		Help:      "Prediction history writes by result",
	}, []string{"result"})

	m.HistoryDeleted = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "history_deleted_total",
		Help:      "Prediction history records removed by retention cleanup",
	})

	m.TokensRequested = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "admin_tokens_requested_total",
		Help:      "Admin token requests by result",
	}, []string{"result"})

	return m
}

// StartPrediction opens a span for one model evaluation
func (p *Provider) StartPrediction(ctx context.Context, model string) (context.Context, trace.Span) {
	return p.Tracer.Start(ctx, "predict", trace.WithAttributes(attribute.String("model", model)))
}

// RecordPrediction records a successful prediction
func (p *Provider) RecordPrediction(ctx context.Context, prediction models.Prediction, duration time.Duration) {
	outcome := OutcomeNoHeartDisease
	if prediction.HasHeartDisease {
		outcome = OutcomeHeartDisease
	}
	p.Metrics.PredictionsTotal.WithLabelValues(prediction.Model, outcome).Inc()
	p.Metrics.PredictionDuration.WithLabelValues(prediction.Model).Observe(duration.Seconds())

	span := trace.SpanFromContext(ctx)
	span.SetAttributes(
		attribute.Int("prediction.class", prediction.Class),
		attribute.String("prediction.outcome", outcome),
	)
}

// RecordPredictionError records a failed prediction request
func (p *Provider) RecordPredictionError(ctx context.Context, model, reason string, err error) {
	p.Metrics.PredictionErrors.WithLabelValues(model, reason).Inc()

	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, reason)
}

// ObserveModelStatus updates the availability gauges after a registry reload.
// It is shaped to be passed as the registry reload hook.
func (p *Provider) ObserveModelStatus(statuses []models.ModelStatus) {
	p.Metrics.ModelReloads.Inc()
	for _, s := range statuses {
		value := 0.0
		if s.Available {
			value = 1
		}
		p.Metrics.ModelAvailable.WithLabelValues(s.Name).Set(value)
	}
}

// RecordHistoryWrite counts a history write attempt
func (p *Provider) RecordHistoryWrite(success bool) {
	result := "ok"
	if !success {
		result = "error"
	}
	p.Metrics.HistoryWrites.WithLabelValues(result).Inc()
}

// AddHistoryDeleted counts records removed by retention cleanup
func (p *Provider) AddHistoryDeleted(n int64) {
	if n > 0 {
		p.Metrics.HistoryDeleted.Add(float64(n))
	}
}

// RecordTokenRequest counts an admin token request by result
func (p *Provider) RecordTokenRequest(result string) {
	p.Metrics.TokensRequested.WithLabelValues(result).Inc()
}
