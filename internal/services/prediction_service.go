package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/cardioshield/predictor/internal/classifier"
	"github.com/cardioshield/predictor/internal/logger"
	"github.com/cardioshield/predictor/internal/metrics"
	"github.com/cardioshield/predictor/internal/models"
	"github.com/cardioshield/predictor/internal/validators"
)

// ErrInvalidInput is matched by every InputError
var ErrInvalidInput = errors.New("invalid input")

// InputError carries one error per invalid field
type InputError struct {
	Errs []error
}

func (e *InputError) Error() string {
	return validators.FormatValidationErrors(e.Errs)
}

// Unwrap makes errors.Is(err, ErrInvalidInput) hold
func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}

// Fields maps field name to message
func (e *InputError) Fields() map[string]string {
	return validators.FieldMessages(e.Errs)
}

// ModelProvider resolves a model by its display name
type ModelProvider interface {
	Get(name string) (classifier.Model, error)
}

// HistoryRecorder stores a completed prediction
type HistoryRecorder interface {
	Record(ctx context.Context, input models.PatientInput, prediction models.Prediction) error
}

// PredictionService runs validated clinical input through a chosen model
type PredictionService struct {
	models    ModelProvider
	validator *validators.PatientInputValidator
	history   HistoryRecorder
	telemetry *metrics.Provider
	log       logger.Logger
}

// PredictionOption customises a PredictionService
type PredictionOption func(*PredictionService)

// WithHistory stores every successful prediction through h
func WithHistory(h HistoryRecorder) PredictionOption {
	return func(s *PredictionService) {
		s.history = h
	}
}

// WithMetrics records counters and spans through p
func WithMetrics(p *metrics.Provider) PredictionOption {
	return func(s *PredictionService) {
		s.telemetry = p
	}
}

// NewPredictionService creates a new prediction service instance
func NewPredictionService(provider ModelProvider, log logger.Logger, opts ...PredictionOption) (*PredictionService, error) {
	if provider == nil {
		return nil, fmt.Errorf("model provider is required")
	}
	if log == nil {
		log = logger.NewNop()
	}

	s := &PredictionService{
		models:    provider,
		validator: &validators.PatientInputValidator{},
		log:       log.With(logger.String("component", "prediction_service")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Predict validates input, runs the named model on the feature vector and
// maps the class to its fixed message. The vector is handed to the model
// unchanged and in model order.
func (s *PredictionService) Predict(ctx context.Context, modelName string, input models.PatientInput) (models.Prediction, error) {
	if s.telemetry != nil {
		var span trace.Span
		ctx, span = s.telemetry.StartPrediction(ctx, modelName)
		defer span.End()
	}

	if errs := s.validator.Validate(input); validators.HasValidationErrors(errs) {
		err := &InputError{Errs: errs}
		s.recordError(ctx, modelName, metrics.ReasonValidation, err)
		return models.Prediction{}, err
	}

	model, err := s.models.Get(modelName)
	if err != nil {
		reason := metrics.ReasonUnavailable
		if errors.Is(err, classifier.ErrUnknownModel) {
			reason = metrics.ReasonUnknownModel
		}
		s.recordError(ctx, modelName, reason, err)
		return models.Prediction{}, err
	}

	start := time.Now()
	class, err := model.Predict(input.FeatureVector())
	elapsed := time.Since(start)
	if err != nil {
		s.recordError(ctx, modelName, metrics.ReasonModel, err)
		s.log.Error("Model evaluation failed", logger.String("model", modelName), logger.Error(err))
		return models.Prediction{}, fmt.Errorf("model %s failed: %w", modelName, err)
	}

	prediction := models.NewPrediction(modelName, class)
	if s.telemetry != nil {
		s.telemetry.RecordPrediction(ctx, prediction, elapsed)
	}

	s.log.Debug("Prediction completed",
		logger.String("model", modelName),
		logger.Int("class", class),
		logger.Duration("elapsed", elapsed),
	)

	if s.history != nil {
		// A history write failure never fails the prediction
		if err := s.history.Record(ctx, input, prediction); err != nil {
			s.log.Warn("Failed to store prediction history", logger.String("model", modelName), logger.Error(err))
		}
	}

	return prediction, nil
}

func (s *PredictionService) recordError(ctx context.Context, modelName, reason string, err error) {
	if s.telemetry != nil {
		s.telemetry.RecordPredictionError(ctx, modelName, reason, err)
	}
}
