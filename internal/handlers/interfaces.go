package handlers

import (
	"context"

	"github.com/cardioshield/predictor/internal/models"
)

// Predictor runs one prediction
type Predictor interface {
	Predict(ctx context.Context, modelName string, input models.PatientInput) (models.Prediction, error)
}

// ModelCatalog reports and reloads the model registry
type ModelCatalog interface {
	Status() []models.ModelStatus
	Availability() map[string]bool
	Reload() int
}
