package handlers

import (
	"errors"
	"net/http"

	"github.com/cardioshield/predictor/internal/classifier"
	"github.com/cardioshield/predictor/internal/services"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error" example:"Model unavailable"`
	Message string `json:"message" example:"model is not available: SVM"`
}

// ValidationErrorResponse adds per-field messages to an error response
type ValidationErrorResponse struct {
	Error   string            `json:"error" example:"Validation failed"`
	Message string            `json:"message" example:"age: must be between 1 and 100 (got: 0)"`
	Fields  map[string]string `json:"fields"`
}

// predictionErrorStatus maps prediction errors to HTTP status codes
func predictionErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return http.StatusBadRequest, "Validation failed"
	case errors.Is(err, classifier.ErrUnknownModel):
		return http.StatusNotFound, "Unknown model"
	case errors.Is(err, classifier.ErrModelUnavailable):
		return http.StatusServiceUnavailable, "Model unavailable"
	default:
		return http.StatusInternalServerError, "Prediction failed"
	}
}

// adminAuthErrorStatus maps admin auth errors to HTTP status codes
func adminAuthErrorStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrUnauthorizedEmail):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
