package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cardioshield/predictor/internal/models"
	"github.com/cardioshield/predictor/internal/services"
)

// PredictionHandler serves the JSON prediction API
type PredictionHandler struct {
	predictor Predictor
	catalog   ModelCatalog
}

// NewPredictionHandler creates a new prediction handler
func NewPredictionHandler(predictor Predictor, catalog ModelCatalog) *PredictionHandler {
	return &PredictionHandler{
		predictor: predictor,
		catalog:   catalog,
	}
}

// PredictRequest is the body of POST /api/v1/predict.
// Fields missing from input take the form defaults.
type PredictRequest struct {
	Model string              `json:"model" binding:"required" example:"Random Forest"`
	Input models.PatientInput `json:"input"`
}

// PredictResponse is a prediction plus the fixed disclaimer
type PredictResponse struct {
	models.Prediction
	Disclaimer string `json:"disclaimer" example:"Disclaimer: This app is for educational purposes only and should not be used as a substitute for professional medical advice."`
}

// Predict handles POST /api/v1/predict
// @Summary Predict heart disease
// @Description Run one model on the eleven clinical values. Class 1 means heart disease.
// @Tags predictions
// @Accept json
// @Produce json
// @Param request body PredictRequest true "Model name and clinical input"
// @Success 200 {object} PredictResponse
// @Failure 400 {object} ValidationErrorResponse "Invalid request or input out of range"
// @Failure 404 {object} ErrorResponse "Unknown model"
// @Failure 503 {object} ErrorResponse "Model not available"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /api/v1/predict [post]
func (h *PredictionHandler) Predict(c *gin.Context) {
	req := PredictRequest{Input: models.DefaultPatientInput()}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request format",
			Message: err.Error(),
		})
		return
	}

	prediction, err := h.predictor.Predict(c.Request.Context(), req.Model, req.Input)
	if err != nil {
		status, title := predictionErrorStatus(err)

		var inputErr *services.InputError
		if errors.As(err, &inputErr) {
			c.JSON(status, ValidationErrorResponse{
				Error:   title,
				Message: err.Error(),
				Fields:  inputErr.Fields(),
			})
			return
		}

		if status == http.StatusInternalServerError {
			_ = c.Error(err)
		}
		c.JSON(status, ErrorResponse{
			Error:   title,
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, PredictResponse{
		Prediction: prediction,
		Disclaimer: models.Disclaimer,
	})
}

// ListModels handles GET /api/v1/models
// @Summary List models
// @Description Models in display order with their availability
// @Tags predictions
// @Produce json
// @Success 200 {array} models.ModelStatus
// @Router /api/v1/models [get]
func (h *PredictionHandler) ListModels(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.Status())
}
