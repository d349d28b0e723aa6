package handlers

import (
	"net/http"

	"github.com/cardioshield/predictor/internal/models"
	"github.com/cardioshield/predictor/internal/services"
	"github.com/gin-gonic/gin"
)

// CleanupRunner runs one cleanup pass
type CleanupRunner interface {
	RunCleanupNow() services.CleanupResult
}

// MaintenanceHandler handles admin maintenance requests
type MaintenanceHandler struct {
	cleanup CleanupRunner
	catalog ModelCatalog
}

// NewMaintenanceHandler creates a new maintenance handler
func NewMaintenanceHandler(cleanup CleanupRunner, catalog ModelCatalog) *MaintenanceHandler {
	return &MaintenanceHandler{
		cleanup: cleanup,
		catalog: catalog,
	}
}

// CleanupResponse represents the response from cleanup operation
type CleanupResponse struct {
	Message string `json:"message" example:"Cleanup completed successfully"`
	services.CleanupResult
}

// ReloadResponse represents the response from a model reload
type ReloadResponse struct {
	Message   string               `json:"message" example:"Models reloaded"`
	Available int                  `json:"available" example:"2"`
	Models    []models.ModelStatus `json:"models"`
}

// Cleanup handles POST /admin/maintenance/cleanup
// @Summary Run cleanup
// @Description Remove expired admin tokens and prediction history past its retention period
// @Tags admin-maintenance
// @Security AdminAuth
// @Produce json
// @Success 200 {object} CleanupResponse "Cleanup completed successfully"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /admin/maintenance/cleanup [post]
func (h *MaintenanceHandler) Cleanup(c *gin.Context) {
	result := h.cleanup.RunCleanupNow()

	c.JSON(http.StatusOK, CleanupResponse{
		Message:       "Cleanup completed successfully",
		CleanupResult: result,
	})
}

// ReloadModels handles POST /admin/models/reload
// @Summary Reload models
// @Description Re-read every model artifact from the model directory
// @Tags admin-maintenance
// @Security AdminAuth
// @Produce json
// @Success 200 {object} ReloadResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /admin/models/reload [post]
func (h *MaintenanceHandler) ReloadModels(c *gin.Context) {
	available := h.catalog.Reload()

	c.JSON(http.StatusOK, ReloadResponse{
		Message:   "Models reloaded",
		Available: available,
		Models:    h.catalog.Status(),
	})
}
