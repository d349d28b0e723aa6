package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cardioshield/predictor/internal/repositories"
	"github.com/cardioshield/predictor/internal/services"
	"github.com/cardioshield/predictor/internal/validators"
)

// DefaultHistoryLimit is the page size when limit is not given
const DefaultHistoryLimit = 50

// maxModelFilterLength bounds the model query parameter
const maxModelFilterLength = 64

// HistoryReader lists and summarises stored predictions
type HistoryReader interface {
	List(ctx context.Context, filter repositories.PredictionFilter) (*services.HistoryPage, error)
	Get(ctx context.Context, id string) (*services.HistoryEntry, error)
	Stats(ctx context.Context) (*services.HistoryStats, error)
}

// HistoryHandler serves the admin prediction history
type HistoryHandler struct {
	history HistoryReader
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(history HistoryReader) *HistoryHandler {
	return &HistoryHandler{history: history}
}

// List handles GET /admin/predictions
// @Summary List prediction history
// @Description Newest first, with clinical inputs decrypted
// @Tags admin-history
// @Security AdminAuth
// @Produce json
// @Param limit query int false "Page size (1-500)" default(50)
// @Param offset query int false "Records to skip" default(0)
// @Param since query string false "UTC timestamp, e.g. 2025-11-13T12:00:00Z"
// @Param model query string false "Model name"
// @Success 200 {object} services.HistoryPage
// @Failure 400 {object} ErrorResponse "Invalid query parameter"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /admin/predictions [get]
func (h *HistoryHandler) List(c *gin.Context) {
	filter, err := parseHistoryFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid query parameter",
			Message: err.Error(),
		})
		return
	}

	page, err := h.history.List(c.Request.Context(), filter)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to list predictions",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, page)
}

// Get handles GET /admin/predictions/:id
// @Summary Get one prediction
// @Description A single history record with its clinical input decrypted
// @Tags admin-history
// @Security AdminAuth
// @Produce json
// @Param id path string true "Record UUID"
// @Success 200 {object} services.HistoryEntry
// @Failure 400 {object} ErrorResponse "Invalid record ID"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Record not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /admin/predictions/{id} [get]
func (h *HistoryHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if err := validators.ValidateUUID(id, "id"); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid record ID",
			Message: err.Error(),
		})
		return
	}

	entry, err := h.history.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "Record not found",
				Message: err.Error(),
			})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to load prediction",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, entry)
}

// Stats handles GET /admin/predictions/stats
// @Summary Prediction statistics
// @Description Totals per model and outcome
// @Tags admin-history
// @Security AdminAuth
// @Produce json
// @Success 200 {object} services.HistoryStats
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /admin/predictions/stats [get]
func (h *HistoryHandler) Stats(c *gin.Context) {
	stats, err := h.history.Stats(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to compute statistics",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, stats)
}

func parseHistoryFilter(c *gin.Context) (repositories.PredictionFilter, error) {
	filter := repositories.PredictionFilter{
		Limit:     DefaultHistoryLimit,
		ModelName: c.Query("model"),
	}

	if err := validators.ValidateStringLength(filter.ModelName, "model", 0, maxModelFilterLength); err != nil {
		return filter, err
	}

	if v := c.Query("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return filter, validators.NewValidationError("limit", "must be an integer")
		}
		if err := validators.ValidateIntRange(limit, "limit", 1, repositories.MaxListLimit); err != nil {
			return filter, err
		}
		filter.Limit = limit
	}

	if v := c.Query("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			return filter, validators.NewValidationError("offset", "must be a non-negative integer")
		}
		filter.Offset = offset
	}

	if v := c.Query("since"); v != "" {
		since, err := validators.ParseUTCTimestamp(v)
		if err != nil {
			return filter, validators.NewValidationError("since", err.Error())
		}
		filter.Since = since
	}

	return filter, nil
}
