package handlers

import (
	"net/http"
	"time"

	"github.com/cardioshield/predictor/internal/models"
	"github.com/gin-gonic/gin"
)

// ServiceName is reported by the health endpoint
const ServiceName = "cardioshield-predictor"

// HealthCheck reports whether one dependency answers
type HealthCheck struct {
	Name  string
	Check func() error
}

// NewPingHandler returns the /ping handler. The service is "ok" while at
// least one model is loaded and every dependency answers, "degraded"
// otherwise; both answer 200.
// @Summary Health check
// @Description Service liveness with per-model availability and dependency status
// @Tags health
// @Produce json
// @Success 200 {object} models.HealthResponse
// @Router /ping [get]
func NewPingHandler(catalog ModelCatalog, checks ...HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		availability := catalog.Availability()

		status := "degraded"
		for _, ok := range availability {
			if ok {
				status = "ok"
				break
			}
		}

		var deps map[string]models.DependencyStatus
		if len(checks) > 0 {
			deps = make(map[string]models.DependencyStatus, len(checks))
			for _, check := range checks {
				if err := check.Check(); err != nil {
					deps[check.Name] = models.DependencyStatus{Status: "down", Error: err.Error()}
					status = "degraded"
					continue
				}
				deps[check.Name] = models.DependencyStatus{Status: "ok"}
			}
		}

		c.JSON(http.StatusOK, models.HealthResponse{
			Status:       status,
			Timestamp:    time.Now().UTC(),
			Service:      ServiceName,
			Models:       availability,
			Dependencies: deps,
		})
	}
}
