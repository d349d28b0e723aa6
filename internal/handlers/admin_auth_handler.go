package handlers

import (
	"context"
	"net/http"

	"github.com/cardioshield/predictor/internal/services"
	"github.com/gin-gonic/gin"
)

// TokenRequester issues admin tokens
type TokenRequester interface {
	RequestToken(ctx context.Context, req *services.TokenRequest) (*services.TokenResponse, error)
}

// AdminAuthHandler handles HTTP requests for admin authentication
type AdminAuthHandler struct {
	adminAuthService TokenRequester
}

// NewAdminAuthHandler creates a new admin authentication handler
func NewAdminAuthHandler(adminAuthService TokenRequester) *AdminAuthHandler {
	return &AdminAuthHandler{
		adminAuthService: adminAuthService,
	}
}

// RequestToken handles POST /admin/auth/request
// @Summary Request admin authentication token
// @Description Request a JWT token for admin access. Token is sent via email and is valid for 24 hours. Rate limited to 1 request per 24 hours.
// @Tags admin-auth
// @Accept json
// @Produce json
// @Param request body services.TokenRequest true "Email address"
// @Success 200 {object} services.TokenResponse "Token request successful, email sent"
// @Failure 400 {object} ErrorResponse "Invalid request format"
// @Failure 401 {object} ErrorResponse "Unauthorized email"
// @Failure 429 {object} ErrorResponse "Rate limit exceeded"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /admin/auth/request [post]
func (h *AdminAuthHandler) RequestToken(c *gin.Context) {
	var req services.TokenRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request format",
			Message: err.Error(),
		})
		return
	}

	response, err := h.adminAuthService.RequestToken(c.Request.Context(), &req)
	if err != nil {
		statusCode := adminAuthErrorStatus(err)
		if statusCode == http.StatusInternalServerError {
			_ = c.Error(err)
		}
		c.JSON(statusCode, ErrorResponse{
			Error:   "Token request failed",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response)
}
