package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cardioshield/predictor/internal/crypto"
	"github.com/cardioshield/predictor/internal/logger"
	"github.com/cardioshield/predictor/internal/metrics"
	"github.com/cardioshield/predictor/internal/models"
	"github.com/cardioshield/predictor/internal/repositories"
	"github.com/google/uuid"
)

var (
	// ErrUnauthorizedEmail is returned when a token is requested for any address but the admin's
	ErrUnauthorizedEmail = errors.New("unauthorized: email is not authorized for admin access")

	// ErrRateLimited is returned when a token was requested too recently
	ErrRateLimited = errors.New("rate limit exceeded")
)

// TokenMailer delivers an admin token to its owner
type TokenMailer interface {
	SendAdminToken(ctx context.Context, toEmail string, token string, expiresAt time.Time) error
}

// AdminAuthService handles the business logic for admin authentication
type AdminAuthService struct {
	adminTokenRepo *repositories.AdminTokenRepository
	mailer         TokenMailer
	jwtSecret      string
	adminEmail     string
	telemetry      *metrics.Provider
	log            logger.Logger
}

// AdminAuthConfig holds configuration for admin authentication
type AdminAuthConfig struct {
	// JWTSecret is the base64-encoded secret for signing admin JWT tokens
	JWTSecret string
	// AdminEmail is the authorized admin email address
	AdminEmail string
}

// NewAdminAuthService creates a new admin authentication service instance
func NewAdminAuthService(
	adminTokenRepo *repositories.AdminTokenRepository,
	mailer TokenMailer,
	config *AdminAuthConfig,
	telemetry *metrics.Provider,
	log logger.Logger,
) (*AdminAuthService, error) {
	if adminTokenRepo == nil {
		return nil, fmt.Errorf("admin token repository is required")
	}
	if mailer == nil {
		return nil, fmt.Errorf("token mailer is required")
	}
	if config == nil {
		return nil, fmt.Errorf("admin auth config is required")
	}
	if config.JWTSecret == "" {
		return nil, fmt.Errorf("JWT secret is required")
	}
	if config.AdminEmail == "" {
		return nil, fmt.Errorf("admin email is required")
	}
	if log == nil {
		log = logger.NewNop()
	}

	return &AdminAuthService{
		adminTokenRepo: adminTokenRepo,
		mailer:         mailer,
		jwtSecret:      config.JWTSecret,
		adminEmail:     config.AdminEmail,
		telemetry:      telemetry,
		log:            log.With(logger.String("component", "admin_auth")),
	}, nil
}

// TokenRequest contains the data needed to request an admin token
type TokenRequest struct {
	Email string `json:"email" binding:"required,email" example:"admin@example.com"`
}

// TokenResponse contains the response after requesting a token
type TokenResponse struct {
	Message   string `json:"message" example:"Admin token has been sent to your email"`
	ExpiresAt string `json:"expires_at" example:"2025-11-13T12:00:00Z"` // UTC timestamp when token expires (RFC3339 format)
}

// RequestToken handles the complete admin token request flow:
// 1. Validating the email is the authorized admin email
// 2. Checking rate limiting (one request per AdminTokenRequestInterval)
// 3. Generating a new JWT token
// 4. Storing token hash in database, invalidating older tokens
// 5. Sending token via email
func (s *AdminAuthService) RequestToken(ctx context.Context, req *TokenRequest) (*TokenResponse, error) {
	resp, err := s.requestToken(ctx, req)
	if s.telemetry != nil {
		s.telemetry.RecordTokenRequest(tokenRequestResult(err))
	}
	return resp, err
}

func tokenRequestResult(err error) string {
	switch {
	case err == nil:
		return "sent"
	case errors.Is(err, ErrUnauthorizedEmail):
		return "unauthorized"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	default:
		return "error"
	}
}

func (s *AdminAuthService) requestToken(ctx context.Context, req *TokenRequest) (*TokenResponse, error) {
	// Step 1: Validate email is the authorized admin email
	if req.Email != s.adminEmail {
		s.log.Warn("Admin token requested for unauthorized email", logger.String("email", req.Email))
		return nil, ErrUnauthorizedEmail
	}

	// Step 2: Check rate limiting
	lastRequest, err := s.adminTokenRepo.GetLastRequestByEmail(req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check rate limit: %w", err)
	}

	if lastRequest != nil && !models.CanRequestNewToken(lastRequest.RequestedAt) {
		timeRemaining := time.Until(models.NextRequestAllowedAt(lastRequest.RequestedAt))
		hoursRemaining := int(timeRemaining.Hours())
		minutesRemaining := int(timeRemaining.Minutes()) % 60

		return nil, fmt.Errorf(
			"%w: you can request a new token in %dh %dm (last request was at %s)",
			ErrRateLimited,
			hoursRemaining,
			minutesRemaining,
			lastRequest.RequestedAt.UTC().Format("2006-01-02 15:04:05 MST"),
		)
	}

	// Step 3: Generate JWT token
	token, expiresAt, err := crypto.GenerateAdminJWT(req.Email, s.jwtSecret, models.AdminTokenLifetime)
	if err != nil {
		return nil, fmt.Errorf("failed to generate JWT token: %w", err)
	}

	// Step 4: Only the newest token stays valid
	if _, err := s.adminTokenRepo.InvalidateAllForEmail(req.Email); err != nil {
		return nil, fmt.Errorf("failed to invalidate previous tokens: %w", err)
	}

	adminToken := &models.AdminToken{
		ID:          uuid.New().String(),
		Email:       req.Email,
		TokenHash:   crypto.HashToken(token),
		RequestedAt: time.Now().UTC(),
		ExpiresAt:   expiresAt,
	}

	if err := s.adminTokenRepo.Create(adminToken); err != nil {
		return nil, fmt.Errorf("failed to store token in database: %w", err)
	}

	// Step 5: Send token via email
	if err := s.mailer.SendAdminToken(ctx, req.Email, token, expiresAt); err != nil {
		return nil, fmt.Errorf("failed to send email: %w", err)
	}

	s.log.Info("Admin token issued", logger.String("email", req.Email))

	return &TokenResponse{
		Message:   "Admin token has been sent to your email",
		ExpiresAt: expiresAt.Format(time.RFC3339),
	}, nil
}

// ValidateToken validates an admin token.
// This is used by the middleware to verify incoming requests.
func (s *AdminAuthService) ValidateToken(tokenString string) (*crypto.AdminClaims, error) {
	// Step 1: Verify JWT signature and expiration
	claims, err := crypto.VerifyAdminJWT(tokenString, s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	// Step 2: Check the token is known and has not been superseded
	tokenHash := crypto.HashToken(tokenString)
	if _, err := s.adminTokenRepo.ValidateToken(tokenHash); err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}

	// Step 3: Track last use
	if err := s.adminTokenRepo.MarkAsUsed(tokenHash); err != nil {
		s.log.Warn("Failed to record admin token use", logger.Error(err))
	}

	return claims, nil
}
