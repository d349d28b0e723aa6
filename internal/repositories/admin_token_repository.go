package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/cardioshield/predictor/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrTokenNotFound is returned when no token matches a hash
	ErrTokenNotFound = errors.New("token not found")

	// ErrTokenExpired is returned when a token exists but has expired
	ErrTokenExpired = errors.New("token has expired")
)

// AdminTokenRepository handles database operations for admin tokens
type AdminTokenRepository struct {
	db *gorm.DB
}

// NewAdminTokenRepository creates a new admin token repository instance
func NewAdminTokenRepository(db *gorm.DB) *AdminTokenRepository {
	return &AdminTokenRepository{db: db}
}

// Create inserts a new admin token into the database
func (r *AdminTokenRepository) Create(token *models.AdminToken) error {
	if token == nil {
		return fmt.Errorf("token cannot be nil")
	}

	if token.ID == "" {
		token.ID = uuid.New().String()
	}

	// Ensure timestamps are set in UTC
	now := time.Now().UTC()
	token.CreatedAt = now
	token.UpdatedAt = now

	if err := r.db.Create(token).Error; err != nil {
		return fmt.Errorf("failed to create admin token: %w", err)
	}

	return nil
}

// FindByTokenHash retrieves an admin token by its token hash
// Returns ErrTokenNotFound if the token does not exist
func (r *AdminTokenRepository) FindByTokenHash(tokenHash string) (*models.AdminToken, error) {
	if tokenHash == "" {
		return nil, fmt.Errorf("token hash is required")
	}

	var token models.AdminToken
	if err := r.db.Where("token_hash = ?", tokenHash).First(&token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to find token: %w", err)
	}

	return &token, nil
}

// GetLastRequestByEmail retrieves the most recent token request for a given email
// Returns nil if no previous requests found
func (r *AdminTokenRepository) GetLastRequestByEmail(email string) (*models.AdminToken, error) {
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}

	var token models.AdminToken
	if err := r.db.Where("email = ?", email).
		Order("requested_at DESC").
		First(&token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // No previous requests found
		}
		return nil, fmt.Errorf("failed to get last request: %w", err)
	}

	return &token, nil
}

// MarkAsUsed records the current time as the token's last use
func (r *AdminTokenRepository) MarkAsUsed(tokenHash string) error {
	if tokenHash == "" {
		return fmt.Errorf("token hash is required")
	}

	now := time.Now().UTC()
	result := r.db.Model(&models.AdminToken{}).
		Where("token_hash = ?", tokenHash).
		Updates(map[string]interface{}{
			"last_used_at": now,
			"updated_at":   now,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to mark token as used: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrTokenNotFound
	}

	return nil
}

// ValidateToken checks that a token exists and has not expired.
// Admin tokens may be reused until they expire.
func (r *AdminTokenRepository) ValidateToken(tokenHash string) (*models.AdminToken, error) {
	if tokenHash == "" {
		return nil, fmt.Errorf("token hash is required")
	}

	token, err := r.FindByTokenHash(tokenHash)
	if err != nil {
		return nil, err
	}

	if token.IsExpired() {
		return nil, ErrTokenExpired
	}

	return token, nil
}

// CleanupExpired removes expired tokens from the database
// Returns the number of tokens deleted
// Use this periodically to keep the database clean
func (r *AdminTokenRepository) CleanupExpired() (int64, error) {
	now := time.Now().UTC()

	result := r.db.Where("expires_at < ?", now).Delete(&models.AdminToken{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to cleanup expired tokens: %w", result.Error)
	}

	return result.RowsAffected, nil
}

// InvalidateAllForEmail invalidates all active tokens for a given email
// This is called when a new token is requested to ensure only the latest token is valid
func (r *AdminTokenRepository) InvalidateAllForEmail(email string) (int64, error) {
	if email == "" {
		return 0, fmt.Errorf("email is required")
	}

	now := time.Now().UTC()

	// Set ExpiresAt to now for all active tokens (not expired yet)
	result := r.db.Model(&models.AdminToken{}).
		Where("email = ?", email).
		Where("expires_at > ?", now).
		Update("expires_at", now)

	if result.Error != nil {
		return 0, fmt.Errorf("failed to invalidate tokens: %w", result.Error)
	}

	return result.RowsAffected, nil
}
