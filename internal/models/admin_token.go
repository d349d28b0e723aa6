package models

import "time"

// AdminTokenLifetime is how long an emailed admin token stays valid
const AdminTokenLifetime = 24 * time.Hour

// AdminTokenRequestInterval is the minimum gap between two token requests
const AdminTokenRequestInterval = 24 * time.Hour

// AdminToken tracks an issued admin JWT by its SHA-256 hash.
// The token itself is only ever sent by email.
type AdminToken struct {
	ID          string     `gorm:"primaryKey;type:text" json:"id"`
	Email       string     `gorm:"not null;index" json:"email"`
	TokenHash   string     `gorm:"not null;uniqueIndex" json:"-"`
	RequestedAt time.Time  `gorm:"not null" json:"requested_at"`
	ExpiresAt   time.Time  `gorm:"not null;index" json:"expires_at"`
	LastUsedAt  *time.Time `json:"last_used_at,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (AdminToken) TableName() string {
	return "admin_tokens"
}

// IsExpired checks if the token has expired
func (at *AdminToken) IsExpired() bool {
	return time.Now().After(at.ExpiresAt)
}

// NextRequestAllowedAt returns when the same email may request again
func NextRequestAllowedAt(lastRequestedAt time.Time) time.Time {
	return lastRequestedAt.Add(AdminTokenRequestInterval)
}

// CanRequestNewToken reports whether the request interval has passed
func CanRequestNewToken(lastRequestedAt time.Time) bool {
	return !time.Now().Before(NextRequestAllowedAt(lastRequestedAt))
}
