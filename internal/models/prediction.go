package models

import (
	"time"

	"gorm.io/gorm"
)

// Fixed user-facing strings
const (
	MessageHeartDisease   = "Heart Disease Detected!"
	MessageNoHeartDisease = "No Heart Disease Detected!"

	Disclaimer = "Disclaimer: This app is for educational purposes only and should not be used as a substitute for professional medical advice."
)

// PositiveClass is the model output that means heart disease
const PositiveClass = 1

// Prediction is the outcome of running one model on one input
type Prediction struct {
	Model           string `json:"model" example:"Random Forest"`
	Class           int    `json:"prediction" example:"1"`
	HasHeartDisease bool   `json:"has_heart_disease" example:"true"`
	Message         string `json:"message" example:"Heart Disease Detected!"`
}

// NewPrediction maps a raw model class onto the two fixed outcomes.
// Only PositiveClass counts as heart disease.
func NewPrediction(model string, class int) Prediction {
	p := Prediction{Model: model, Class: class}
	if class == PositiveClass {
		p.HasHeartDisease = true
		p.Message = MessageHeartDisease
	} else {
		p.Message = MessageNoHeartDisease
	}
	return p
}

// PredictionRecord is the audit row written after a successful prediction.
// The clinical input is stored only in encrypted form.
type PredictionRecord struct {
	// ID is a server-generated UUID v4
	ID string `gorm:"primaryKey;type:text;not null" json:"id"`

	// ModelName is the registry name of the model that was used
	ModelName string `gorm:"type:text;not null;index" json:"model"`

	// Class is the raw model output
	Class int `gorm:"not null" json:"prediction"`

	HasHeartDisease bool `gorm:"not null;default:false" json:"has_heart_disease"`

	// EncryptedInput is the AES-256-GCM encrypted JSON feature vector
	EncryptedInput string `gorm:"type:text;not null" json:"-"`

	// CreatedAt is stored in UTC
	CreatedAt time.Time `gorm:"type:datetime;not null;index" json:"created_at"`
}

// TableName overrides the default table name for GORM
func (PredictionRecord) TableName() string {
	return "prediction_records"
}

// BeforeCreate is a GORM hook that keeps CreatedAt in UTC
func (r *PredictionRecord) BeforeCreate(tx *gorm.DB) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	} else {
		r.CreatedAt = r.CreatedAt.UTC()
	}
	return nil
}
