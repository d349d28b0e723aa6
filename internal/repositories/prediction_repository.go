package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/cardioshield/predictor/internal/models"
	"github.com/cardioshield/predictor/internal/validators"
	"gorm.io/gorm"
)

// ErrRecordNotFound is returned when a prediction record does not exist
var ErrRecordNotFound = errors.New("prediction record not found")

// MaxListLimit caps a single page of history
const MaxListLimit = 500

// PredictionFilter narrows a history listing
type PredictionFilter struct {
	// Since keeps records created at or after this instant (zero = no bound)
	Since time.Time

	// ModelName keeps records of one model (empty = all)
	ModelName string

	Limit  int
	Offset int
}

// ModelStats aggregates outcomes for one model
type ModelStats struct {
	ModelName     string `json:"model"`
	Total         int64  `json:"total"`
	Positive      int64  `json:"heart_disease"`
	Negative      int64  `json:"no_heart_disease"`
	LastPredicted string `json:"last_predicted_at,omitempty"`
}

// PredictionRepository handles database operations for prediction history
type PredictionRepository struct {
	db *gorm.DB
}

// NewPredictionRepository creates a new prediction repository instance
func NewPredictionRepository(db *gorm.DB) *PredictionRepository {
	return &PredictionRepository{db: db}
}

// Create inserts a new prediction record
func (r *PredictionRepository) Create(record *models.PredictionRecord) error {
	if record == nil {
		return fmt.Errorf("record cannot be nil")
	}
	if record.ID == "" {
		return fmt.Errorf("record ID is required")
	}
	if record.EncryptedInput == "" {
		return fmt.Errorf("encrypted input is required")
	}

	if err := r.db.Create(record).Error; err != nil {
		return fmt.Errorf("failed to create prediction record: %w", err)
	}

	return nil
}

// FindByID retrieves one record
func (r *PredictionRepository) FindByID(id string) (*models.PredictionRecord, error) {
	if id == "" {
		return nil, fmt.Errorf("record ID is required")
	}

	var record models.PredictionRecord
	if err := r.db.Where("id = ?", id).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to find prediction record: %w", err)
	}

	return &record, nil
}

// List returns records matching filter, newest first, plus the total match count
func (r *PredictionRepository) List(filter PredictionFilter) ([]*models.PredictionRecord, int64, error) {
	if filter.Limit <= 0 || filter.Limit > MaxListLimit {
		filter.Limit = MaxListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	query := r.filtered(filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count prediction records: %w", err)
	}

	var records []*models.PredictionRecord
	if err := r.filtered(filter).
		Order("created_at DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&records).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list prediction records: %w", err)
	}

	return records, total, nil
}

func (r *PredictionRepository) filtered(filter PredictionFilter) *gorm.DB {
	query := r.db.Model(&models.PredictionRecord{})
	if !filter.Since.IsZero() {
		query = query.Where("created_at >= ?", filter.Since.UTC())
	}
	if filter.ModelName != "" {
		query = query.Where("model_name = ?", filter.ModelName)
	}
	return query
}

// Count returns the total number of stored predictions
func (r *PredictionRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&models.PredictionRecord{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count prediction records: %w", err)
	}
	return count, nil
}

// StatsByModel aggregates outcomes per model, ordered by model name
func (r *PredictionRepository) StatsByModel() ([]ModelStats, error) {
	type row struct {
		ModelName string
		Total     int64
		Positive  int64
		LastAt    string
	}

	var rows []row
	if err := r.db.Model(&models.PredictionRecord{}).
		Select("model_name, COUNT(*) AS total, " +
			"SUM(CASE WHEN has_heart_disease THEN 1 ELSE 0 END) AS positive, " +
			"MAX(created_at) AS last_at").
		Group("model_name").
		Order("model_name ASC").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate prediction records: %w", err)
	}

	stats := make([]ModelStats, 0, len(rows))
	for _, rw := range rows {
		last, err := parseStoredTime(rw.LastAt)
		if err != nil {
			return nil, fmt.Errorf("failed to read last prediction time for %s: %w", rw.ModelName, err)
		}
		stats = append(stats, ModelStats{
			ModelName:     rw.ModelName,
			Total:         rw.Total,
			Positive:      rw.Positive,
			Negative:      rw.Total - rw.Positive,
			LastPredicted: validators.FormatUTCTimestamp(last),
		})
	}
	return stats, nil
}

// Aggregates come back as the driver's text encoding, not time.Time
var storedTimeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	time.RFC3339Nano,
}

func parseStoredTime(value string) (time.Time, error) {
	for _, layout := range storedTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}

// DeleteOlderThan removes records created before cutoff
// Returns the number of records deleted
func (r *PredictionRepository) DeleteOlderThan(cutoff time.Time) (int64, error) {
	result := r.db.Where("created_at < ?", cutoff.UTC()).Delete(&models.PredictionRecord{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete old prediction records: %w", result.Error)
	}
	return result.RowsAffected, nil
}
