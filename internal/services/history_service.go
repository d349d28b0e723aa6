package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cardioshield/predictor/internal/crypto"
	"github.com/cardioshield/predictor/internal/logger"
	"github.com/cardioshield/predictor/internal/metrics"
	"github.com/cardioshield/predictor/internal/models"
	"github.com/cardioshield/predictor/internal/repositories"
	"github.com/cardioshield/predictor/internal/validators"
)

// HistoryService stores predictions with the clinical input encrypted at rest
type HistoryService struct {
	repo      *repositories.PredictionRepository
	key       []byte
	telemetry *metrics.Provider
	log       logger.Logger
}

// HistoryEntry is one decrypted history record
type HistoryEntry struct {
	ID              string               `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Model           string               `json:"model" example:"SVM"`
	Prediction      int                  `json:"prediction" example:"1"`
	HasHeartDisease bool                 `json:"has_heart_disease" example:"true"`
	Message         string               `json:"message" example:"Heart Disease Detected!"`
	Input           *models.PatientInput `json:"input,omitempty"`
	DecryptError    string               `json:"decrypt_error,omitempty"`
	CreatedAt       string               `json:"created_at" example:"2025-11-13T12:00:00Z"`
}

// HistoryPage is one page of history entries
type HistoryPage struct {
	Total   int64          `json:"total" example:"42"`
	Limit   int            `json:"limit" example:"50"`
	Offset  int            `json:"offset" example:"0"`
	Entries []HistoryEntry `json:"entries"`
}

// HistoryStats summarises stored predictions
type HistoryStats struct {
	Total  int64                     `json:"total" example:"42"`
	Models []repositories.ModelStats `json:"models"`
}

// NewHistoryService creates a history service. encryptionKey is the
// base64-encoded AES-256 key.
func NewHistoryService(
	repo *repositories.PredictionRepository,
	encryptionKey string,
	telemetry *metrics.Provider,
	log logger.Logger,
) (*HistoryService, error) {
	if repo == nil {
		return nil, fmt.Errorf("prediction repository is required")
	}
	key, err := crypto.DecodeKey(encryptionKey)
	if err != nil {
		return nil, fmt.Errorf("invalid history encryption key: %w", err)
	}
	if log == nil {
		log = logger.NewNop()
	}

	return &HistoryService{
		repo:      repo,
		key:       key,
		telemetry: telemetry,
		log:       log.With(logger.String("component", "history_service")),
	}, nil
}

// Record encrypts the feature vector and stores it with the outcome
func (s *HistoryService) Record(ctx context.Context, input models.PatientInput, prediction models.Prediction) error {
	err := s.record(input, prediction)
	if s.telemetry != nil {
		s.telemetry.RecordHistoryWrite(err == nil)
	}
	return err
}

func (s *HistoryService) record(input models.PatientInput, prediction models.Prediction) error {
	plaintext, err := json.Marshal(input.FeatureVector())
	if err != nil {
		return fmt.Errorf("failed to encode feature vector: %w", err)
	}

	ciphertext, err := crypto.Encrypt(plaintext, s.key)
	if err != nil {
		return fmt.Errorf("failed to encrypt feature vector: %w", err)
	}

	record := &models.PredictionRecord{
		ID:              uuid.New().String(),
		ModelName:       prediction.Model,
		Class:           prediction.Class,
		HasHeartDisease: prediction.HasHeartDisease,
		EncryptedInput:  ciphertext,
		CreatedAt:       time.Now().UTC(),
	}

	return s.repo.Create(record)
}

// List returns a page of history, newest first, with inputs decrypted.
// A record that cannot be decrypted is returned without its input.
func (s *HistoryService) List(ctx context.Context, filter repositories.PredictionFilter) (*HistoryPage, error) {
	records, total, err := s.repo.List(filter)
	if err != nil {
		return nil, err
	}

	limit := filter.Limit
	if limit <= 0 || limit > repositories.MaxListLimit {
		limit = repositories.MaxListLimit
	}

	page := &HistoryPage{
		Total:   total,
		Limit:   limit,
		Offset:  filter.Offset,
		Entries: make([]HistoryEntry, 0, len(records)),
	}
	for _, r := range records {
		page.Entries = append(page.Entries, s.entry(r))
	}
	return page, nil
}

// Get returns one record with its input decrypted.
// Missing IDs yield repositories.ErrRecordNotFound.
func (s *HistoryService) Get(ctx context.Context, id string) (*HistoryEntry, error) {
	record, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	e := s.entry(record)
	return &e, nil
}

func (s *HistoryService) entry(r *models.PredictionRecord) HistoryEntry {
	e := HistoryEntry{
		ID:              r.ID,
		Model:           r.ModelName,
		Prediction:      r.Class,
		HasHeartDisease: r.HasHeartDisease,
		Message:         models.NewPrediction(r.ModelName, r.Class).Message,
		CreatedAt:       validators.FormatUTCTimestamp(r.CreatedAt),
	}

	input, err := s.decryptInput(r.EncryptedInput)
	if err != nil {
		s.log.Warn("Failed to decrypt history record", logger.String("id", r.ID), logger.Error(err))
		e.DecryptError = err.Error()
		return e
	}
	e.Input = &input
	return e
}

func (s *HistoryService) decryptInput(ciphertext string) (models.PatientInput, error) {
	plaintext, err := crypto.Decrypt(ciphertext, s.key)
	if err != nil {
		return models.PatientInput{}, err
	}

	var vector []float64
	if err := json.Unmarshal(plaintext, &vector); err != nil {
		return models.PatientInput{}, fmt.Errorf("failed to decode feature vector: %w", err)
	}
	return models.PatientInputFromVector(vector)
}

// Stats returns totals per model
func (s *HistoryService) Stats(ctx context.Context) (*HistoryStats, error) {
	total, err := s.repo.Count()
	if err != nil {
		return nil, err
	}
	perModel, err := s.repo.StatsByModel()
	if err != nil {
		return nil, err
	}
	return &HistoryStats{Total: total, Models: perModel}, nil
}

// DeleteOlderThan removes records created before cutoff
func (s *HistoryService) DeleteOlderThan(cutoff time.Time) (int64, error) {
	n, err := s.repo.DeleteOlderThan(cutoff)
	if err != nil {
		return 0, err
	}
	if s.telemetry != nil {
		s.telemetry.AddHistoryDeleted(n)
	}
	return n, nil
}
