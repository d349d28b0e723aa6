package services

import (
	"sync"
	"time"

	"github.com/cardioshield/predictor/internal/logger"
)

// DefaultCleanupInterval is used when no interval is configured
const DefaultCleanupInterval = 24 * time.Hour

// ExpiredTokenCleaner removes expired admin tokens
type ExpiredTokenCleaner interface {
	CleanupExpired() (int64, error)
}

// HistoryPruner removes history older than a cutoff
type HistoryPruner interface {
	DeleteOlderThan(cutoff time.Time) (int64, error)
}

// CleanupResult reports what one cleanup run removed
type CleanupResult struct {
	AdminTokens int64 `json:"admin_tokens_removed" example:"2"`
	Predictions int64 `json:"predictions_removed" example:"10"`
}

// CleanupConfig configures the cleanup job
type CleanupConfig struct {
	// Retention is the age after which history records are removed (0 keeps them forever)
	Retention time.Duration
	// Interval is the period between scheduled runs
	Interval time.Duration
}

// CleanupService handles periodic cleanup of expired tokens and old history.
// Either target may be nil when its feature is disabled.
type CleanupService struct {
	tokens    ExpiredTokenCleaner
	history   HistoryPruner
	retention time.Duration
	interval  time.Duration
	log       logger.Logger

	mu      sync.Mutex
	ticker  *time.Ticker
	done    chan struct{}
	stopped chan struct{}
}

// NewCleanupService creates a new cleanup service
func NewCleanupService(tokens ExpiredTokenCleaner, history HistoryPruner, cfg CleanupConfig, log logger.Logger) *CleanupService {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultCleanupInterval
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &CleanupService{
		tokens:    tokens,
		history:   history,
		retention: cfg.Retention,
		interval:  cfg.Interval,
		log:       log.With(logger.String("component", "cleanup")),
	}
}

// Start runs a cleanup immediately and then once per interval
func (s *CleanupService) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ticker != nil {
		return
	}

	s.runCleanup()

	s.ticker = time.NewTicker(s.interval)
	s.done = make(chan struct{})
	s.stopped = make(chan struct{})

	go func(ticker *time.Ticker, done, stopped chan struct{}) {
		defer close(stopped)
		for {
			select {
			case <-ticker.C:
				s.runCleanup()
			case <-done:
				return
			}
		}
	}(s.ticker, s.done, s.stopped)

	s.log.Info("Cleanup service started", logger.Duration("interval", s.interval))
}

// Stop stops the scheduled cleanup and waits for a running pass to finish
func (s *CleanupService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ticker == nil {
		return
	}

	s.ticker.Stop()
	close(s.done)
	<-s.stopped
	s.ticker = nil

	s.log.Info("Cleanup service stopped")
}

// RunCleanupNow triggers an immediate cleanup
func (s *CleanupService) RunCleanupNow() CleanupResult {
	return s.runCleanup()
}

func (s *CleanupService) runCleanup() CleanupResult {
	var result CleanupResult

	if s.tokens != nil {
		n, err := s.tokens.CleanupExpired()
		if err != nil {
			s.log.Error("Failed to cleanup admin tokens", logger.Error(err))
		} else {
			result.AdminTokens = n
		}
	}

	if s.history != nil && s.retention > 0 {
		cutoff := time.Now().UTC().Add(-s.retention)
		n, err := s.history.DeleteOlderThan(cutoff)
		if err != nil {
			s.log.Error("Failed to cleanup prediction history", logger.Error(err))
		} else {
			result.Predictions = n
		}
	}

	s.log.Info("Cleanup completed",
		logger.Int64("admin_tokens_removed", result.AdminTokens),
		logger.Int64("predictions_removed", result.Predictions),
	)
	return result
}
