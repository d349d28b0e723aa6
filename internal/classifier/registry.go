package classifier

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/cardioshield/predictor/internal/logger"
	"github.com/cardioshield/predictor/internal/models"
)

var (
	// ErrUnknownModel is returned for a name that is not a registry slot
	ErrUnknownModel = errors.New("unknown model")

	// ErrModelUnavailable is returned when a slot has no loaded model
	ErrModelUnavailable = errors.New("model is not available")
)

// Slot binds a user-facing model name to its artifact file name
type Slot struct {
	Name string
	File string
}

// DefaultSlots are the two models offered by the form, in display order
var DefaultSlots = []Slot{
	{Name: "Random Forest", File: "Random Forest.json"},
	{Name: "SVM", File: "Support Vector Machine.json"},
}

// DefaultRetryInterval is the minimum gap between on-demand reloads
// triggered by requests for an unavailable model
const DefaultRetryInterval = 5 * time.Second

type slotState struct {
	Slot
	model Model
	err   error
}

// Registry holds the loaded models. Each slot loads independently, so a
// missing file only disables its own model.
type Registry struct {
	mu         sync.RWMutex
	dir        string
	slots      []slotState
	lastReload time.Time

	// reloadMu serializes reloads so an older read never overwrites a newer one
	reloadMu      sync.Mutex
	retryInterval time.Duration

	log      logger.Logger
	onReload func([]models.ModelStatus)
}

// RegistryOption customises a Registry
type RegistryOption func(*Registry)

// WithReloadHook registers a callback invoked with the slot status after every reload
func WithReloadHook(fn func([]models.ModelStatus)) RegistryOption {
	return func(r *Registry) {
		r.onReload = fn
	}
}

// WithRetryInterval sets how often Get may reload the directory when an
// unavailable model is requested. Zero or less disables on-demand reloads.
func WithRetryInterval(d time.Duration) RegistryOption {
	return func(r *Registry) {
		r.retryInterval = d
	}
}

// NewRegistry creates a registry for dir and performs the initial load.
// It never fails because of missing or broken artifacts.
func NewRegistry(dir string, slots []Slot, log logger.Logger, opts ...RegistryOption) *Registry {
	if log == nil {
		log = logger.NewNop()
	}
	r := &Registry{
		dir:           dir,
		retryInterval: DefaultRetryInterval,
		log:           log.With(logger.String("component", "model_registry")),
	}
	for _, s := range slots {
		r.slots = append(r.slots, slotState{Slot: s})
	}
	for _, opt := range opts {
		opt(r)
	}

	r.Reload()
	return r
}

// Dir returns the artifact directory
func (r *Registry) Dir() string {
	return r.dir
}

// Reload retries every slot and returns how many models are available.
// Files are read outside the read lock; the swap happens under it.
func (r *Registry) Reload() int {
	r.reloadMu.Lock()
	defer r.reloadMu.Unlock()
	return r.reload()
}

func (r *Registry) reload() int {
	r.mu.RLock()
	slots := make([]Slot, len(r.slots))
	for i, s := range r.slots {
		slots[i] = s.Slot
	}
	r.mu.RUnlock()

	loaded := make([]slotState, len(slots))
	available := 0
	for i, s := range slots {
		path := filepath.Join(r.dir, s.File)
		model, err := LoadFile(path)
		loaded[i] = slotState{Slot: s, model: model, err: err}

		switch {
		case err == nil:
			available++
			r.log.Info("Model loaded",
				logger.String("model", s.Name),
				logger.String("path", path),
				logger.String("kind", model.Kind()),
			)
		case errors.Is(err, ErrModelNotFound):
			r.log.Warn("Model file not found, option disabled",
				logger.String("model", s.Name),
				logger.String("path", path),
			)
		default:
			r.log.Error("Model file could not be loaded, option disabled",
				logger.String("model", s.Name),
				logger.Error(err),
			)
		}
	}

	r.mu.Lock()
	r.slots = loaded
	r.lastReload = time.Now()
	r.mu.Unlock()

	if r.onReload != nil {
		r.onReload(r.Status())
	}
	return available
}

// Get returns the model for name. When the model is unavailable and the
// last reload is older than the retry interval, the directory is re-read
// first, so a file that appears later is picked up without a watcher.
func (r *Registry) Get(name string) (Model, error) {
	model, err := r.lookup(name)
	if errors.Is(err, ErrModelUnavailable) && r.retryDue() {
		r.reloadIfStale()
		model, err = r.lookup(name)
	}
	return model, err
}

func (r *Registry) retryDue() bool {
	if r.retryInterval <= 0 {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return time.Since(r.lastReload) >= r.retryInterval
}

// reloadIfStale reloads unless another caller did so while this one waited
func (r *Registry) reloadIfStale() {
	r.reloadMu.Lock()
	defer r.reloadMu.Unlock()
	if !r.retryDue() {
		return
	}
	r.log.Debug("Retrying unavailable models")
	r.reload()
}

func (r *Registry) lookup(name string) (Model, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.slots {
		if s.Name != name {
			continue
		}
		if s.model == nil {
			return nil, fmt.Errorf("%w: %s", ErrModelUnavailable, name)
		}
		return s.model, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownModel, name)
}

// Status reports availability of every slot in display order
func (r *Registry) Status() []models.ModelStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.ModelStatus, len(r.slots))
	for i, s := range r.slots {
		out[i] = models.ModelStatus{
			Name:      s.Name,
			File:      s.File,
			Available: s.model != nil,
		}
		if s.err != nil {
			out[i].Error = s.err.Error()
		}
	}
	return out
}

// Availability maps slot name to whether its model is loaded
func (r *Registry) Availability() map[string]bool {
	status := r.Status()
	out := make(map[string]bool, len(status))
	for _, s := range status {
		out[s.Name] = s.Available
	}
	return out
}
