package models

import "time"

// HealthResponse represents the response structure for health check endpoints
type HealthResponse struct {
	Status    string          `json:"status"`
	Timestamp time.Time       `json:"timestamp"`
	Service   string          `json:"service"`
	Models    map[string]bool `json:"models"`
	// Dependencies is present when the service runs with a database
	Dependencies map[string]DependencyStatus `json:"dependencies,omitempty"`
}

// DependencyStatus reports one backing service
type DependencyStatus struct {
	Status string `json:"status" example:"ok"`
	Error  string `json:"error,omitempty"`
}

// ModelStatus describes one registry slot
type ModelStatus struct {
	Name      string `json:"name" example:"Random Forest"`
	File      string `json:"file" example:"Random Forest.json"`
	Available bool   `json:"available" example:"true"`
	Error     string `json:"error,omitempty" example:""`
}
