package validators

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/cardioshield/predictor/internal/models"
)

// UUID validation regex (RFC 4122 v4)
var uuidRegex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

// ValidationError represents a validation error with field context
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// IsValidUUID checks if the string is a valid RFC 4122 v4 UUID
func IsValidUUID(uuid string) bool {
	if uuid == "" {
		return false
	}
	return uuidRegex.MatchString(strings.ToLower(uuid))
}

// ValidateUUID validates and returns an error if invalid
func ValidateUUID(uuid string, fieldName string) error {
	if uuid == "" {
		return NewValidationError(fieldName, "UUID is required")
	}
	if !IsValidUUID(uuid) {
		return NewValidationError(fieldName, "invalid UUID format (expected: xxxxxxxx-xxxx-4xxx-yxxx-xxxxxxxxxxxx)")
	}
	return nil
}

// ValidateIntRange checks min <= value <= max
func ValidateIntRange(value int, fieldName string, min, max int) error {
	if value < min || value > max {
		return NewValidationError(fieldName, fmt.Sprintf("must be between %d and %d (got: %d)", min, max, value))
	}
	return nil
}

// ValidateFloatRange checks min <= value <= max and rejects NaN
func ValidateFloatRange(value float64, fieldName string, min, max float64) error {
	if math.IsNaN(value) || value < min || value > max {
		return NewValidationError(fieldName, fmt.Sprintf("must be between %.1f and %.1f (got: %v)", min, max, value))
	}
	return nil
}

// ValidateStep checks that value lies on a multiple of step from min.
// A small tolerance absorbs decimal-to-binary rounding (2.3 is not exact).
func ValidateStep(value float64, fieldName string, min, step float64) error {
	n := (value - min) / step
	if math.Abs(n-math.Round(n)) > 1e-6 {
		return NewValidationError(fieldName, fmt.Sprintf("must be a multiple of %v (got: %v)", step, value))
	}
	return nil
}

// ValidateOption checks that value is one of the allowed coded options
func ValidateOption(value int, fieldName string, options []models.Option) error {
	if models.HasOption(options, value) {
		return nil
	}
	allowed := make([]string, len(options))
	for i, o := range options {
		allowed[i] = fmt.Sprintf("%d (%s)", o.Value, o.Label)
	}
	return NewValidationError(fieldName, fmt.Sprintf("invalid option %d (allowed: %s)", value, strings.Join(allowed, ", ")))
}

// ValidateStringLength validates string length constraints
func ValidateStringLength(value string, fieldName string, minLength, maxLength int) error {
	length := len(value)
	if minLength > 0 && length < minLength {
		return NewValidationError(fieldName, fmt.Sprintf("must be at least %d characters (got: %d)", minLength, length))
	}
	if maxLength > 0 && length > maxLength {
		return NewValidationError(fieldName, fmt.Sprintf("must be at most %d characters (got: %d)", maxLength, length))
	}
	return nil
}
