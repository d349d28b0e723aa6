package validators

import (
	"errors"
	"fmt"

	"github.com/cardioshield/predictor/internal/models"
)

// PatientInputValidator checks the clinical form values against the
// bounds and options the form offers
type PatientInputValidator struct{}

// Validate returns one error per invalid field, in feature order
func (v *PatientInputValidator) Validate(in models.PatientInput) []error {
	errs := []error{}

	checks := []error{
		ValidateIntRange(in.Age, "age", models.AgeMin, models.AgeMax),
		ValidateOption(in.Sex, "sex", models.SexOptions),
		ValidateOption(in.ChestPain, "cp", models.ChestPainOptions),
		ValidateIntRange(in.RestingBP, "rbp", models.RestingBPMin, models.RestingBPMax),
		ValidateIntRange(in.Cholesterol, "chol", models.CholesterolMin, models.CholesterolMax),
		ValidateOption(in.RestECG, "restecg", models.RestECGOptions),
		ValidateIntRange(in.MaxHeartRate, "maxhr", models.MaxHeartRateMin, models.MaxHeartRateMax),
		validateOldpeak(in.Oldpeak),
		ValidateOption(in.Slope, "slope", models.SlopeOptions),
	}

	for _, err := range checks {
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func validateOldpeak(value float64) error {
	if err := ValidateFloatRange(value, "oldpeak", models.OldpeakMin, models.OldpeakMax); err != nil {
		return err
	}
	return ValidateStep(value, "oldpeak", models.OldpeakMin, models.OldpeakStep)
}

// FormatValidationErrors joins multiple validation errors into one message
func FormatValidationErrors(errs []error) string {
	if len(errs) == 0 {
		return ""
	}

	if len(errs) == 1 {
		return errs[0].Error()
	}

	result := "validation errors:\n"
	for i, err := range errs {
		result += fmt.Sprintf("  %d. %s\n", i+1, err.Error())
	}
	return result
}

// HasValidationErrors checks if there are any validation errors
func HasValidationErrors(errs []error) bool {
	return len(errs) > 0
}

// FieldMessages maps field name to message for inline display.
// Errors that are not ValidationErrors are ignored.
func FieldMessages(errs []error) map[string]string {
	out := make(map[string]string, len(errs))
	for _, err := range errs {
		var ve *ValidationError
		if errors.As(err, &ve) {
			out[ve.Field] = ve.Message
		}
	}
	return out
}
