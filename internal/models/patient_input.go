package models

import "fmt"

// FeatureCount is the length of the vector every model is trained on
const FeatureCount = 11

// FeatureNames lists the vector positions in model order.
// The order is part of the model contract and must never change.
var FeatureNames = [FeatureCount]string{
	"age", "sex", "cp", "rbp", "chol", "fbs", "restecg", "maxhr", "xang", "oldpeak", "slope",
}

// PatientInput is the set of clinical values collected by the form.
// It lives for a single request; only its encrypted vector may be stored.
type PatientInput struct {
	// Age in years, 1..100
	Age int `json:"age" form:"age" example:"25"`

	// Sex: 0 = Female, 1 = Male
	Sex int `json:"sex" form:"sex" example:"0"`

	// ChestPain type: 0 Typical Angina, 1 Atypical Angina, 2 Non-Anginal pain, 3 Asymptomatic
	ChestPain int `json:"cp" form:"cp" example:"3"`

	// RestingBP is resting blood pressure in mm Hg, 80..200
	RestingBP int `json:"rbp" form:"rbp" example:"120"`

	// Cholesterol in mg/dl, 100..600
	Cholesterol int `json:"chol" form:"chol" example:"200"`

	// FastingBloodSugar is true when fasting blood sugar > 120 mg/dl
	FastingBloodSugar bool `json:"fbs" form:"fbs" example:"false"`

	// RestECG: 0 Normal, 1 ST, 2 LVH
	RestECG int `json:"restecg" form:"restecg" example:"1"`

	// MaxHeartRate achieved, 60..202
	MaxHeartRate int `json:"maxhr" form:"maxhr" example:"150"`

	// ExerciseAngina is true for exercise-induced angina
	ExerciseAngina bool `json:"xang" form:"xang" example:"false"`

	// Oldpeak is ST depression induced by exercise, 0.0..6.0
	Oldpeak float64 `json:"oldpeak" form:"oldpeak" example:"1.0"`

	// Slope of the peak exercise ST segment: 0 Up, 1 Down, 2 Flat
	Slope int `json:"slope" form:"slope" example:"2"`
}

// DefaultPatientInput returns the values the form shows before any edit
func DefaultPatientInput() PatientInput {
	return PatientInput{
		Age:          AgeDefault,
		Sex:          SexOptions[0].Value,
		ChestPain:    ChestPainOptions[0].Value,
		RestingBP:    RestingBPDefault,
		Cholesterol:  CholesterolDefault,
		RestECG:      RestECGOptions[0].Value,
		MaxHeartRate: MaxHeartRateDefault,
		Oldpeak:      OldpeakDefault,
		Slope:        SlopeOptions[0].Value,
	}
}

// FeatureVector builds the model input in FeatureNames order
func (p PatientInput) FeatureVector() []float64 {
	return []float64{
		float64(p.Age),
		float64(p.Sex),
		float64(p.ChestPain),
		float64(p.RestingBP),
		float64(p.Cholesterol),
		boolToFloat(p.FastingBloodSugar),
		float64(p.RestECG),
		float64(p.MaxHeartRate),
		boolToFloat(p.ExerciseAngina),
		p.Oldpeak,
		float64(p.Slope),
	}
}

// PatientInputFromVector is the inverse of FeatureVector
func PatientInputFromVector(v []float64) (PatientInput, error) {
	if len(v) != FeatureCount {
		return PatientInput{}, fmt.Errorf("feature vector has %d values, expected %d", len(v), FeatureCount)
	}
	return PatientInput{
		Age:               int(v[0]),
		Sex:               int(v[1]),
		ChestPain:         int(v[2]),
		RestingBP:         int(v[3]),
		Cholesterol:       int(v[4]),
		FastingBloodSugar: v[5] != 0,
		RestECG:           int(v[6]),
		MaxHeartRate:      int(v[7]),
		ExerciseAngina:    v[8] != 0,
		Oldpeak:           v[9],
		Slope:             int(v[10]),
	}, nil
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
