package models

// Option is one choice of a coded dropdown field
type Option struct {
	Value int
	Label string
}

// Dropdown options in display order. The first entry is the default.
var (
	SexOptions = []Option{
		{0, "Female"},
		{1, "Male"},
	}

	ChestPainOptions = []Option{
		{3, "Asymptomatic"},
		{1, "Atypical Angina"},
		{2, "Non-Anginal pain"},
		{0, "Typical Angina"},
	}

	RestECGOptions = []Option{
		{1, "ST"},
		{2, "LVH"},
		{0, "Normal"},
	}

	SlopeOptions = []Option{
		{2, "Flat"},
		{0, "Up"},
		{1, "Down"},
	}
)

// Numeric bounds and defaults for the free-valued inputs
const (
	AgeMin     = 1
	AgeMax     = 100
	AgeDefault = 25

	RestingBPMin     = 80
	RestingBPMax     = 200
	RestingBPDefault = 120

	CholesterolMin     = 100
	CholesterolMax     = 600
	CholesterolDefault = 200

	MaxHeartRateMin     = 60
	MaxHeartRateMax     = 202
	MaxHeartRateDefault = 150

	OldpeakMin     = 0.0
	OldpeakMax     = 6.0
	OldpeakStep    = 0.1
	OldpeakDefault = 1.0
)

// HasOption reports whether value is one of the options
func HasOption(options []Option, value int) bool {
	for _, o := range options {
		if o.Value == value {
			return true
		}
	}
	return false
}
