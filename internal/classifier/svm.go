package classifier

import "math"

// Supported kernels
const (
	KernelLinear  = "linear"
	KernelRBF     = "rbf"
	KernelPoly    = "poly"
	KernelSigmoid = "sigmoid"
)

// SVM is a fitted two-class support vector classifier
type SVM struct {
	Type           string      `json:"type"`
	Features       int         `json:"n_features"`
	Classes        []int       `json:"classes"`
	Kernel         string      `json:"kernel"`
	Gamma          float64     `json:"gamma"`
	Coef0          float64     `json:"coef0"`
	Degree         int         `json:"degree"`
	SupportVectors [][]float64 `json:"support_vectors"`
	DualCoef       []float64   `json:"dual_coef"`
	Intercept      float64     `json:"intercept"`
	Scaler         *Scaler     `json:"scaler,omitempty"`
}

func (s *SVM) Kind() string     { return KindSVM }
func (s *SVM) NumFeatures() int { return s.Features }

func (s *SVM) validate() error {
	if s.Features <= 0 {
		return invalidf("n_features must be positive")
	}
	classes, err := binaryClasses(s.Classes)
	if err != nil {
		return err
	}
	s.Classes = classes

	switch s.Kernel {
	case KernelLinear, KernelRBF, KernelSigmoid:
	case KernelPoly:
		if s.Degree <= 0 {
			s.Degree = 3
		}
	case "":
		s.Kernel = KernelRBF
	default:
		return invalidf("unsupported kernel %q", s.Kernel)
	}

	if len(s.SupportVectors) == 0 {
		return invalidf("no support vectors")
	}
	if len(s.DualCoef) != len(s.SupportVectors) {
		return invalidf("%d dual coefficients for %d support vectors", len(s.DualCoef), len(s.SupportVectors))
	}
	for i, sv := range s.SupportVectors {
		if len(sv) != s.Features {
			return invalidf("support vector %d has %d values, expected %d", i, len(sv), s.Features)
		}
	}
	if s.Scaler != nil {
		return s.Scaler.validate(s.Features)
	}
	return nil
}

func (s *SVM) kernel(a, b []float64) float64 {
	switch s.Kernel {
	case KernelLinear:
		return dot(a, b)
	case KernelPoly:
		return math.Pow(s.Gamma*dot(a, b)+s.Coef0, float64(s.Degree))
	case KernelSigmoid:
		return math.Tanh(s.Gamma*dot(a, b) + s.Coef0)
	default:
		sq := 0.0
		for i := range a {
			d := a[i] - b[i]
			sq += d * d
		}
		return math.Exp(-s.Gamma * sq)
	}
}

// DecisionValue is the signed distance to the separating hyperplane
func (s *SVM) DecisionValue(features []float64) (float64, error) {
	if err := checkFeatureCount(features, s.Features); err != nil {
		return 0, err
	}
	x := s.Scaler.transform(features)

	sum := s.Intercept
	for i, sv := range s.SupportVectors {
		sum += s.DualCoef[i] * s.kernel(sv, x)
	}
	return sum, nil
}

// Predict returns the second class for a positive decision value,
// otherwise the first.
func (s *SVM) Predict(features []float64) (int, error) {
	d, err := s.DecisionValue(features)
	if err != nil {
		return 0, err
	}
	if d > 0 {
		return s.Classes[1], nil
	}
	return s.Classes[0], nil
}

func dot(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
