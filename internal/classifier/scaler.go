package classifier

// Scaler standardises features as (x - mean) / scale, matching a
// StandardScaler fitted in front of the estimator.
type Scaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

func (s *Scaler) validate(nFeatures int) error {
	if len(s.Mean) != nFeatures || len(s.Scale) != nFeatures {
		return invalidf("scaler has %d means and %d scales, expected %d", len(s.Mean), len(s.Scale), nFeatures)
	}
	for i, v := range s.Scale {
		if v == 0 {
			return invalidf("scaler scale[%d] is zero", i)
		}
	}
	return nil
}

// transform returns a scaled copy; a nil scaler returns the input unchanged
func (s *Scaler) transform(x []float64) []float64 {
	if s == nil {
		return x
	}
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = (v - s.Mean[i]) / s.Scale[i]
	}
	return out
}
