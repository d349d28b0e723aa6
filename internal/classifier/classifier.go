// Package classifier evaluates pre-trained binary classifiers exported to JSON.
//
// Models are trained elsewhere; this package only reads the exported
// parameters and reproduces the estimator's predict step. Two estimator
// families are supported: random forests and support vector machines.
package classifier

import (
	"errors"
	"fmt"
)

// Artifact type discriminators
const (
	KindRandomForest = "random_forest"
	KindSVM          = "svm"
)

var (
	// ErrModelNotFound is returned when an artifact file does not exist
	ErrModelNotFound = errors.New("model file not found")

	// ErrInvalidArtifact is returned when an artifact cannot be decoded or is inconsistent
	ErrInvalidArtifact = errors.New("invalid model artifact")

	// ErrFeatureCount is returned when the input length does not match the model
	ErrFeatureCount = errors.New("feature count mismatch")
)

// Model is a fitted binary classifier
type Model interface {
	// Predict returns the class label for one feature vector.
	// The vector is read as-is; it is never reordered or modified.
	Predict(features []float64) (int, error)

	// NumFeatures is the vector length the model was trained on
	NumFeatures() int

	// Kind returns the artifact type discriminator
	Kind() string
}

// artifactHeader is decoded first to pick the concrete model type
type artifactHeader struct {
	Type string `json:"type"`
}

func checkFeatureCount(features []float64, want int) error {
	if len(features) != want {
		return fmt.Errorf("%w: got %d, model expects %d", ErrFeatureCount, len(features), want)
	}
	return nil
}

func invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidArtifact, fmt.Sprintf(format, args...))
}

// binaryClasses defaults missing class labels to 0 and 1
func binaryClasses(classes []int) ([]int, error) {
	if len(classes) == 0 {
		return []int{0, 1}, nil
	}
	if len(classes) != 2 {
		return nil, invalidf("expected 2 classes, got %d", len(classes))
	}
	return classes, nil
}
