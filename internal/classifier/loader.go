package classifier

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// LoadFile reads and decodes one model artifact.
// A missing file yields an error wrapping ErrModelNotFound.
func LoadFile(path string) (Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrModelNotFound, path)
		}
		return nil, fmt.Errorf("failed to read model file %s: %w", path, err)
	}

	model, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return model, nil
}

// Decode parses a JSON artifact and validates its shape
func Decode(data []byte) (Model, error) {
	var header artifactHeader
	if err := json.Unmarshal(data, &header); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArtifact, err)
	}

	switch header.Type {
	case KindRandomForest:
		var forest RandomForest
		if err := decodeStrict(data, &forest); err != nil {
			return nil, err
		}
		if err := forest.validate(); err != nil {
			return nil, err
		}
		return &forest, nil

	case KindSVM:
		var svm SVM
		if err := decodeStrict(data, &svm); err != nil {
			return nil, err
		}
		if err := svm.validate(); err != nil {
			return nil, err
		}
		return &svm, nil

	case "":
		return nil, invalidf("missing \"type\" field")

	default:
		return nil, invalidf("unsupported model type %q", header.Type)
	}
}

// decodeStrict rejects unknown fields so misspelled keys are not silently zero
func decodeStrict(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArtifact, err)
	}
	return nil
}
