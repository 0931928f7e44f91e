package v1

import (
	"errors"
	"fmt"
	"math"

	"github.com/4thel00z/knn/internal"
)

var (
	ErrDimensionMismatch = internal.ErrDimensionMismatch
	ErrEmptyNeighborSet  = internal.ErrEmptyNeighborSet
	ErrEmptyTestSet      = internal.ErrEmptyTestSet
	ErrInvalidK          = internal.ErrInvalidK
	ErrNoTraining        = fmt.Errorf("%w: no training samples", internal.ErrEmptyNeighborSet)
	ErrNonFiniteLabel    = errors.New("label must be a finite number")
)

// Sample is one observation. Label is nil, a string or a number.
type Sample struct {
	Features []float64 `json:"features"`
	Label    any       `json:"label,omitempty"`
}

// Neighbor is a training sample near a query.
type Neighbor struct {
	Distance float64 `json:"distance"`
	Label    any     `json:"label"`
}

// Prediction is the outcome for one test sample.
type Prediction struct {
	Sample    Sample `json:"sample"`
	Predicted any    `json:"predicted"`
	Correct   bool   `json:"correct"`
}

// Evaluation summarizes a test run. Accuracy is a percentage.
type Evaluation struct {
	Accuracy    float64      `json:"accuracy"`
	Correct     int          `json:"correct"`
	Total       int          `json:"total"`
	Predictions []Prediction `json:"predictions"`
}

func toValue(label any) (internal.Value, error) {
	switch l := label.(type) {
	case nil:
		return internal.Value{}, nil
	case string:
		return internal.TextValue(l), nil
	case float64:
		return numberValue(l)
	case float32:
		return numberValue(float64(l))
	case int:
		return internal.NumberValue(float64(l)), nil
	case int64:
		return internal.NumberValue(float64(l)), nil
	default:
		return internal.Value{}, fmt.Errorf("unsupported label type %T", label)
	}
}

func numberValue(f float64) (internal.Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return internal.Value{}, fmt.Errorf("%w: %v", ErrNonFiniteLabel, f)
	}
	return internal.NumberValue(f), nil
}

func fromValue(v internal.Value) any {
	if n, ok := v.Number(); ok {
		return n
	}
	if s, ok := v.Text(); ok {
		return s
	}
	return nil
}

func toDataset(samples []Sample) (internal.Dataset, error) {
	ds := make(internal.Dataset, 0, len(samples))
	for i, s := range samples {
		label, err := toValue(s.Label)
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}
		ds = append(ds, internal.NewFeatureVector(s.Features, label))
	}
	return ds, nil
}

func toSample(fv internal.FeatureVector) Sample {
	return Sample{Features: fv.Features, Label: fromValue(fv.Label)}
}
