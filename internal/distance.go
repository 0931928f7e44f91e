package internal

import "fmt"

// Distance returns the squared Euclidean distance between the numeric
// features of a and b. Labels are ignored. The square root is omitted since
// it does not change the ranking of neighbors.
func Distance(a, b FeatureVector) (float64, error) {
	if a.Arity() != b.Arity() {
		return 0, fmt.Errorf("%w: expected %d, got %d", ErrDimensionMismatch, a.Arity(), b.Arity())
	}
	return squaredL2(a.Features, b.Features), nil
}

func squaredL2(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
