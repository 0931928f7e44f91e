package internal

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/emirpasic/gods/maps/linkedhashmap"
)

// NearestNeighbors ranks every training vector by its distance to query and
// returns the first min(k, len(training)) of them. Equal distances are
// ordered by label.
func NearestNeighbors(training Dataset, query FeatureVector, k int) ([]NeighborResult, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidK, k)
	}

	results := make([]NeighborResult, 0, len(training))
	for i, t := range training {
		d, err := Distance(query, t)
		if err != nil {
			return nil, fmt.Errorf("training row %d: %w", i+1, err)
		}
		results = append(results, NeighborResult{Distance: d, Label: t.Label})
	}

	slices.SortStableFunc(results, func(a, b NeighborResult) int {
		if c := cmp.Compare(a.Distance, b.Distance); c != 0 {
			return c
		}
		return a.Label.Compare(b.Label)
	})

	if k < len(results) {
		results = results[:k]
	}
	return results, nil
}

// FindNearestNeighbors returns the labels of the k nearest training vectors,
// nearest first.
func FindNearestNeighbors(training Dataset, query FeatureVector, k int) ([]Value, error) {
	neighbors, err := NearestNeighbors(training, query, k)
	if err != nil {
		return nil, err
	}

	labels := make([]Value, len(neighbors))
	for i, n := range neighbors {
		labels[i] = n.Label
	}
	return labels, nil
}

// VoteTally counts label occurrences and remembers the order in which labels
// were first seen.
type VoteTally struct {
	counts *linkedhashmap.Map
}

type vote struct {
	label Value
	n     int
}

func NewVoteTally() *VoteTally {
	return &VoteTally{counts: linkedhashmap.New()}
}

func (t *VoteTally) Add(label Value) {
	k := label.key()
	if v, ok := t.counts.Get(k); ok {
		v.(*vote).n++
		return
	}
	t.counts.Put(k, &vote{label: label, n: 1})
}

func (t *VoteTally) Count(label Value) int {
	if v, ok := t.counts.Get(label.key()); ok {
		return v.(*vote).n
	}
	return 0
}

func (t *VoteTally) Len() int { return t.counts.Size() }

// Winner returns the label with the highest count. On a tie the label seen
// first wins.
func (t *VoteTally) Winner() (Value, int, bool) {
	var best *vote
	it := t.counts.Iterator()
	for it.Next() {
		v := it.Value().(*vote)
		if best == nil || v.n > best.n {
			best = v
		}
	}
	if best == nil {
		return Value{}, 0, false
	}
	return best.label, best.n, true
}

// PredictClass returns the majority label among neighborLabels.
func PredictClass(neighborLabels []Value) (Value, error) {
	if len(neighborLabels) == 0 {
		return Value{}, ErrEmptyNeighborSet
	}

	tally := NewVoteTally()
	for _, l := range neighborLabels {
		tally.Add(l)
	}

	winner, _, _ := tally.Winner()
	return winner, nil
}

// Predict classifies query by majority vote among its k nearest neighbors.
func Predict(training Dataset, query FeatureVector, k int) (Value, error) {
	labels, err := FindNearestNeighbors(training, query, k)
	if err != nil {
		return Value{}, err
	}
	return PredictClass(labels)
}

// Evaluate predicts every instance of test against training and compares the
// prediction with the instance's own label.
func Evaluate(training, test Dataset, k int) (*EvaluationResult, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidK, k)
	}
	if len(test) == 0 {
		return nil, ErrEmptyTestSet
	}

	result := &EvaluationResult{
		Total:       len(test),
		Predictions: make([]Prediction, 0, len(test)),
	}

	for i, fv := range test {
		predicted, err := Predict(training, fv, k)
		if err != nil {
			return nil, fmt.Errorf("test row %d: %w", i+1, err)
		}

		correct := fv.HasLabel() && predicted.Equal(fv.Label)
		if correct {
			result.Correct++
		}

		result.Predictions = append(result.Predictions, Prediction{
			Vector:    fv,
			Actual:    fv.Label,
			Predicted: predicted,
			Correct:   correct,
		})
	}

	result.Accuracy = 100 * float64(result.Correct) / float64(result.Total)
	return result, nil
}
