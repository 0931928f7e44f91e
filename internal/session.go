package internal

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseK parses a user-supplied neighbor count and rejects anything that is
// not a positive integer.
func ParseK(s string) (int, error) {
	k, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidK, s)
	}
	if k <= 0 {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidK, k)
	}
	return k, nil
}

// Session holds the state of one classification session: the neighbor count
// and the loaded datasets. Datasets are read-only once loaded.
type Session struct {
	k        int
	training Dataset
	test     Dataset
	arity    int
}

func NewSession(k int, training, test Dataset) (*Session, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidK, k)
	}

	arity, err := training.Arity()
	if err != nil {
		return nil, fmt.Errorf("training set: %w", err)
	}

	return &Session{
		k:        k,
		training: training,
		test:     test,
		arity:    arity,
	}, nil
}

func (s *Session) K() int { return s.k }

func (s *Session) Training() Dataset { return s.training }

func (s *Session) Test() Dataset { return s.test }

// SetK changes k. An invalid k leaves the session unchanged.
func (s *Session) SetK(k int) error {
	if k <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidK, k)
	}
	s.k = k
	return nil
}

func (s *Session) SetKFromString(v string) error {
	k, err := ParseK(v)
	if err != nil {
		return err
	}
	s.k = k
	return nil
}

// ParseQuery parses a free-text observation against the training arity.
func (s *Session) ParseQuery(line string) (FeatureVector, error) {
	return ParseQuery(line, s.arity)
}

func (s *Session) Evaluate() (*EvaluationResult, error) {
	return Evaluate(s.training, s.test, s.k)
}

func (s *Session) Classify(query FeatureVector) (Value, error) {
	return Predict(s.training, query, s.k)
}

func (s *Session) Neighbors(query FeatureVector) ([]NeighborResult, error) {
	return NearestNeighbors(s.training, query, s.k)
}
