package v1

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/4thel00z/knn/internal"
)

// Client classifies observations against an in-memory training set. It is
// safe for concurrent use.
type Client struct {
	mu      sync.RWMutex
	session *internal.Session
	logger  *internal.Logger
}

// New creates a new Client with the given options.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		k: internal.DefaultK,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	logger := internal.NoopLogger()
	if cfg.logger != nil {
		logger = &internal.Logger{Logger: cfg.logger}
	}

	training, err := loadTraining(cfg, logger)
	if err != nil {
		return nil, err
	}
	if len(training) == 0 {
		return nil, ErrNoTraining
	}

	session, err := internal.NewSession(cfg.k, training, nil)
	if err != nil {
		return nil, err
	}

	return &Client{
		session: session,
		logger:  logger,
	}, nil
}

func loadTraining(cfg *clientConfig, logger *internal.Logger) (internal.Dataset, error) {
	if cfg.trainingFile == "" {
		return toDataset(cfg.training)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}
	loader := internal.NewLoader(internal.NewOSSource(cwd), internal.DefaultConfig().ReadOptions(), logger)

	training, err := loader.LoadRole(context.Background(), "training", cfg.trainingFile)
	if err != nil {
		return nil, fmt.Errorf("load training set: %w", err)
	}
	return training, nil
}

// K returns the current number of voting neighbors.
func (c *Client) K() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session.K()
}

// SetK changes the number of voting neighbors. An invalid k is rejected and
// leaves the client unchanged.
func (c *Client) SetK(k int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.SetK(k)
}

// Predict returns the majority label among the k nearest training samples.
func (c *Client) Predict(ctx context.Context, features []float64) (any, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	label, err := c.session.Classify(internal.NewFeatureVector(features, internal.Value{}))
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}
	c.logger.DebugContext(ctx, "predicted", "label", label.String())
	return fromValue(label), nil
}

// Neighbors returns the k nearest training samples, closest first.
func (c *Client) Neighbors(ctx context.Context, features []float64) ([]Neighbor, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	found, err := c.session.Neighbors(internal.NewFeatureVector(features, internal.Value{}))
	if err != nil {
		return nil, fmt.Errorf("neighbors: %w", err)
	}

	neighbors := make([]Neighbor, 0, len(found))
	for _, n := range found {
		neighbors = append(neighbors, Neighbor{Distance: n.Distance, Label: fromValue(n.Label)})
	}
	return neighbors, nil
}

// Evaluate predicts every test sample and compares it with its label.
func (c *Client) Evaluate(ctx context.Context, test []Sample) (*Evaluation, error) {
	ds, err := toDataset(test)
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	k := c.session.K()
	result, err := internal.Evaluate(c.session.Training(), ds, k)
	c.mu.RUnlock()

	c.logger.LogEvaluate(ctx, k, result, err)
	if err != nil {
		return nil, fmt.Errorf("evaluate: %w", err)
	}

	eval := &Evaluation{
		Accuracy:    result.Accuracy,
		Correct:     result.Correct,
		Total:       result.Total,
		Predictions: make([]Prediction, 0, len(result.Predictions)),
	}
	for _, p := range result.Predictions {
		eval.Predictions = append(eval.Predictions, Prediction{
			Sample:    toSample(p.Vector),
			Predicted: fromValue(p.Predicted),
			Correct:   p.Correct,
		})
	}
	return eval, nil
}

// Close releases any resources held by the client.
func (c *Client) Close() error {
	return nil
}
