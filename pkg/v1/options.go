package v1

import "log/slog"

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	k            int
	training     []Sample
	trainingFile string
	logger       *slog.Logger
}

// WithK sets the number of neighbors that vote. Defaults to 3.
func WithK(k int) Option {
	return func(c *clientConfig) {
		c.k = k
	}
}

// WithTraining sets the labeled training samples.
func WithTraining(samples []Sample) Option {
	return func(c *clientConfig) {
		c.training = samples
	}
}

// WithTrainingFile loads the training samples from a local CSV file,
// optionally gzip, zstd or lz4 compressed.
func WithTrainingFile(path string) Option {
	return func(c *clientConfig) {
		c.trainingFile = path
	}
}

// WithLogger sets the logger used for loading and evaluation.
func WithLogger(logger *slog.Logger) Option {
	return func(c *clientConfig) {
		c.logger = logger
	}
}
