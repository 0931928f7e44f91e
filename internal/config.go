package internal

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

const DefaultK = 3

type DatasetConfig struct {
	Header bool   `yaml:"header"`
	Comma  string `yaml:"comma,omitempty"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type HistoryConfig struct {
	Enabled bool `yaml:"enabled"`
}

type S3Config struct {
	Endpoint  string `yaml:"endpoint,omitempty"`
	AccessKey string `yaml:"access_key,omitempty"`
	SecretKey string `yaml:"secret_key,omitempty"`
	UseSSL    bool   `yaml:"use_ssl"`
	Region    string `yaml:"region,omitempty"`
}

type Config struct {
	K        int           `yaml:"k"`
	Training string        `yaml:"training,omitempty"`
	Test     string        `yaml:"test,omitempty"`
	Dataset  DatasetConfig `yaml:"dataset"`
	Log      LogConfig     `yaml:"log"`
	History  HistoryConfig `yaml:"history"`
	S3       S3Config      `yaml:"s3,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		K:       DefaultK,
		Dataset: DatasetConfig{Comma: ","},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		History: HistoryConfig{Enabled: true},
	}
}

func LoadConfig(scope Scope) (*Config, error) {
	path := scope.ConfigPath()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}

func SaveConfig(scope Scope, cfg *Config) error {
	path := scope.ConfigPath()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

// ApplyEnv overrides config values with KNN_K, KNN_TRAINING and KNN_TEST.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("KNN_K"); v != "" {
		k, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("KNN_K: %w", ErrInvalidK)
		}
		c.K = k
	}
	if v := os.Getenv("KNN_TRAINING"); v != "" {
		c.Training = v
	}
	if v := os.Getenv("KNN_TEST"); v != "" {
		c.Test = v
	}
	return nil
}

func (c *Config) Validate() error {
	if c.K <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidK, c.K)
	}
	if len([]rune(c.Dataset.Comma)) > 1 {
		return fmt.Errorf("dataset comma must be a single character, got %q", c.Dataset.Comma)
	}
	return nil
}

// Get returns the string form of a settable key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "k":
		return strconv.Itoa(c.K), nil
	case "training":
		return c.Training, nil
	case "test":
		return c.Test, nil
	default:
		return "", fmt.Errorf("unknown config key %q", key)
	}
}

// Set updates a settable key; k is re-validated.
func (c *Config) Set(key, value string) error {
	switch key {
	case "k":
		k, err := ParseK(value)
		if err != nil {
			return err
		}
		c.K = k
	case "training":
		c.Training = value
	case "test":
		c.Test = value
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}

func (c *Config) ReadOptions() ReadOptions {
	opts := ReadOptions{Header: c.Dataset.Header, Comma: ','}
	if r := []rune(c.Dataset.Comma); len(r) == 1 {
		opts.Comma = r[0]
	}
	return opts
}
