package internal

import (
	"errors"
	"os"
	"testing"
)

func setupConfigScope(t *testing.T) Scope {
	t.Helper()
	scope := NewProjectScope(t.TempDir())
	if err := os.MkdirAll(scope.StatePath, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	return scope
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.K != DefaultK {
		t.Errorf("expected k %d, got %d", DefaultK, cfg.K)
	}
	if cfg.Dataset.Comma != "," {
		t.Errorf("expected comma ',', got %q", cfg.Dataset.Comma)
	}
	if !cfg.History.Enabled {
		t.Error("expected history to be enabled")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestConfigSaveAndLoad(t *testing.T) {
	scope := setupConfigScope(t)

	cfg := DefaultConfig()
	cfg.K = 7
	cfg.Training = "train.csv.gz"
	cfg.Test = "s3://datasets/iris/test.csv"
	cfg.S3.Endpoint = "localhost:9000"

	if err := SaveConfig(scope, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := LoadConfig(scope)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if loaded.K != 7 {
		t.Errorf("k = %d, want 7", loaded.K)
	}
	if loaded.Training != "train.csv.gz" {
		t.Errorf("training = %q", loaded.Training)
	}
	if loaded.Test != "s3://datasets/iris/test.csv" {
		t.Errorf("test = %q", loaded.Test)
	}
	if loaded.S3.Endpoint != "localhost:9000" {
		t.Errorf("s3 endpoint = %q", loaded.S3.Endpoint)
	}
}

func TestLoadConfigMissing(t *testing.T) {
	scope := setupConfigScope(t)

	cfg, err := LoadConfig(scope)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.K != DefaultK {
		t.Errorf("expected default k, got %d", cfg.K)
	}
}

func TestLoadConfigPartialKeepsDefaults(t *testing.T) {
	scope := setupConfigScope(t)
	if err := os.WriteFile(scope.ConfigPath(), []byte("k: 5\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(scope)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.K != 5 {
		t.Errorf("k = %d", cfg.K)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	scope := setupConfigScope(t)
	if err := os.WriteFile(scope.ConfigPath(), []byte("k: [oops"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadConfig(scope); err == nil {
		t.Error("expected parse error")
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.K = 0
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidK) {
		t.Errorf("expected ErrInvalidK, got %v", err)
	}

	cfg = DefaultConfig()
	cfg.Dataset.Comma = ";;"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for multi-character comma")
	}
}

func TestConfigApplyEnv(t *testing.T) {
	t.Setenv("KNN_K", "9")
	t.Setenv("KNN_TRAINING", "a.csv")
	t.Setenv("KNN_TEST", "b.csv")

	cfg := DefaultConfig()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("apply env: %v", err)
	}
	if cfg.K != 9 || cfg.Training != "a.csv" || cfg.Test != "b.csv" {
		t.Errorf("unexpected config %+v", cfg)
	}

	t.Setenv("KNN_K", "many")
	if err := DefaultConfig().ApplyEnv(); !errors.Is(err, ErrInvalidK) {
		t.Errorf("expected ErrInvalidK, got %v", err)
	}
}

func TestConfigGetSet(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Set("k", "11"); err != nil {
		t.Fatalf("set k: %v", err)
	}
	if v, _ := cfg.Get("k"); v != "11" {
		t.Errorf("k = %q", v)
	}

	if err := cfg.Set("k", "-2"); !errors.Is(err, ErrInvalidK) {
		t.Errorf("expected ErrInvalidK, got %v", err)
	}
	if cfg.K != 11 {
		t.Errorf("invalid k must not change config, got %d", cfg.K)
	}

	if err := cfg.Set("training", "t.csv"); err != nil {
		t.Fatal(err)
	}
	if v, _ := cfg.Get("training"); v != "t.csv" {
		t.Errorf("training = %q", v)
	}

	if err := cfg.Set("colour", "red"); err == nil {
		t.Error("expected error for unknown key")
	}
	if _, err := cfg.Get("colour"); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestConfigReadOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Dataset.Header = true
	cfg.Dataset.Comma = ";"

	opts := cfg.ReadOptions()
	if !opts.Header || opts.Comma != ';' {
		t.Errorf("unexpected read options %+v", opts)
	}
}
