package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/4thel00z/knn/internal"
)

func TestConfigGetSet(t *testing.T) {
	setupProject(t)
	a := newTestApp()

	out, err := runRoot(t, a, "config", "get", "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if strings.TrimSpace(out) != "3" {
		t.Errorf("expected k=3, got %q", out)
	}

	if _, err := runRoot(t, a, "config", "set", "k", "5"); err != nil {
		t.Fatalf("set: %v", err)
	}

	out, err = runRoot(t, a, "config", "get", "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if strings.TrimSpace(out) != "5" {
		t.Errorf("expected k=5, got %q", out)
	}

	out, err = runRoot(t, a, "config", "get", "training")
	if err != nil {
		t.Fatalf("get training: %v", err)
	}
	if strings.TrimSpace(out) != "train.csv" {
		t.Errorf("unexpected training: %q", out)
	}
}

func TestConfigSetInvalidK(t *testing.T) {
	setupProject(t)
	a := newTestApp()

	_, err := runRoot(t, a, "config", "set", "k", "0")
	if !errors.Is(err, internal.ErrInvalidK) {
		t.Errorf("expected ErrInvalidK, got %v", err)
	}

	out, err := runRoot(t, a, "config", "get", "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if strings.TrimSpace(out) != "3" {
		t.Errorf("k should be unchanged, got %q", out)
	}
}

func TestConfigUnknownKey(t *testing.T) {
	setupProject(t)

	if _, err := runRoot(t, newTestApp(), "config", "get", "nope"); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestConfigSetNotInitialized(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	_, err := runRoot(t, newTestApp(), "config", "set", "k", "4")
	if err == nil || !strings.Contains(err.Error(), "not initialized") {
		t.Errorf("expected not initialized error, got %v", err)
	}
}
