package internal

import (
	"context"
	"errors"
	"os"
	"testing"
)

func setupHistory(t *testing.T) (*History, Scope) {
	t.Helper()
	scope := NewProjectScope(t.TempDir())

	if err := InitHistory(scope); err != nil {
		t.Fatalf("init history: %v", err)
	}

	h, err := OpenHistory(scope)
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	return h, scope
}

func sampleResult() *EvaluationResult {
	return &EvaluationResult{
		Accuracy: 50,
		Correct:  1,
		Total:    2,
		Predictions: []Prediction{
			{Vector: labeled(TextValue("X"), 1.5, 1.5), Actual: TextValue("X"), Predicted: TextValue("X"), Correct: true},
			{Vector: labeled(NumberValue(0), 8.5, 8.5), Actual: NumberValue(0), Predicted: TextValue("Y")},
		},
	}
}

func TestOpenHistoryNotInitialized(t *testing.T) {
	scope := NewProjectScope(t.TempDir())
	if _, err := OpenHistory(scope); !errors.Is(err, ErrNoHistory) {
		t.Errorf("expected ErrNoHistory, got %v", err)
	}
}

func TestHistoryRecordAndShow(t *testing.T) {
	h, scope := setupHistory(t)
	ctx := context.Background()

	report := NewRunReport(3, "train.csv", "test.csv", sampleResult())
	commit, err := h.Record(ctx, report)
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	if commit.RunID != report.ID {
		t.Errorf("run id = %q, want %q", commit.RunID, report.ID)
	}
	if commit.Subject() != "evaluate: k=3 accuracy=50.00%" {
		t.Errorf("subject = %q", commit.Subject())
	}
	if _, err := os.Stat(scope.RunsPath() + "/" + report.ID + ".yaml"); err != nil {
		t.Errorf("report file missing: %v", err)
	}

	for _, ref := range []string{commit.Hash, report.ID, report.ID[:8], "HEAD"} {
		got, err := h.Show(ctx, ref)
		if err != nil {
			t.Fatalf("show %s: %v", ref, err)
		}
		if got.ID != report.ID || got.K != 3 || got.Accuracy != 50 {
			t.Errorf("show %s: unexpected report %+v", ref, got)
		}
		if len(got.Predictions) != 2 {
			t.Fatalf("expected 2 predictions, got %d", len(got.Predictions))
		}
		if !got.Predictions[1].Actual.Equal(NumberValue(0)) {
			t.Errorf("actual label lost its variant: %v", got.Predictions[1].Actual)
		}
		if !got.Predictions[1].Predicted.Equal(TextValue("Y")) {
			t.Errorf("predicted = %v", got.Predictions[1].Predicted)
		}
	}
}

func TestHistoryList(t *testing.T) {
	h, _ := setupHistory(t)
	ctx := context.Background()

	runs, err := h.List(ctx, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs after init, got %d", len(runs))
	}

	var ids []string
	for k := 1; k <= 3; k++ {
		report := NewRunReport(k, "a", "b", sampleResult())
		if _, err := h.Record(ctx, report); err != nil {
			t.Fatalf("record: %v", err)
		}
		ids = append(ids, report.ID)
	}

	runs, err = h.List(ctx, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}
	if runs[0].RunID != ids[2] {
		t.Errorf("newest run first: got %q, want %q", runs[0].RunID, ids[2])
	}

	limited, err := h.List(ctx, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("expected 2 runs, got %d", len(limited))
	}
}

func TestHistoryShowUnknown(t *testing.T) {
	h, _ := setupHistory(t)

	if _, err := h.Show(context.Background(), "does-not-exist"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
	if _, err := h.Show(context.Background(), "HEAD"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("init commit is not a run, got %v", err)
	}
}

func TestParseRunID(t *testing.T) {
	if got := parseRunID("evaluate: k=1\n\nRun-Id: abc"); got != "abc" {
		t.Errorf("got %q", got)
	}
	if got := parseRunID("init: initialize run history"); got != "" {
		t.Errorf("got %q", got)
	}
}
