package main

import (
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/4thel00z/knn/internal"
)

func writeFile(t *testing.T, name, content string) {
	t.Helper()
	if err := os.WriteFile(name, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestJoinFields(t *testing.T) {
	tests := map[string][]string{
		"1.5,2":   {"1.5,2"},
		"1.5,2,3": {"1.5", "2", "3"},
		"1,2":     {"1,", "2"},
		"4,5,Y":   {" 4 , 5 ", "Y"},
	}
	for want, args := range tests {
		if got := joinFields(args); got != want {
			t.Errorf("joinFields(%q) = %q, want %q", args, got, want)
		}
	}
}

func TestClassifyCmd(t *testing.T) {
	setupProject(t)

	out, err := runRoot(t, newTestApp(), "classify", "8.5,", "8.5")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if strings.TrimSpace(out) != "8.5,8.5 => Y" {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestClassifyCmdK1(t *testing.T) {
	setupProject(t)

	out, err := runRoot(t, newTestApp(), "classify", "1.5,1.5", "-k", "1")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out, "=> X") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestClassifyCmdJSON(t *testing.T) {
	setupProject(t)

	out, err := runRoot(t, newTestApp(), "classify", "8.5,8.5", "--json")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	var res struct {
		K         int       `json:"k"`
		Query     []float64 `json:"query"`
		Label     string    `json:"label"`
		Neighbors []struct {
			Distance float64 `json:"distance"`
			Label    string  `json:"label"`
		} `json:"neighbors"`
	}
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, out)
	}
	if res.Label != "Y" || res.K != 3 || len(res.Neighbors) != 3 {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestClassifyCmdDimensionMismatch(t *testing.T) {
	setupProject(t)

	_, err := runRoot(t, newTestApp(), "classify", "1,2,3,4")
	if !errors.Is(err, internal.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}
