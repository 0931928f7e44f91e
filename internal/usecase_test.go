package internal

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	trainingCSV = "1,1,X\n2,2,X\n8,8,Y\n9,9,Y\n"
	testCSV     = "1.5,1.5,X\n8.5,8.5,X\n"
)

func setupUseCaseTest(t *testing.T) (Scope, *ScopeResolver) {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("KNN_K", "")
	t.Setenv("KNN_TRAINING", "")
	t.Setenv("KNN_TEST", "")

	scope := NewProjectScope(dir)
	require.NoError(t, os.MkdirAll(scope.StatePath, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "train.csv"), []byte(trainingCSV), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "test.csv"), []byte(testCSV), 0644))

	cfg := DefaultConfig()
	cfg.Training = "train.csv"
	cfg.Test = "test.csv"
	require.NoError(t, SaveConfig(scope, cfg))

	return scope, &ScopeResolver{homeDir: t.TempDir()}
}

func boolPtr(b bool) *bool { return &b }

func TestEvaluateUseCaseFromConfig(t *testing.T) {
	_, resolver := setupUseCaseTest(t)
	uc := NewEvaluateUseCase(resolver, DefaultLoaderFor(nil), DefaultHistoryFor, nil)

	out, err := uc.Execute(context.Background(), EvaluateInput{K: 1})
	require.NoError(t, err)

	assert.Equal(t, 1, out.K)
	assert.Equal(t, 2, out.Result.Total)
	assert.Equal(t, 1, out.Result.Correct)
	assert.InDelta(t, 50.0, out.Result.Accuracy, 1e-9)
	// history was never initialized, so the run is silently not recorded
	assert.Nil(t, out.Run)
}

func TestEvaluateUseCaseRecordsRun(t *testing.T) {
	scope, resolver := setupUseCaseTest(t)
	require.NoError(t, InitHistory(scope))

	uc := NewEvaluateUseCase(resolver, DefaultLoaderFor(nil), DefaultHistoryFor, nil)
	out, err := uc.Execute(context.Background(), EvaluateInput{K: 3})
	require.NoError(t, err)
	require.NotNil(t, out.Run)
	assert.NotEmpty(t, out.Run.RunID)

	list := NewHistoryUseCase(resolver, DefaultHistoryFor)
	runs, err := list.Execute(context.Background(), HistoryInput{Limit: 10})
	require.NoError(t, err)
	require.Len(t, runs.Runs, 1)
	assert.Equal(t, out.Run.RunID, runs.Runs[0].RunID)

	show := NewShowRunUseCase(resolver, DefaultHistoryFor)
	report, err := show.Execute(context.Background(), ShowRunInput{Ref: out.Run.RunID[:8]})
	require.NoError(t, err)
	assert.Equal(t, 3, report.K)
	assert.Equal(t, out.Result.Correct, report.Correct)
}

func TestEvaluateUseCaseRecordRequiresHistory(t *testing.T) {
	_, resolver := setupUseCaseTest(t)
	uc := NewEvaluateUseCase(resolver, DefaultLoaderFor(nil), DefaultHistoryFor, nil)

	_, err := uc.Execute(context.Background(), EvaluateInput{Record: boolPtr(true)})
	assert.ErrorIs(t, err, ErrNoHistory)
}

func TestEvaluateUseCaseNoRecord(t *testing.T) {
	scope, resolver := setupUseCaseTest(t)
	require.NoError(t, InitHistory(scope))

	uc := NewEvaluateUseCase(resolver, DefaultLoaderFor(nil), DefaultHistoryFor, nil)
	out, err := uc.Execute(context.Background(), EvaluateInput{Record: boolPtr(false)})
	require.NoError(t, err)
	assert.Nil(t, out.Run)
}

func TestEvaluateUseCaseExplicitPaths(t *testing.T) {
	_, resolver := setupUseCaseTest(t)
	require.NoError(t, os.WriteFile("other.csv", []byte("8,8,Y\n"), 0644))

	uc := NewEvaluateUseCase(resolver, DefaultLoaderFor(nil), nil, nil)
	out, err := uc.Execute(context.Background(), EvaluateInput{Test: "other.csv", K: 1})
	require.NoError(t, err)
	assert.Equal(t, "other.csv", out.Test)
	assert.Equal(t, 1, out.Result.Correct)
	assert.InDelta(t, 100.0, out.Result.Accuracy, 1e-9)
}

func TestEvaluateUseCaseMissingDataset(t *testing.T) {
	_, resolver := setupUseCaseTest(t)
	uc := NewEvaluateUseCase(resolver, DefaultLoaderFor(nil), nil, nil)

	_, err := uc.Execute(context.Background(), EvaluateInput{Training: "missing.csv"})
	assert.ErrorIs(t, err, ErrDatasetNotFound)
}

func TestEvaluateUseCaseEnvK(t *testing.T) {
	_, resolver := setupUseCaseTest(t)
	t.Setenv("KNN_K", "0")

	uc := NewEvaluateUseCase(resolver, DefaultLoaderFor(nil), nil, nil)
	_, err := uc.Execute(context.Background(), EvaluateInput{})
	assert.ErrorIs(t, err, ErrInvalidK)
}

func TestClassifyUseCase(t *testing.T) {
	_, resolver := setupUseCaseTest(t)
	uc := NewClassifyUseCase(resolver, DefaultLoaderFor(nil), nil)

	out, err := uc.Execute(context.Background(), ClassifyInput{Query: "8.5, 8.5", K: 3})
	require.NoError(t, err)

	assert.Equal(t, TextValue("Y"), out.Label)
	require.Len(t, out.Neighbors, 3)
	assert.InDelta(t, 0.5, out.Neighbors[0].Distance, 1e-9)
	assert.False(t, out.Query.HasLabel())
}

func TestClassifyUseCaseBadQuery(t *testing.T) {
	_, resolver := setupUseCaseTest(t)
	uc := NewClassifyUseCase(resolver, DefaultLoaderFor(nil), nil)

	_, err := uc.Execute(context.Background(), ClassifyInput{Query: "1,2,3"})
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	_, err = uc.Execute(context.Background(), ClassifyInput{Query: "a,b"})
	assert.ErrorIs(t, err, ErrNonNumericFeature)
}

func TestLoadSessionUseCase(t *testing.T) {
	_, resolver := setupUseCaseTest(t)
	uc := NewLoadSessionUseCase(resolver, DefaultLoaderFor(nil))

	out, err := uc.Execute(context.Background(), LoadSessionInput{})
	require.NoError(t, err)
	assert.Equal(t, DefaultK, out.Session.K())
	assert.Len(t, out.Session.Training(), 4)
	assert.Len(t, out.Session.Test(), 2)
}

func TestHistoryUseCaseWithoutHistory(t *testing.T) {
	_, resolver := setupUseCaseTest(t)
	uc := NewHistoryUseCase(resolver, DefaultHistoryFor)

	_, err := uc.Execute(context.Background(), HistoryInput{})
	assert.ErrorIs(t, err, ErrNoHistory)
}
