package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/4thel00z/knn/internal"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

func NewWatchCmd(evaluateUC *internal.EvaluateUseCase) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-evaluate when the datasets change",
		Long: `Watch the training and test files and re-run the evaluation after each
change, printing the accuracy.`,
		Args: cobra.NoArgs,
		RunE: makeWatchRunner(evaluateUC),
	}

	cmd.Flags().String("training", "", "Training set (defaults to config)")
	cmd.Flags().String("test", "", "Test set (defaults to config)")
	cmd.Flags().IntP("k", "k", 0, "Number of neighbors (defaults to config)")
	cmd.Flags().Duration("debounce", 500*time.Millisecond, "Debounce window for batching changes")
	return cmd
}

func makeWatchRunner(evaluateUC *internal.EvaluateUseCase) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		training, _ := cmd.Flags().GetString("training")
		test, _ := cmd.Flags().GetString("test")
		k, _ := cmd.Flags().GetInt("k")
		scopeHint, _ := cmd.Flags().GetString("scope")
		debounce, _ := cmd.Flags().GetDuration("debounce")

		noRecord := false
		input := internal.EvaluateInput{
			Training: training,
			Test:     test,
			K:        k,
			Record:   &noRecord,
			Scope:    scopeHint,
		}

		training, test, err := evaluateUC.Datasets(input)
		if err != nil {
			return err
		}
		targets, err := watchTargets(training, test)
		if err != nil {
			return err
		}

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("create watcher: %w", err)
		}
		defer watcher.Close()

		// Editors replace files by rename, so watch the parent directories.
		for dir := range watchDirs(targets) {
			if err := watcher.Add(dir); err != nil {
				return fmt.Errorf("watch %s: %w", dir, err)
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Watching %s and %s for changes...\n", training, test)
		reportAccuracy(cmd, evaluateUC, input)

		timer := time.NewTimer(0)
		if !timer.Stop() {
			<-timer.C
		}
		pending := false

		for {
			select {
			case <-cmd.Context().Done():
				return nil
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if shouldIgnoreEvent(event, targets) {
					continue
				}
				if !pending {
					timer.Reset(debounce)
					pending = true
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "watch error: %v\n", err)
			case <-timer.C:
				pending = false
				reportAccuracy(cmd, evaluateUC, input)
			}
		}
	}
}

func reportAccuracy(cmd *cobra.Command, evaluateUC *internal.EvaluateUseCase, input internal.EvaluateInput) {
	out, err := evaluateUC.Execute(cmd.Context(), input)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "evaluate: %v\n", err)
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "[%s] k=%d accuracy=%.2f%% (%d/%d)\n",
		time.Now().Format(time.TimeOnly), out.K, out.Result.Accuracy, out.Result.Correct, out.Result.Total)
}

// watchTargets returns the absolute paths of local dataset files.
func watchTargets(uris ...string) (map[string]bool, error) {
	targets := make(map[string]bool, len(uris))
	for _, uri := range uris {
		path, ok := internal.LocalPath(uri)
		if !ok {
			return nil, fmt.Errorf("%w: cannot watch %s", internal.ErrUnsupportedSource, uri)
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", uri, err)
		}
		targets[abs] = true
	}
	return targets, nil
}

func watchDirs(targets map[string]bool) map[string]bool {
	dirs := make(map[string]bool, len(targets))
	for path := range targets {
		dirs[filepath.Dir(path)] = true
	}
	return dirs
}

func shouldIgnoreEvent(event fsnotify.Event, targets map[string]bool) bool {
	if !targets[filepath.Clean(event.Name)] {
		return true
	}

	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return true
	}

	return false
}
