package main

import (
	"fmt"
	"os"

	"github.com/4thel00z/knn/internal"
	"github.com/spf13/cobra"
)

func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a knn project",
		Long:  `Create a .knn directory with a default config and an empty run history.`,
		RunE:  runInit,
	}

	cmd.Flags().Bool("global", false, "Initialize global scope (~/.knn)")
	cmd.Flags().String("training", "", "Training set to store in the config")
	cmd.Flags().String("test", "", "Test set to store in the config")
	return cmd
}

func runInit(cmd *cobra.Command, _ []string) error {
	isGlobal, _ := cmd.Flags().GetBool("global")
	training, _ := cmd.Flags().GetString("training")
	test, _ := cmd.Flags().GetString("test")

	resolver := internal.NewScopeResolver()

	var scope internal.Scope
	if isGlobal {
		scope = resolver.Global()
	} else {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("get working directory: %w", err)
		}
		scope = internal.NewProjectScope(cwd)
	}

	if _, err := os.Stat(scope.StatePath); err == nil {
		return fmt.Errorf("already initialized at %s", scope.StatePath)
	}

	if err := internal.InitHistory(scope); err != nil {
		return fmt.Errorf("init history: %w", err)
	}

	cfg := internal.DefaultConfig()
	cfg.Training = training
	cfg.Test = test
	if err := internal.SaveConfig(scope, cfg); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Initialized knn project at %s\n", scope.StatePath)
	return nil
}
