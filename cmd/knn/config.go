package main

import (
	"fmt"
	"os"

	"github.com/4thel00z/knn/internal"
	"github.com/spf13/cobra"
)

func NewConfigCmd(resolver *internal.ScopeResolver) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Read or update the project config",
		Long:  `Read or update the settable config keys: k, training and test.`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:       "get <key>",
			Short:     "Print a config value",
			Args:      cobra.ExactArgs(1),
			ValidArgs: []string{"k", "training", "test"},
			RunE:      makeConfigGetRunner(resolver),
		},
		&cobra.Command{
			Use:       "set <key> <value>",
			Short:     "Update a config value",
			Args:      cobra.ExactArgs(2),
			ValidArgs: []string{"k", "training", "test"},
			RunE:      makeConfigSetRunner(resolver),
		},
	)
	return cmd
}

func makeConfigGetRunner(resolver *internal.ScopeResolver) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		scopeHint, _ := cmd.Flags().GetString("scope")

		cfg, err := internal.LoadConfig(resolver.Resolve(scopeHint))
		if err != nil {
			return err
		}

		value, err := cfg.Get(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), value)
		return nil
	}
}

func makeConfigSetRunner(resolver *internal.ScopeResolver) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		scopeHint, _ := cmd.Flags().GetString("scope")
		scope := resolver.Resolve(scopeHint)

		if _, err := os.Stat(scope.StatePath); os.IsNotExist(err) {
			return fmt.Errorf("not initialized: %s (run knn init)", scope.StatePath)
		}

		cfg, err := internal.LoadConfig(scope)
		if err != nil {
			return err
		}
		if err := cfg.Set(args[0], args[1]); err != nil {
			return err
		}
		if err := internal.SaveConfig(scope, cfg); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", args[0], args[1])
		return nil
	}
}
