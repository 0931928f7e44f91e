package main

import (
	"fmt"

	"github.com/4thel00z/knn/internal"
	"github.com/spf13/cobra"
)

func NewRootCmd(version string, a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "knn",
		Short:         "k-nearest-neighbor classification for CSV datasets",
		Long:          `Classify observations by majority vote among their k nearest labeled neighbors.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	addPersistentFlags(rootCmd)
	setHelpWithExternals(rootCmd)

	if a != nil {
		rootCmd.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
			if f := cmd.Flags().Lookup("log-level"); f != nil && f.Changed {
				a.level.Set(internal.ParseLevel(f.Value.String()))
			}
		}
		addSubcommands(rootCmd, a)
	}

	return rootCmd
}

func addPersistentFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("scope", "", "Target scope (global|project)")
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	cmd.PersistentFlags().String("log-level", "", "Log level (debug|info|warn|error)")
}

func addSubcommands(root *cobra.Command, a *app) {
	uc := a.useCases

	root.AddCommand(
		NewInitCmd(),
		NewEvaluateCmd(uc.Evaluate),
		NewClassifyCmd(uc.Classify),
		NewNeighborsCmd(uc.Classify),
		NewInteractiveCmd(uc.LoadSession),
		NewWatchCmd(uc.Evaluate),
		NewHistoryCmd(uc.History, uc.ShowRun),
		NewConfigCmd(a.resolver),
	)
}

func setHelpWithExternals(cmd *cobra.Command) {
	defaultHelp := cmd.HelpFunc()

	cmd.SetHelpFunc(func(c *cobra.Command, args []string) {
		defaultHelp(c, args)
		printExternalCommands(c)
	})
}

func printExternalCommands(cmd *cobra.Command) {
	externals := listExternalCommands()
	if len(externals) == 0 {
		return
	}

	fmt.Fprintln(cmd.OutOrStdout(), "\nExternal commands (knn-*):")
	for _, name := range externals {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", name)
	}
}
