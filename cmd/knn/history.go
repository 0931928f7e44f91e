package main

import (
	"fmt"

	"github.com/4thel00z/knn/internal"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func NewHistoryCmd(historyUC *internal.HistoryUseCase, showUC *internal.ShowRunUseCase) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded evaluation runs",
		Long:  `List the evaluation runs recorded in the run history, newest first.`,
		Args:  cobra.NoArgs,
		RunE:  makeHistoryRunner(historyUC),
	}

	cmd.Flags().IntP("number", "n", 10, "Limit number of runs (0 for all)")
	cmd.AddCommand(newHistoryShowCmd(showUC))
	return cmd
}

func makeHistoryRunner(historyUC *internal.HistoryUseCase) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		limit, _ := cmd.Flags().GetInt("number")
		scopeHint, _ := cmd.Flags().GetString("scope")
		asJSON, _ := cmd.Flags().GetBool("json")

		out, err := historyUC.Execute(cmd.Context(), internal.HistoryInput{
			Limit: limit, Scope: scopeHint,
		})
		if err != nil {
			return err
		}

		if asJSON {
			runs := out.Runs
			if runs == nil {
				runs = []*internal.Commit{}
			}
			return writeJSON(cmd, runs)
		}

		if len(out.Runs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded.")
			return nil
		}
		for _, c := range out.Runs {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s  %s\n",
				c.Hash[:7], shortID(c.RunID), c.Timestamp.Format("2006-01-02 15:04:05"), c.Subject())
		}
		return nil
	}
}

func newHistoryShowCmd(showUC *internal.ShowRunUseCase) *cobra.Command {
	return &cobra.Command{
		Use:   "show <ref>",
		Short: "Show the report of a recorded run",
		Long:  `Show a recorded run by commit revision or run ID prefix.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scopeHint, _ := cmd.Flags().GetString("scope")
			asJSON, _ := cmd.Flags().GetBool("json")

			report, err := showUC.Execute(cmd.Context(), internal.ShowRunInput{
				Ref: args[0], Scope: scopeHint,
			})
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, report)
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(report); err != nil {
				return fmt.Errorf("encode report: %w", err)
			}
			return enc.Close()
		},
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
