package main

import (
	"fmt"

	"github.com/4thel00z/knn/internal"
	"github.com/spf13/cobra"
)

func NewEvaluateCmd(evaluateUC *internal.EvaluateUseCase) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Classify the test set and report accuracy",
		Long: `Classify every instance of the test set against the training set and
compare each prediction with the instance's own label.`,
		Args: cobra.NoArgs,
		RunE: makeEvaluateRunner(evaluateUC),
	}

	cmd.Flags().String("training", "", "Training set (defaults to config)")
	cmd.Flags().String("test", "", "Test set (defaults to config)")
	cmd.Flags().IntP("k", "k", 0, "Number of neighbors (defaults to config)")
	cmd.Flags().Bool("record", false, "Record the run in the history")
	return cmd
}

type evaluateJSON struct {
	K        int    `json:"k"`
	Training string `json:"training"`
	Test     string `json:"test"`
	RunID    string `json:"run_id,omitempty"`
	*internal.EvaluationResult
}

func makeEvaluateRunner(evaluateUC *internal.EvaluateUseCase) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		training, _ := cmd.Flags().GetString("training")
		test, _ := cmd.Flags().GetString("test")
		k, _ := cmd.Flags().GetInt("k")
		scopeHint, _ := cmd.Flags().GetString("scope")
		asJSON, _ := cmd.Flags().GetBool("json")

		input := internal.EvaluateInput{
			Training: training,
			Test:     test,
			K:        k,
			Scope:    scopeHint,
		}
		if cmd.Flags().Changed("record") {
			record, _ := cmd.Flags().GetBool("record")
			input.Record = &record
		}
		if cmd.Flags().Changed("k") && k <= 0 {
			return fmt.Errorf("%w: got %d", internal.ErrInvalidK, k)
		}

		out, err := evaluateUC.Execute(cmd.Context(), input)
		if err != nil {
			return err
		}

		if asJSON {
			res := evaluateJSON{
				K:                out.K,
				Training:         out.Training,
				Test:             out.Test,
				EvaluationResult: out.Result,
			}
			if out.Run != nil {
				res.RunID = out.Run.RunID
			}
			return writeJSON(cmd, res)
		}

		printPredictions(cmd.OutOrStdout(), out.Result)
		if out.Run != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded run %s\n", out.Run.RunID)
		}
		return nil
	}
}
