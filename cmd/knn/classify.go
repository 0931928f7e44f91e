package main

import (
	"fmt"

	"github.com/4thel00z/knn/internal"
	"github.com/spf13/cobra"
)

func NewClassifyCmd(classifyUC *internal.ClassifyUseCase) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify <fields>",
		Short: "Classify one observation",
		Long: `Predict the label of a comma-separated observation by majority vote
among its k nearest training instances.`,
		Example: `  knn classify 5.1,3.5,1.4,0.2
  knn classify 5.1 3.5 1.4 0.2 -k 5`,
		Args: cobra.MinimumNArgs(1),
		RunE: makeClassifyRunner(classifyUC),
	}

	cmd.Flags().String("training", "", "Training set (defaults to config)")
	cmd.Flags().IntP("k", "k", 0, "Number of neighbors (defaults to config)")
	return cmd
}

func makeClassifyRunner(classifyUC *internal.ClassifyUseCase) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		out, err := runClassify(cmd, classifyUC, args)
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return writeJSON(cmd, map[string]any{
				"k":         out.K,
				"query":     out.Query.Features,
				"label":     out.Label,
				"neighbors": out.Neighbors,
			})
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s => %s\n", features(out.Query), label(out.Label))
		return nil
	}
}

func runClassify(cmd *cobra.Command, classifyUC *internal.ClassifyUseCase, args []string) (*internal.ClassifyOutput, error) {
	training, _ := cmd.Flags().GetString("training")
	k, _ := cmd.Flags().GetInt("k")
	scopeHint, _ := cmd.Flags().GetString("scope")

	if cmd.Flags().Changed("k") && k <= 0 {
		return nil, fmt.Errorf("%w: got %d", internal.ErrInvalidK, k)
	}

	return classifyUC.Execute(cmd.Context(), internal.ClassifyInput{
		Training: training,
		Query:    joinFields(args),
		K:        k,
		Scope:    scopeHint,
	})
}
