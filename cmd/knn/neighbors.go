package main

import (
	"github.com/4thel00z/knn/internal"
	"github.com/spf13/cobra"
)

func NewNeighborsCmd(classifyUC *internal.ClassifyUseCase) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "neighbors <fields>",
		Short: "List the k nearest training instances",
		Long:  `Print rank, squared distance and label of the k nearest training instances.`,
		Args:  cobra.MinimumNArgs(1),
		RunE:  makeNeighborsRunner(classifyUC),
	}

	cmd.Flags().String("training", "", "Training set (defaults to config)")
	cmd.Flags().IntP("k", "k", 0, "Number of neighbors (defaults to config)")
	return cmd
}

func makeNeighborsRunner(classifyUC *internal.ClassifyUseCase) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		out, err := runClassify(cmd, classifyUC, args)
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return writeJSON(cmd, out.Neighbors)
		}

		printNeighbors(cmd.OutOrStdout(), out.Neighbors)
		return nil
	}
}
