package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/4thel00z/knn/internal"
	"github.com/spf13/cobra"
)

// joinFields accepts an observation as one quoted argument or split across
// several arguments and returns it comma-separated.
func joinFields(args []string) string {
	var fields []string
	for _, arg := range args {
		for _, f := range strings.Split(arg, ",") {
			if f = strings.TrimSpace(f); f != "" {
				fields = append(fields, f)
			}
		}
	}
	return strings.Join(fields, ",")
}

func features(fv internal.FeatureVector) string {
	return internal.FeatureVector{Features: fv.Features}.String()
}

func label(v internal.Value) string {
	if v.IsAbsent() {
		return "-"
	}
	return v.String()
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printPredictions(w io.Writer, result *internal.EvaluationResult) {
	for _, p := range result.Predictions {
		mark := "✗"
		if p.Correct {
			mark = "✓"
		}
		fmt.Fprintf(w, "%s actual=%s predicted=%s %s\n", features(p.Vector), label(p.Actual), label(p.Predicted), mark)
	}
	fmt.Fprintf(w, "Accuracy: %.2f%%\n", result.Accuracy)
}

func printNeighbors(w io.Writer, neighbors []internal.NeighborResult) {
	for i, n := range neighbors {
		fmt.Fprintf(w, "%d\t%g\t%s\n", i+1, n.Distance, label(n.Label))
	}
}
