package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/4thel00z/knn/internal"
	"github.com/c-bata/go-prompt"
	"github.com/spf13/cobra"
)

const menu = `1        classify the test set
2 <x,y>  classify one observation
3 <k>    change k
4        exit`

func NewInteractiveCmd(loadUC *internal.LoadSessionUseCase) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "interactive",
		Short: "Start an interactive classification session",
		Long: `Load the training and test sets once and run a menu loop to evaluate,
classify single observations and change k.`,
		Args: cobra.NoArgs,
		RunE: makeInteractiveRunner(loadUC),
	}

	cmd.Flags().String("training", "", "Training set (defaults to config)")
	cmd.Flags().String("test", "", "Test set (defaults to config)")
	cmd.Flags().IntP("k", "k", 0, "Initial number of neighbors (defaults to config)")
	return cmd
}

func makeInteractiveRunner(loadUC *internal.LoadSessionUseCase) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		training, _ := cmd.Flags().GetString("training")
		test, _ := cmd.Flags().GetString("test")
		k, _ := cmd.Flags().GetInt("k")
		scopeHint, _ := cmd.Flags().GetString("scope")

		out, err := loadUC.Execute(cmd.Context(), internal.LoadSessionInput{
			Training: training,
			Test:     test,
			K:        k,
			Scope:    scopeHint,
		})
		if err != nil {
			return err
		}

		sh := newShell(out.Session, cmd.OutOrStdout())
		fmt.Fprintf(sh.out, "Loaded %d training and %d test instances, k=%d.\n", len(out.Session.Training()), len(out.Session.Test()), out.Session.K())
		fmt.Fprintln(sh.out, menu)

		p := prompt.New(
			sh.execute,
			completer,
			prompt.OptionPrefix("knn> "),
			prompt.OptionPrefixTextColor(prompt.Yellow),
			prompt.OptionSuggestionTextColor(prompt.Yellow),
			prompt.OptionSuggestionBGColor(prompt.Black),
			prompt.OptionDescriptionBGColor(prompt.Black),
			prompt.OptionDescriptionTextColor(prompt.Yellow),
			prompt.OptionSetExitCheckerOnInput(func(string, bool) bool { return sh.done }),
		)
		p.Run()
		return nil
	}
}

func completer(d prompt.Document) []prompt.Suggest {
	if strings.Contains(d.TextBeforeCursor(), " ") {
		return []prompt.Suggest{}
	}
	s := []prompt.Suggest{
		{Text: "1", Description: "Classify the test set"},
		{Text: "2", Description: "2 x,y,... - Classify one observation"},
		{Text: "3", Description: "3 k - Change the number of neighbors"},
		{Text: "4", Description: "Exit"},
	}
	return prompt.FilterHasPrefix(s, d.GetWordBeforeCursor(), true)
}

// shell executes menu lines against a session.
type shell struct {
	session *internal.Session
	out     io.Writer
	done    bool
}

func newShell(session *internal.Session, out io.Writer) *shell {
	return &shell{session: session, out: out}
}

func (s *shell) execute(line string) {
	option, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	switch option {
	case "":
	case "1":
		s.evaluate()
	case "2":
		s.classify(arg)
	case "3":
		s.setK(arg)
	case "4", "exit", "quit":
		s.done = true
		fmt.Fprintln(s.out, "Bye!")
	default:
		fmt.Fprintln(s.out, "invalid option")
		fmt.Fprintln(s.out, menu)
	}
}

func (s *shell) evaluate() {
	result, err := s.session.Evaluate()
	if err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
		return
	}
	printPredictions(s.out, result)
}

func (s *shell) classify(arg string) {
	query, err := s.session.ParseQuery(joinFields(strings.Fields(arg)))
	if err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
		return
	}
	predicted, err := s.session.Classify(query)
	if err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "%s => %s\n", features(query), label(predicted))
}

func (s *shell) setK(arg string) {
	if err := s.session.SetKFromString(arg); err != nil {
		fmt.Fprintf(s.out, "error: %v (k is still %d)\n", err, s.session.K())
		return
	}
	fmt.Fprintf(s.out, "k = %d\n", s.session.K())
}
