package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	"github.com/4thel00z/knn/internal"
	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

// version is set via ldflags at build time
var version = "dev"

func main() {
	ctx := context.Background()

	app := newApp()
	rootCmd := NewRootCmd(version, app)

	if tryExternalCommand(ctx, rootCmd, app.resolver, os.Args[1:]) {
		return
	}

	if err := fang.Execute(ctx, rootCmd); err != nil {
		os.Exit(1)
	}
}

// tryExternalCommand hands `knn [--scope s] <name> args...` to a knn-<name>
// plugin when name is not a built-in command.
func tryExternalCommand(ctx context.Context, root *cobra.Command, resolver *internal.ScopeResolver, args []string) bool {
	scopeHint, args := splitScopeFlag(args)
	if len(args) == 0 {
		return false
	}

	name := args[0]
	if name == "" || name[0] == '-' || isBuiltin(root, name) {
		return false
	}

	if _, err := findExternal(name); err != nil {
		return false
	}

	if err := executeExternal(ctx, name, scopeHint, args[1:], resolver); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "knn %s: %v\n", name, err)
		os.Exit(1)
	}

	return true
}

type app struct {
	resolver *internal.ScopeResolver
	logger   *internal.Logger
	level    *slog.LevelVar
	useCases *internal.UseCases
}

func newApp() *app {
	resolver := internal.NewScopeResolver()

	cfg, err := internal.LoadConfig(resolver.Resolve(""))
	if err != nil {
		cfg = internal.DefaultConfig()
	}

	level := new(slog.LevelVar)
	logger := internal.LoggerFromConfig(os.Stderr, cfg.Log, level)

	return &app{
		resolver: resolver,
		logger:   logger,
		level:    level,
		useCases: internal.NewUseCases(resolver, logger),
	}
}
