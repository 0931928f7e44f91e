package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/4thel00z/knn/internal"
	"github.com/spf13/cobra"
)

const externalPrefix = "knn-"

// findExternal resolves a plugin name to a knn-<name> binary on PATH. Names
// carrying a path are refused so a plugin can never be run from outside PATH.
func findExternal(name string) (string, error) {
	if name == "" || strings.ContainsRune(name, filepath.Separator) || strings.Contains(name, "/") {
		return "", fmt.Errorf("invalid plugin name %q", name)
	}

	binary := externalPrefix + name
	path, err := exec.LookPath(binary)
	if err != nil {
		if available := listExternalCommands(); len(available) > 0 {
			return "", fmt.Errorf("unknown command %q: %s not found in PATH (plugins: %s)", name, binary, strings.Join(available, ", "))
		}
		return "", fmt.Errorf("unknown command %q: %s not found in PATH", name, binary)
	}
	return path, nil
}

// isBuiltin reports whether name is one of root's own commands. Built-ins
// always win over a knn-<name> plugin.
func isBuiltin(root *cobra.Command, name string) bool {
	switch name {
	case "help", "completion":
		return true
	}
	for _, c := range root.Commands() {
		if c.Name() == name || c.HasAlias(name) {
			return true
		}
	}
	return false
}

// splitScopeFlag peels a leading --scope flag off the command line so that
// `knn --scope global plot` reaches knn-plot with KNN_SCOPE=global.
func splitScopeFlag(args []string) (scope string, rest []string) {
	if len(args) == 0 {
		return "", args
	}
	switch {
	case strings.HasPrefix(args[0], "--scope="):
		return strings.TrimPrefix(args[0], "--scope="), args[1:]
	case args[0] == "--scope" && len(args) > 1:
		return args[1], args[2:]
	}
	return "", args
}

func listExternalCommands() []string {
	var commands []string
	seen := make(map[string]bool)

	for _, dir := range filepath.SplitList(os.Getenv("PATH")) {
		commands = appendExternalsFromDir(dir, seen, commands)
	}
	return commands
}

func appendExternalsFromDir(dir string, seen map[string]bool, commands []string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return commands
	}

	for _, entry := range entries {
		name := extractExternalName(dir, entry)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		commands = append(commands, name)
	}
	return commands
}

func extractExternalName(dir string, entry os.DirEntry) string {
	if entry.IsDir() {
		return ""
	}

	name := entry.Name()
	if !strings.HasPrefix(name, externalPrefix) {
		return ""
	}

	info, err := os.Stat(filepath.Join(dir, name))
	if err != nil || info.Mode()&0111 == 0 {
		return ""
	}

	return strings.TrimPrefix(name, externalPrefix)
}

func executeExternal(ctx context.Context, name, scopeHint string, args []string, resolver *internal.ScopeResolver) error {
	binaryPath, err := findExternal(name)
	if err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, binaryPath, args...)
	cmd.Env = buildExternalEnv(resolver, scopeHint, version)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return cmd.Run()
}

// buildExternalEnv exports the resolved scope and its config as KNN_* vars.
// An explicit scopeHint beats an inherited KNN_SCOPE. A broken config still
// yields the scope variables.
func buildExternalEnv(resolver *internal.ScopeResolver, scopeHint, version string) []string {
	if scopeHint == "" {
		scopeHint = os.Getenv("KNN_SCOPE")
	}
	scope := resolver.Resolve(scopeHint)

	cfg, err := internal.LoadConfig(scope)
	if err != nil {
		cfg = nil
	}

	env := os.Environ()
	for k, v := range resolver.EnvVars(scope, cfg, version) {
		env = append(env, k+"="+v)
	}
	return env
}
