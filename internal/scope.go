package internal

import (
	"os"
	"path/filepath"
	"strconv"
)

const StateDir = ".knn"

type ScopeType string

const (
	ScopeGlobal  ScopeType = "global"
	ScopeProject ScopeType = "project"
)

type Scope struct {
	Type      ScopeType
	Path      string // working directory root
	StatePath string // .knn directory path
}

func NewProjectScope(dir string) Scope {
	return Scope{
		Type:      ScopeProject,
		Path:      dir,
		StatePath: filepath.Join(dir, StateDir),
	}
}

func (s Scope) ConfigPath() string {
	return filepath.Join(s.StatePath, "config.yaml")
}

// HistoryPath holds the git object storage of the run history.
func (s Scope) HistoryPath() string {
	return filepath.Join(s.StatePath, "history")
}

// RunsPath is the worktree that run reports are written to.
func (s Scope) RunsPath() string {
	return filepath.Join(s.StatePath, "runs")
}

// Resolve makes a dataset path relative to the scope root absolute. URIs
// with a scheme and absolute paths are returned unchanged.
func (s Scope) Resolve(uri string) string {
	if uri == "" || filepath.IsAbs(uri) || hasScheme(uri) {
		return uri
	}
	return filepath.Join(s.Path, uri)
}

type ScopeResolver struct {
	homeDir string
}

func NewScopeResolver() *ScopeResolver {
	home, _ := os.UserHomeDir()
	return &ScopeResolver{homeDir: home}
}

func (r *ScopeResolver) Global() Scope {
	return Scope{
		Type:      ScopeGlobal,
		Path:      r.homeDir,
		StatePath: filepath.Join(r.homeDir, StateDir),
	}
}

func (r *ScopeResolver) Project() (Scope, bool) {
	cwd, err := os.Getwd()
	if err != nil {
		return Scope{}, false
	}
	return r.findProjectScope(cwd)
}

func (r *ScopeResolver) findProjectScope(dir string) (Scope, bool) {
	for {
		statePath := filepath.Join(dir, StateDir)
		info, err := os.Stat(statePath)
		if err == nil && info.IsDir() && statePath != r.Global().StatePath {
			return NewProjectScope(dir), true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return Scope{}, false
		}
		dir = parent
	}
}

// Resolve picks the global scope when asked for explicitly, otherwise the
// nearest project scope, falling back to global.
func (r *ScopeResolver) Resolve(explicit string) Scope {
	if explicit == string(ScopeGlobal) {
		return r.Global()
	}
	if scope, ok := r.Project(); ok {
		return scope
	}
	return r.Global()
}

func (r *ScopeResolver) EnvVars(scope Scope, cfg *Config, version string) map[string]string {
	knnBin, _ := os.Executable()
	env := map[string]string{
		"KNN_SCOPE":      string(scope.Type),
		"KNN_SCOPE_PATH": scope.StatePath,
		"KNN_ROOT":       scope.Path,
		"KNN_CONFIG":     scope.ConfigPath(),
		"KNN_VERSION":    version,
		"KNN_BIN":        knnBin,
	}
	if cfg != nil {
		env["KNN_K"] = strconv.Itoa(cfg.K)
		env["KNN_TRAINING"] = scope.Resolve(cfg.Training)
		env["KNN_TEST"] = scope.Resolve(cfg.Test)
	}
	return env
}
