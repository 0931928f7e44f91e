package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/filesystem"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

const (
	DefaultBranch = "main"
	DefaultAuthor = "knn"
	DefaultEmail  = "knn@local"

	runIDTrailer = "Run-Id: "
	initFilename = ".history-init"
)

var (
	ErrNoHistory   = errors.New("run history not initialized")
	ErrRunNotFound = errors.New("run not found")
)

// RunReport is the record of one evaluation run.
type RunReport struct {
	ID          string       `yaml:"id" json:"id"`
	K           int          `yaml:"k" json:"k"`
	Training    string       `yaml:"training" json:"training"`
	Test        string       `yaml:"test" json:"test"`
	Accuracy    float64      `yaml:"accuracy" json:"accuracy"`
	Correct     int          `yaml:"correct" json:"correct"`
	Total       int          `yaml:"total" json:"total"`
	Predictions []Prediction `yaml:"predictions" json:"predictions"`
	CreatedAt   time.Time    `yaml:"created_at" json:"created_at"`
}

func NewRunReport(k int, training, test string, result *EvaluationResult) *RunReport {
	return &RunReport{
		ID:          uuid.NewString(),
		K:           k,
		Training:    training,
		Test:        test,
		Accuracy:    result.Accuracy,
		Correct:     result.Correct,
		Total:       result.Total,
		Predictions: result.Predictions,
		CreatedAt:   time.Now().UTC(),
	}
}

func (r *RunReport) filename() string {
	return r.ID + ".yaml"
}

type Commit struct {
	Hash      string    `json:"hash"`
	Message   string    `json:"message"`
	Author    string    `json:"author"`
	Timestamp time.Time `json:"timestamp"`
	RunID     string    `json:"run_id,omitempty"`
}

// Subject is the first line of the commit message.
func (c *Commit) Subject() string {
	subject, _, _ := strings.Cut(c.Message, "\n")
	return subject
}

// History keeps evaluation reports in a git repository whose object store
// lives in the history path and whose worktree is the runs path.
type History struct {
	repo     *git.Repository
	worktree *git.Worktree
}

func InitHistory(scope Scope) error {
	for _, dir := range []string{scope.HistoryPath(), scope.RunsPath()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}

	storage := filesystem.NewStorage(osfs.New(scope.HistoryPath()), cache.NewObjectLRUDefault())
	wt := osfs.New(scope.RunsPath())

	repo, err := git.InitWithOptions(storage, wt, git.InitOptions{
		DefaultBranch: plumbing.NewBranchReferenceName(DefaultBranch),
	})
	if err != nil {
		return fmt.Errorf("init repository: %w", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("get worktree: %w", err)
	}

	if err := util.WriteFile(wt, initFilename, []byte("knn run history\n"), 0644); err != nil {
		return fmt.Errorf("write init file: %w", err)
	}
	if _, err := worktree.Add(initFilename); err != nil {
		return fmt.Errorf("stage init file: %w", err)
	}

	_, err = worktree.Commit("init: initialize run history", &git.CommitOptions{
		Author: signature(),
	})
	if err != nil {
		return fmt.Errorf("initial commit: %w", err)
	}

	return nil
}

func OpenHistory(scope Scope) (*History, error) {
	if _, err := os.Stat(scope.HistoryPath()); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrNoHistory, scope.HistoryPath())
	}

	storage := filesystem.NewStorage(osfs.New(scope.HistoryPath()), cache.NewObjectLRUDefault())
	wt := osfs.New(scope.RunsPath())

	repo, err := git.Open(storage, wt)
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("get worktree: %w", err)
	}

	return &History{repo: repo, worktree: worktree}, nil
}

// Record writes the report and commits it.
func (h *History) Record(ctx context.Context, report *RunReport) (*Commit, error) {
	data, err := yaml.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}

	name := report.filename()
	if err := util.WriteFile(h.worktree.Filesystem, name, data, 0644); err != nil {
		return nil, fmt.Errorf("write report: %w", err)
	}
	if _, err := h.worktree.Add(name); err != nil {
		return nil, fmt.Errorf("stage report: %w", err)
	}

	message := fmt.Sprintf("evaluate: k=%d accuracy=%.2f%%\n\n%s%s", report.K, report.Accuracy, runIDTrailer, report.ID)
	hash, err := h.worktree.Commit(message, &git.CommitOptions{Author: signature()})
	if err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	commit, err := h.repo.CommitObject(hash)
	if err != nil {
		return nil, fmt.Errorf("get commit: %w", err)
	}

	return toCommit(commit), nil
}

// List returns recorded runs, newest first. limit <= 0 means all.
func (h *History) List(ctx context.Context, limit int) ([]*Commit, error) {
	iter, err := h.repo.Log(&git.LogOptions{})
	if err != nil {
		return nil, fmt.Errorf("get log: %w", err)
	}
	defer iter.Close()

	var commits []*Commit
	err = iter.ForEach(func(c *object.Commit) error {
		if limit > 0 && len(commits) >= limit {
			return io.EOF
		}
		commit := toCommit(c)
		if commit.RunID == "" {
			return nil
		}
		commits = append(commits, commit)
		return nil
	})
	if err != nil && err != io.EOF {
		return nil, err
	}

	return commits, nil
}

// Show loads the report of a run given a git revision or a run ID prefix.
func (h *History) Show(ctx context.Context, ref string) (*RunReport, error) {
	commit, err := h.resolve(ctx, ref)
	if err != nil {
		return nil, err
	}

	runID := parseRunID(commit.Message)
	if runID == "" {
		return nil, fmt.Errorf("%w: %s is not a run commit", ErrRunNotFound, ref)
	}

	f, err := commit.File(runID + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("get report file: %w", err)
	}
	content, err := f.Contents()
	if err != nil {
		return nil, fmt.Errorf("read report file: %w", err)
	}

	var report RunReport
	if err := yaml.Unmarshal([]byte(content), &report); err != nil {
		return nil, fmt.Errorf("parse report: %w", err)
	}
	return &report, nil
}

func (h *History) resolve(ctx context.Context, ref string) (*object.Commit, error) {
	if hash, err := h.repo.ResolveRevision(plumbing.Revision(ref)); err == nil {
		return h.repo.CommitObject(*hash)
	}

	runs, err := h.List(ctx, 0)
	if err != nil {
		return nil, err
	}
	for _, run := range runs {
		if ref != "" && strings.HasPrefix(run.RunID, ref) {
			return h.repo.CommitObject(plumbing.NewHash(run.Hash))
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrRunNotFound, ref)
}

func signature() *object.Signature {
	return &object.Signature{
		Name:  DefaultAuthor,
		Email: DefaultEmail,
		When:  time.Now(),
	}
}

func parseRunID(message string) string {
	for _, line := range strings.Split(message, "\n") {
		if id, ok := strings.CutPrefix(strings.TrimSpace(line), runIDTrailer); ok {
			return id
		}
	}
	return ""
}

func toCommit(c *object.Commit) *Commit {
	return &Commit{
		Hash:      c.Hash.String(),
		Message:   strings.TrimSpace(c.Message),
		Author:    c.Author.Name,
		Timestamp: c.Author.When,
		RunID:     parseRunID(c.Message),
	}
}
