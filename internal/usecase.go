package internal

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// Use case input/output DTOs

type EvaluateInput struct {
	Training string
	Test     string
	K        int
	// Record overrides history.enabled from the config when set.
	Record *bool
	Scope  string
}

type EvaluateOutput struct {
	K        int
	Training string
	Test     string
	Result   *EvaluationResult
	Run      *Commit
}

type ClassifyInput struct {
	Training string
	Query    string
	K        int
	Scope    string
}

type ClassifyOutput struct {
	K         int
	Query     FeatureVector
	Label     Value
	Neighbors []NeighborResult
}

type LoadSessionInput struct {
	Training string
	Test     string
	K        int
	Scope    string
}

type LoadSessionOutput struct {
	Session  *Session
	Training string
	Test     string
}

type HistoryInput struct {
	Limit int
	Scope string
}

type HistoryOutput struct {
	Runs []*Commit
}

type ShowRunInput struct {
	Ref   string
	Scope string
}

// Use cases

type (
	LoaderFactory  func(Scope, *Config) (*Loader, error)
	HistoryFactory func(Scope) (*History, error)
)

// DefaultLoaderFor resolves relative paths against the working directory and
// adds an s3 source when the config names an endpoint.
func DefaultLoaderFor(logger *Logger) LoaderFactory {
	return func(scope Scope, cfg *Config) (*Loader, error) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
		source, err := NewSourceFromConfig(cfg, cwd)
		if err != nil {
			return nil, err
		}
		return NewLoader(source, cfg.ReadOptions(), logger), nil
	}
}

func DefaultHistoryFor(scope Scope) (*History, error) {
	return OpenHistory(scope)
}

// settings merges the scope config, the environment and explicit input.
type settings struct {
	scope    Scope
	cfg      *Config
	training string
	test     string
}

func resolveSettings(resolver *ScopeResolver, hint, training, test string, k int) (*settings, error) {
	scope := resolver.Resolve(hint)

	cfg, err := LoadConfig(scope)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if k != 0 {
		cfg.K = k
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &settings{
		scope:    scope,
		cfg:      cfg,
		training: training,
		test:     test,
	}
	if s.training == "" {
		s.training = scope.Resolve(cfg.Training)
	}
	if s.test == "" {
		s.test = scope.Resolve(cfg.Test)
	}
	return s, nil
}

type EvaluateUseCase struct {
	resolver   *ScopeResolver
	loaderFor  LoaderFactory
	historyFor HistoryFactory
	logger     *Logger
}

func NewEvaluateUseCase(
	resolver *ScopeResolver,
	loaderFor LoaderFactory,
	historyFor HistoryFactory,
	logger *Logger,
) *EvaluateUseCase {
	if logger == nil {
		logger = NoopLogger()
	}
	return &EvaluateUseCase{
		resolver:   resolver,
		loaderFor:  loaderFor,
		historyFor: historyFor,
		logger:     logger,
	}
}

func (uc *EvaluateUseCase) Execute(ctx context.Context, input EvaluateInput) (*EvaluateOutput, error) {
	s, err := resolveSettings(uc.resolver, input.Scope, input.Training, input.Test, input.K)
	if err != nil {
		return nil, err
	}

	loader, err := uc.loaderFor(s.scope, s.cfg)
	if err != nil {
		return nil, fmt.Errorf("create loader: %w", err)
	}

	training, test, err := loader.LoadPair(ctx, s.training, s.test)
	if err != nil {
		return nil, err
	}

	result, err := Evaluate(training, test, s.cfg.K)
	uc.logger.LogEvaluate(ctx, s.cfg.K, result, err)
	if err != nil {
		return nil, fmt.Errorf("evaluate: %w", err)
	}

	out := &EvaluateOutput{
		K:        s.cfg.K,
		Training: s.training,
		Test:     s.test,
		Result:   result,
	}

	record := s.cfg.History.Enabled
	if input.Record != nil {
		record = *input.Record
	}
	if !record || uc.historyFor == nil {
		return out, nil
	}

	history, err := uc.historyFor(s.scope)
	if err != nil {
		// An enabled-by-default history is optional until `knn init` ran.
		if errors.Is(err, ErrNoHistory) && input.Record == nil {
			uc.logger.DebugContext(ctx, "run not recorded", "reason", err)
			return out, nil
		}
		return nil, fmt.Errorf("open history: %w", err)
	}

	run, err := history.Record(ctx, NewRunReport(s.cfg.K, s.training, s.test, result))
	if err != nil {
		return nil, fmt.Errorf("record run: %w", err)
	}
	out.Run = run

	return out, nil
}

// Datasets returns the training and test locations an Execute with the same
// input would load.
func (uc *EvaluateUseCase) Datasets(input EvaluateInput) (training, test string, err error) {
	s, err := resolveSettings(uc.resolver, input.Scope, input.Training, input.Test, input.K)
	if err != nil {
		return "", "", err
	}
	return s.training, s.test, nil
}

type ClassifyUseCase struct {
	resolver  *ScopeResolver
	loaderFor LoaderFactory
	logger    *Logger
}

func NewClassifyUseCase(resolver *ScopeResolver, loaderFor LoaderFactory, logger *Logger) *ClassifyUseCase {
	if logger == nil {
		logger = NoopLogger()
	}
	return &ClassifyUseCase{
		resolver:  resolver,
		loaderFor: loaderFor,
		logger:    logger,
	}
}

func (uc *ClassifyUseCase) Execute(ctx context.Context, input ClassifyInput) (*ClassifyOutput, error) {
	s, err := resolveSettings(uc.resolver, input.Scope, input.Training, "", input.K)
	if err != nil {
		return nil, err
	}

	loader, err := uc.loaderFor(s.scope, s.cfg)
	if err != nil {
		return nil, fmt.Errorf("create loader: %w", err)
	}

	training, err := loader.LoadRole(ctx, "training", s.training)
	if err != nil {
		return nil, fmt.Errorf("load training set: %w", err)
	}

	session, err := NewSession(s.cfg.K, training, nil)
	if err != nil {
		return nil, err
	}

	query, err := session.ParseQuery(input.Query)
	if err != nil {
		return nil, fmt.Errorf("parse query: %w", err)
	}

	neighbors, err := session.Neighbors(query)
	if err != nil {
		return nil, err
	}

	labels := make([]Value, len(neighbors))
	for i, n := range neighbors {
		labels[i] = n.Label
	}
	label, err := PredictClass(labels)
	if err != nil {
		return nil, err
	}

	uc.logger.WithK(s.cfg.K).DebugContext(ctx, "classified", "query", query.String(), "label", label.String())

	return &ClassifyOutput{
		K:         s.cfg.K,
		Query:     query,
		Label:     label,
		Neighbors: neighbors,
	}, nil
}

type LoadSessionUseCase struct {
	resolver  *ScopeResolver
	loaderFor LoaderFactory
}

func NewLoadSessionUseCase(resolver *ScopeResolver, loaderFor LoaderFactory) *LoadSessionUseCase {
	return &LoadSessionUseCase{
		resolver:  resolver,
		loaderFor: loaderFor,
	}
}

func (uc *LoadSessionUseCase) Execute(ctx context.Context, input LoadSessionInput) (*LoadSessionOutput, error) {
	s, err := resolveSettings(uc.resolver, input.Scope, input.Training, input.Test, input.K)
	if err != nil {
		return nil, err
	}

	loader, err := uc.loaderFor(s.scope, s.cfg)
	if err != nil {
		return nil, fmt.Errorf("create loader: %w", err)
	}

	training, test, err := loader.LoadPair(ctx, s.training, s.test)
	if err != nil {
		return nil, err
	}

	session, err := NewSession(s.cfg.K, training, test)
	if err != nil {
		return nil, err
	}

	return &LoadSessionOutput{
		Session:  session,
		Training: s.training,
		Test:     s.test,
	}, nil
}

type HistoryUseCase struct {
	resolver   *ScopeResolver
	historyFor HistoryFactory
}

func NewHistoryUseCase(resolver *ScopeResolver, historyFor HistoryFactory) *HistoryUseCase {
	return &HistoryUseCase{
		resolver:   resolver,
		historyFor: historyFor,
	}
}

func (uc *HistoryUseCase) Execute(ctx context.Context, input HistoryInput) (*HistoryOutput, error) {
	scope := uc.resolver.Resolve(input.Scope)
	history, err := uc.historyFor(scope)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}

	runs, err := history.List(ctx, input.Limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}

	return &HistoryOutput{Runs: runs}, nil
}

type ShowRunUseCase struct {
	resolver   *ScopeResolver
	historyFor HistoryFactory
}

func NewShowRunUseCase(resolver *ScopeResolver, historyFor HistoryFactory) *ShowRunUseCase {
	return &ShowRunUseCase{
		resolver:   resolver,
		historyFor: historyFor,
	}
}

func (uc *ShowRunUseCase) Execute(ctx context.Context, input ShowRunInput) (*RunReport, error) {
	scope := uc.resolver.Resolve(input.Scope)
	history, err := uc.historyFor(scope)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}

	return history.Show(ctx, input.Ref)
}

// UseCases bundles every use case the CLI and the client need.
type UseCases struct {
	Evaluate    *EvaluateUseCase
	Classify    *ClassifyUseCase
	LoadSession *LoadSessionUseCase
	History     *HistoryUseCase
	ShowRun     *ShowRunUseCase
}

func NewUseCases(resolver *ScopeResolver, logger *Logger) *UseCases {
	loaderFor := DefaultLoaderFor(logger)
	return &UseCases{
		Evaluate:    NewEvaluateUseCase(resolver, loaderFor, DefaultHistoryFor, logger),
		Classify:    NewClassifyUseCase(resolver, loaderFor, logger),
		LoadSession: NewLoadSessionUseCase(resolver, loaderFor),
		History:     NewHistoryUseCase(resolver, DefaultHistoryFor),
		ShowRun:     NewShowRunUseCase(resolver, DefaultHistoryFor),
	}
}
