package internal

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/sync/errgroup"
)

type ReadOptions struct {
	// Header skips the first record.
	Header bool
	// Comma is the field delimiter, ',' when zero.
	Comma rune
}

// ReadDataset parses CSV records into a dataset. The last field of each
// record is the label, all others must be numeric.
func ReadDataset(r io.Reader, opts ReadOptions) (Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true
	if opts.Comma != 0 {
		cr.Comma = opts.Comma
	}

	var (
		ds      Dataset
		arity   = -1
		skipped = !opts.Header
	)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		if !skipped {
			skipped = true
			continue
		}
		if isBlank(rec) {
			continue
		}

		line, _ := cr.FieldPos(0)
		fv, err := parseRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		if arity < 0 {
			arity = fv.Arity()
		} else if fv.Arity() != arity {
			return nil, fmt.Errorf("line %d: %w: expected %d features, got %d", line, ErrDimensionMismatch, arity, fv.Arity())
		}
		ds = append(ds, fv)
	}

	return ds, nil
}

func isBlank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func parseRecord(rec []string) (FeatureVector, error) {
	if len(rec) == 0 {
		return FeatureVector{}, ErrEmptyRecord
	}

	features := make([]float64, 0, len(rec)-1)
	for i, field := range rec[:len(rec)-1] {
		f, ok := parseNumber(strings.TrimSpace(field))
		if !ok {
			return FeatureVector{}, fmt.Errorf("column %d: %w: %q", i+1, ErrNonNumericFeature, field)
		}
		features = append(features, f)
	}

	return FeatureVector{
		Features: features,
		Label:    ParseValue(rec[len(rec)-1]),
	}, nil
}

// ParseQuery parses a comma-separated observation typed by a user. With a
// known arity, arity fields make an unlabeled query and arity+1 fields carry
// a trailing label. With arity <= 0 a trailing non-numeric field is taken as
// the label.
func ParseQuery(line string, arity int) (FeatureVector, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return FeatureVector{}, ErrEmptyRecord
	}

	fields := strings.Split(line, ",")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	hasLabel := false
	switch {
	case arity <= 0:
		_, numeric := parseNumber(fields[len(fields)-1])
		hasLabel = !numeric
	case len(fields) == arity:
	case len(fields) == arity+1:
		hasLabel = true
	default:
		return FeatureVector{}, fmt.Errorf("%w: expected %d or %d fields, got %d", ErrDimensionMismatch, arity, arity+1, len(fields))
	}

	if hasLabel {
		return parseRecord(fields)
	}

	features := make([]float64, 0, len(fields))
	for i, field := range fields {
		f, ok := parseNumber(field)
		if !ok {
			return FeatureVector{}, fmt.Errorf("column %d: %w: %q", i+1, ErrNonNumericFeature, field)
		}
		features = append(features, f)
	}
	return FeatureVector{Features: features}, nil
}

// Loader reads datasets from a source, decompressing by file extension.
type Loader struct {
	source SourceOpener
	opts   ReadOptions
	logger *Logger
}

func NewLoader(source SourceOpener, opts ReadOptions, logger *Logger) *Loader {
	if logger == nil {
		logger = NoopLogger()
	}
	return &Loader{source: source, opts: opts, logger: logger}
}

func (l *Loader) Load(ctx context.Context, uri string) (Dataset, error) {
	return l.LoadRole(ctx, "", uri)
}

// LoadRole is Load with the dataset's role ("training", "test") on its log
// lines.
func (l *Loader) LoadRole(ctx context.Context, role, uri string) (ds Dataset, err error) {
	logger := l.logger.WithDataset(role, uri)
	defer func() { logger.LogLoad(ctx, len(ds), err) }()

	if uri == "" {
		return nil, fmt.Errorf("%w: no path given", ErrDatasetNotFound)
	}

	rc, err := l.source.Open(ctx, uri)
	if err != nil {
		return nil, err
	}

	rc, err = Decompress(uri, rc)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	ds, err = ReadDataset(rc, l.opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", uri, err)
	}
	return ds, nil
}

// LoadPair loads the training and test sets concurrently.
func (l *Loader) LoadPair(ctx context.Context, trainingURI, testURI string) (training, test Dataset, err error) {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		ds, err := l.LoadRole(gctx, "training", trainingURI)
		if err != nil {
			return fmt.Errorf("load training set: %w", err)
		}
		training = ds
		return nil
	})
	g.Go(func() error {
		ds, err := l.LoadRole(gctx, "test", testURI)
		if err != nil {
			return fmt.Errorf("load test set: %w", err)
		}
		test = ds
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return training, test, nil
}
