package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pierrec/lz4/v4"
)

var (
	ErrUnsupportedSource = errors.New("unsupported dataset source")
	ErrDatasetNotFound   = errors.New("dataset not found")
)

// SourceOpener opens the raw bytes behind a dataset URI.
type SourceOpener interface {
	Open(ctx context.Context, uri string) (io.ReadCloser, error)
}

var (
	_ SourceOpener = (*FileSource)(nil)
	_ SourceOpener = (*S3Source)(nil)
	_ SourceOpener = (*MultiSource)(nil)
)

func hasScheme(uri string) bool {
	return strings.Index(uri, "://") > 0
}

func splitScheme(uri string) (scheme, rest string) {
	if i := strings.Index(uri, "://"); i > 0 {
		return strings.ToLower(uri[:i]), uri[i+3:]
	}
	return "", uri
}

// LocalPath returns the filesystem path of uri when it names a local file.
func LocalPath(uri string) (string, bool) {
	scheme, rest := splitScheme(uri)
	switch scheme {
	case "":
		return rest, rest != ""
	case "file":
		return rest, true
	default:
		return "", false
	}
}

// FileSource reads datasets from a billy filesystem.
type FileSource struct {
	FS billy.Filesystem
	// Base is joined with relative paths before opening.
	Base string
}

// NewOSSource reads from the local disk, resolving relative paths against base.
func NewOSSource(base string) *FileSource {
	return &FileSource{FS: osfs.New("/"), Base: base}
}

func (s *FileSource) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	_, name := splitScheme(uri)
	if s.Base != "" && !filepath.IsAbs(name) {
		name = filepath.Join(s.Base, name)
	}

	f, err := s.FS.Open(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDatasetNotFound, name)
		}
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	return f, nil
}

// S3Source reads datasets from s3://bucket/key URIs through any
// S3-compatible endpoint.
type S3Source struct {
	client *minio.Client
}

func NewS3Source(cfg S3Config) (*S3Source, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("%w: s3 endpoint not configured", ErrUnsupportedSource)
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}

	return &S3Source{client: client}, nil
}

// ParseS3URI splits s3://bucket/key into its bucket and key.
func ParseS3URI(uri string) (bucket, key string, err error) {
	scheme, rest := splitScheme(uri)
	if scheme != "s3" {
		return "", "", fmt.Errorf("%w: %s", ErrUnsupportedSource, uri)
	}

	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("invalid s3 uri %q: expected s3://bucket/key", uri)
	}
	return bucket, key, nil
}

func (s *S3Source) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	bucket, key, err := ParseS3URI(uri)
	if err != nil {
		return nil, err
	}

	obj, err := s.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object: %w", err)
	}

	// GetObject is lazy, Stat surfaces a missing key before the first read.
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		errResp := minio.ToErrorResponse(err)
		if errResp.Code == "NoSuchKey" || errResp.Code == "NotFound" || errResp.Code == "NoSuchBucket" {
			return nil, fmt.Errorf("%w: %s", ErrDatasetNotFound, uri)
		}
		return nil, fmt.Errorf("stat object: %w", err)
	}

	return obj, nil
}

// MultiSource dispatches on the URI scheme. URIs without a scheme (and
// file://) go to the local source.
type MultiSource struct {
	local   SourceOpener
	schemes map[string]SourceOpener
}

func NewMultiSource(local SourceOpener) *MultiSource {
	return &MultiSource{
		local:   local,
		schemes: make(map[string]SourceOpener),
	}
}

func (m *MultiSource) Register(scheme string, src SourceOpener) {
	m.schemes[strings.ToLower(scheme)] = src
}

func (m *MultiSource) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	scheme, _ := splitScheme(uri)
	if scheme == "" || scheme == "file" {
		return m.local.Open(ctx, uri)
	}

	src, ok := m.schemes[scheme]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSource, uri)
	}
	return src.Open(ctx, uri)
}

// NewSourceFromConfig builds the default source: local files resolved
// against base, plus s3:// when an endpoint is configured.
func NewSourceFromConfig(cfg *Config, base string) (*MultiSource, error) {
	multi := NewMultiSource(NewOSSource(base))
	if cfg.S3.Endpoint == "" {
		return multi, nil
	}

	s3, err := NewS3Source(cfg.S3)
	if err != nil {
		return nil, err
	}
	multi.Register("s3", s3)
	return multi, nil
}

type readCloser struct {
	io.Reader
	closers []func() error
}

func (r *readCloser) Close() error {
	var errs []error
	for _, c := range r.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Decompress wraps rc with a decoder picked from the extension of name:
// .gz, .zst/.zstd or .lz4. Other names pass through unchanged.
func Decompress(name string, rc io.ReadCloser) (io.ReadCloser, error) {
	switch path.Ext(strings.ToLower(name)) {
	case ".gz", ".gzip":
		zr, err := gzip.NewReader(rc)
		if err != nil {
			_ = rc.Close()
			return nil, fmt.Errorf("open gzip stream: %w", err)
		}
		return &readCloser{Reader: zr, closers: []func() error{zr.Close, rc.Close}}, nil
	case ".zst", ".zstd":
		dec, err := zstd.NewReader(rc)
		if err != nil {
			_ = rc.Close()
			return nil, fmt.Errorf("open zstd stream: %w", err)
		}
		return &readCloser{Reader: dec, closers: []func() error{
			func() error { dec.Close(); return nil },
			rc.Close,
		}}, nil
	case ".lz4":
		return &readCloser{Reader: lz4.NewReader(rc), closers: []func() error{rc.Close}}, nil
	default:
		return rc, nil
	}
}
