// Package fetch downloads PDFs from HTTP(S) URLs, local paths and Cloud Storage.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"cloud.google.com/go/storage"

	"github.com/custodia-labs/sercha-papers/internal/core/domain"
	"github.com/custodia-labs/sercha-papers/internal/core/ports/driven"
)

// Ensure Fetcher implements PDFFetcher
var _ driven.PDFFetcher = (*Fetcher)(nil)

const (
	// DefaultTimeout bounds a single HTTP download
	DefaultTimeout = 30 * time.Second

	// DefaultMaxBytes caps the size of a downloaded document
	DefaultMaxBytes int64 = 100 << 20
)

var (
	driveLetterPath = regexp.MustCompile(`^[A-Za-z]:[\\/]`)

	errTooLarge = errors.New("document exceeds size limit")
)

// Fetcher implements PDFFetcher. Every failure wraps domain.ErrDownload.
type Fetcher struct {
	client   *http.Client
	storage  *storage.Client
	maxBytes int64
	logger   *slog.Logger
}

// Config holds dependencies for Fetcher.
type Config struct {
	// HTTPClient is used for http(s) URLs. Nil means a client with Timeout.
	HTTPClient *http.Client
	Timeout    time.Duration

	// Storage serves gs:// URLs. Nil rejects them.
	Storage *storage.Client

	// MaxBytes caps document size. Zero means DefaultMaxBytes.
	MaxBytes int64

	Logger *slog.Logger
}

// New creates a new Fetcher.
func New(cfg Config) *Fetcher {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	return &Fetcher{
		client:   client,
		storage:  cfg.Storage,
		maxBytes: maxBytes,
		logger:   logger,
	}
}

// Fetch returns the document bytes for rawURL. A single attempt is made.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, fmt.Errorf("%w: empty url", domain.ErrDownload)
	}

	start := time.Now()
	var (
		data []byte
		err  error
	)
	switch {
	case isHTTP(rawURL):
		data, err = f.fetchHTTP(ctx, rawURL)
	case strings.HasPrefix(rawURL, "gs://"):
		data, err = f.fetchGCS(ctx, rawURL)
	case IsLocal(rawURL):
		data, err = f.fetchLocal(rawURL)
	default:
		err = errors.New("unsupported url scheme")
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrDownload, rawURL, err)
	}

	f.logger.Info("pdf fetched", "url", rawURL, "bytes", len(data), "duration", time.Since(start))
	return data, nil
}

// IsLocal reports whether rawURL names a file on this machine: a file://
// URL, a rooted path or a drive-letter path.
func IsLocal(rawURL string) bool {
	if isHTTP(rawURL) {
		return false
	}
	return strings.HasPrefix(rawURL, "file://") ||
		strings.HasPrefix(rawURL, "/") ||
		driveLetterPath.MatchString(rawURL)
}

func isHTTP(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func (f *Fetcher) fetchHTTP(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/pdf")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return f.readLimited(resp.Body)
}

func (f *Fetcher) fetchLocal(rawURL string) ([]byte, error) {
	path := rawURL
	if strings.HasPrefix(rawURL, "file://") {
		u, err := url.Parse(rawURL)
		if err != nil {
			return nil, err
		}
		path = u.Path
		// file:///C:/x parses to /C:/x
		if len(path) > 2 && path[0] == '/' && driveLetterPath.MatchString(path[1:]) {
			path = path[1:]
		}
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return f.readLimited(file)
}

func (f *Fetcher) fetchGCS(ctx context.Context, rawURL string) ([]byte, error) {
	if f.storage == nil {
		return nil, errors.New("cloud storage is not configured")
	}

	bucket, object, ok := strings.Cut(strings.TrimPrefix(rawURL, "gs://"), "/")
	if !ok || bucket == "" || object == "" {
		return nil, errors.New("gs url must be gs://bucket/object")
	}

	reader, err := f.storage.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	return f.readLimited(reader)
}

// readLimited reads r fully, failing once more than maxBytes are seen.
func (f *Fetcher) readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, f.maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > f.maxBytes {
		return nil, errTooLarge
	}
	return data, nil
}
