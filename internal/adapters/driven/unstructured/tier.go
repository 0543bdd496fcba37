// Package unstructured is the hi-res extraction tier backed by the
// Unstructured partition API.
package unstructured

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/sercha-papers/internal/core/domain"
	"github.com/custodia-labs/sercha-papers/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.ExtractionTier = (*Tier)(nil)

const (
	// DefaultURL is the hosted partition endpoint
	DefaultURL = "https://api.unstructuredapp.io/general/v0/general"

	// DefaultTimeout bounds a single partition request
	DefaultTimeout = 60 * time.Second

	// TierName identifies the tier in logs and segment metadata
	TierName = "hi_res"

	apiKeyHeader = "unstructured-api-key"
)

// Config holds Unstructured API configuration
type Config struct {
	// URL is the partition endpoint
	URL string

	// APIKey is sent in the unstructured-api-key header
	APIKey string

	// Timeout for a partition request
	Timeout time.Duration

	// HTTPClient overrides the default client
	HTTPClient *http.Client
}

// DefaultConfig returns sensible defaults
func DefaultConfig(apiKey string) Config {
	return Config{
		URL:     DefaultURL,
		APIKey:  apiKey,
		Timeout: DefaultTimeout,
	}
}

// Tier implements driven.ExtractionTier using the Unstructured API
type Tier struct {
	url        string
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
}

// NewTier creates a new hi-res extraction tier
func NewTier(cfg Config) *Tier {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	return &Tier{
		url:        strings.TrimSuffix(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		timeout:    cfg.Timeout,
		httpClient: client,
	}
}

// Name returns the tier name
func (t *Tier) Name() string {
	return TierName
}

// Timeout returns the per-request bound
func (t *Tier) Timeout() time.Duration {
	return t.timeout
}

// element is one partitioned element in the API response
type element struct {
	Type      string          `json:"type"`
	ElementID string          `json:"element_id"`
	Text      string          `json:"text"`
	Metadata  elementMetadata `json:"metadata"`
}

type elementMetadata struct {
	Filename   string `json:"filename"`
	PageNumber int    `json:"page_number"`
}

// Extract uploads the staged PDF and converts the returned elements to segments
func (t *Tier) Extract(ctx context.Context, path string) ([]domain.TextSegment, error) {
	body, contentType, err := t.buildForm(path)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set(apiKeyHeader, t.apiKey)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("unstructured partition failed: %s - %s", resp.Status, string(respBody))
	}

	var elements []element
	if err := json.NewDecoder(resp.Body).Decode(&elements); err != nil {
		return nil, fmt.Errorf("decode partition response: %w", err)
	}

	return toSegments(elements, filepath.Base(path)), nil
}

func (t *Tier) buildForm(path string) (io.Reader, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("files", filepath.Base(path))
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", err
	}
	if err := w.WriteField("strategy", "hi_res"); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return &buf, w.FormDataContentType(), nil
}

func toSegments(elements []element, fallbackSource string) []domain.TextSegment {
	segments := make([]domain.TextSegment, 0, len(elements))
	for _, el := range elements {
		text := strings.TrimSpace(el.Text)
		if text == "" {
			continue
		}

		source := el.Metadata.Filename
		if source == "" {
			source = fallbackSource
		}

		seg := domain.NewTextSegment(text, source)
		if el.Metadata.PageNumber > 0 {
			seg.Metadata[domain.MetaPageNumber] = strconv.Itoa(el.Metadata.PageNumber)
		}
		if el.Type != "" {
			seg.Metadata[domain.MetaCategory] = el.Type
		}
		segments = append(segments, seg)
	}
	return segments
}
