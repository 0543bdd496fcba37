package unstructured

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-papers/internal/core/domain"
)

func stagedFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "staged.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 fake"), 0o600))
	return path
}

func TestTier_Extract(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "secret", r.Header.Get("unstructured-api-key"))

		assert.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "hi_res", r.FormValue("strategy"))

		file, header, err := r.FormFile("files")
		if !assert.NoError(t, err) {
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, "staged.pdf", header.Filename)
		assert.Equal(t, "%PDF-1.4 fake", string(data))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"type": "Title", "element_id": "a", "text": "Attention", "metadata": {"filename": "paper.pdf", "page_number": 1}},
			{"type": "NarrativeText", "element_id": "b", "text": "  ", "metadata": {"page_number": 1}},
			{"type": "NarrativeText", "element_id": "c", "text": "We propose", "metadata": {"page_number": 2}}
		]`))
	}))
	defer server.Close()

	tier := NewTier(Config{URL: server.URL, APIKey: "secret"})
	segments, err := tier.Extract(context.Background(), stagedFile(t))

	require.NoError(t, err)
	require.Len(t, segments, 2)

	assert.Equal(t, "Attention", segments[0].Content)
	assert.Equal(t, "paper.pdf", segments[0].Metadata[domain.MetaSource])
	assert.Equal(t, "1", segments[0].Metadata[domain.MetaPageNumber])
	assert.Equal(t, "Title", segments[0].Metadata[domain.MetaCategory])

	assert.Equal(t, "We propose", segments[1].Content)
	assert.Equal(t, "staged.pdf", segments[1].Metadata[domain.MetaSource])
	assert.Equal(t, "2", segments[1].Metadata[domain.MetaPageNumber])
}

func TestTier_Extract_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := NewTier(Config{URL: server.URL, APIKey: "k"}).Extract(context.Background(), stagedFile(t))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestTier_Extract_BadJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"detail": "not a list"}`))
	}))
	defer server.Close()

	_, err := NewTier(Config{URL: server.URL, APIKey: "k"}).Extract(context.Background(), stagedFile(t))

	assert.Error(t, err)
}

func TestTier_Extract_MissingFile(t *testing.T) {
	tier := NewTier(DefaultConfig("k"))

	_, err := tier.Extract(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))

	assert.Error(t, err)
}

func TestNewTier_Defaults(t *testing.T) {
	tier := NewTier(Config{APIKey: "k"})

	assert.Equal(t, DefaultURL, tier.url)
	assert.Equal(t, DefaultTimeout, tier.Timeout())
	assert.Equal(t, TierName, tier.Name())

	tier = NewTier(Config{URL: "http://localhost:8000/general/v0/general/", Timeout: time.Second})
	assert.Equal(t, "http://localhost:8000/general/v0/general", tier.url)
	assert.Equal(t, time.Second, tier.Timeout())
}
