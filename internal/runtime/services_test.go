package runtime

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-papers/internal/core/domain"
	"github.com/custodia-labs/sercha-papers/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-papers/internal/core/ports/driven/mocks"
)

// closingEmbedder records Close and fails its health check on demand
type closingEmbedder struct {
	*mocks.MockEmbeddingService
	healthErr error
	closed    bool
}

func newClosingEmbedder(healthErr error) *closingEmbedder {
	return &closingEmbedder{MockEmbeddingService: mocks.NewMockEmbeddingService(), healthErr: healthErr}
}

func (e *closingEmbedder) HealthCheck(context.Context) error { return e.healthErr }
func (e *closingEmbedder) Close() error                      { e.closed = true; return nil }

// closingLLM records Close and fails its ping on demand
type closingLLM struct {
	*mocks.MockLLMService
	pingErr error
	closed  bool
}

func newClosingLLM(pingErr error) *closingLLM {
	return &closingLLM{MockLLMService: mocks.NewMockLLMService(), pingErr: pingErr}
}

func (l *closingLLM) Ping(context.Context) error { return l.pingErr }
func (l *closingLLM) Close() error               { l.closed = true; return nil }

var (
	_ driven.EmbeddingService = (*closingEmbedder)(nil)
	_ driven.LLMService       = (*closingLLM)(nil)
)

func newServices() *Services {
	return NewServices(domain.NewRuntimeConfig("memory", "none"))
}

func TestNewServices(t *testing.T) {
	config := domain.NewRuntimeConfig("postgres", "redis")
	svcs := NewServices(config)

	require.NotNil(t, svcs)
	assert.Same(t, config, svcs.Config())
	assert.Nil(t, svcs.LLMService())
	assert.Nil(t, svcs.EmbeddingService())
}

func TestServices_RequireLLM(t *testing.T) {
	svcs := newServices()

	_, err := svcs.RequireLLM()
	assert.ErrorIs(t, err, domain.ErrConfig)

	llm := newClosingLLM(nil)
	svcs.SetLLMService(llm)

	got, err := svcs.RequireLLM()
	require.NoError(t, err)
	assert.Same(t, llm, got)
	assert.True(t, svcs.Config().CanIngest())
}

func TestServices_SetEmbeddingService_TracksRetrieval(t *testing.T) {
	svcs := newServices()
	assert.False(t, svcs.Config().CanRetrieve())

	svcs.SetEmbeddingService(newClosingEmbedder(nil))
	assert.True(t, svcs.Config().CanRetrieve())

	svcs.SetEmbeddingService(nil)
	assert.False(t, svcs.Config().CanRetrieve())
	assert.Nil(t, svcs.EmbeddingService())
}

func TestServices_RegisterLLM(t *testing.T) {
	tests := []struct {
		name    string
		pingErr error
		wantErr bool
	}{
		{"healthy", nil, false},
		{"unreachable", errors.New("401 unauthorized"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svcs := newServices()
			llm := newClosingLLM(tt.pingErr)

			err := svcs.RegisterLLM(context.Background(), llm)

			assert.Equal(t, tt.wantErr, err != nil)
			assert.NotNil(t, svcs.LLMService())
			assert.True(t, svcs.Config().LLMAvailable())
			assert.False(t, llm.closed)
		})
	}
}

func TestServices_RegisterLLM_KeepsServiceWhenPingFails(t *testing.T) {
	svcs := newServices()
	llm := newClosingLLM(errors.New("404 page not found"))

	err := svcs.RegisterLLM(context.Background(), llm)

	assert.Error(t, err)
	assert.False(t, llm.closed)
	got, err := svcs.RequireLLM()
	require.NoError(t, err)
	assert.Same(t, llm, got)
	assert.True(t, svcs.Config().LLMAvailable())

	require.NoError(t, svcs.RegisterLLM(context.Background(), nil))
	assert.False(t, svcs.Config().LLMAvailable())
	assert.True(t, llm.closed)
}

func TestServices_ValidateAndSetEmbedding(t *testing.T) {
	tests := []struct {
		name      string
		healthErr error
		wantErr   bool
		wantSet   bool
	}{
		{"healthy", nil, false, true},
		{"unreachable", errors.New("connection refused"), true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svcs := newServices()
			embedder := newClosingEmbedder(tt.healthErr)

			err := svcs.ValidateAndSetEmbedding(context.Background(), embedder)

			assert.Equal(t, tt.wantErr, err != nil)
			assert.Equal(t, tt.wantSet, svcs.EmbeddingService() != nil)
			assert.Equal(t, tt.wantErr, embedder.closed)
		})
	}
}

func TestServices_RegisterNil(t *testing.T) {
	svcs := newServices()
	svcs.SetLLMService(newClosingLLM(nil))
	svcs.SetEmbeddingService(newClosingEmbedder(nil))

	require.NoError(t, svcs.RegisterLLM(context.Background(), nil))
	require.NoError(t, svcs.ValidateAndSetEmbedding(context.Background(), nil))

	assert.Nil(t, svcs.LLMService())
	assert.Nil(t, svcs.EmbeddingService())
}

func TestServices_ReplaceClosesPrevious(t *testing.T) {
	svcs := newServices()
	first := newClosingLLM(nil)
	second := newClosingLLM(nil)

	svcs.SetLLMService(first)
	svcs.SetLLMService(second)

	assert.True(t, first.closed)
	assert.False(t, second.closed)
	assert.Same(t, second, svcs.LLMService())
}

func TestServices_Close(t *testing.T) {
	svcs := newServices()
	llm := newClosingLLM(nil)
	embedder := newClosingEmbedder(nil)
	svcs.SetLLMService(llm)
	svcs.SetEmbeddingService(embedder)

	require.NoError(t, svcs.Close())

	assert.True(t, llm.closed)
	assert.True(t, embedder.closed)
	assert.False(t, svcs.Config().CanIngest())
	assert.False(t, svcs.Config().CanRetrieve())
}
