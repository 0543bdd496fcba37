package cli

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_RegistersCommands(t *testing.T) {
	names := map[string]bool{}
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}

	for _, want := range []string{"serve", "take-notes", "ask", "history", "reindex", "version"} {
		assert.True(t, names[want], "command %s should be registered", want)
	}
}

func TestLoadServices_LoadsOnce(t *testing.T) {
	setupTestServices(t)
	ingestionService, qaService, paperService, serveFunc = nil, nil, nil, nil

	calls := 0
	qa := &mockQAService{}
	loader = func(context.Context) (*App, error) {
		calls++
		return &App{QA: qa}, nil
	}

	require.NoError(t, loadServices(context.Background()))
	require.NoError(t, loadServices(context.Background()))

	assert.Equal(t, 1, calls)
	assert.Same(t, qa, qaService)
	closeApp = nil
}

func TestLoadServices_Error(t *testing.T) {
	setupTestServices(t)
	ingestionService, qaService, paperService, serveFunc = nil, nil, nil, nil
	loader = func(context.Context) (*App, error) {
		return nil, errors.New("database unreachable")
	}

	_, err := run(t, "ask", "--url", "https://example.com/p.pdf", "Why?")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to initialise services")
}

func TestServeCmd_RunsServer(t *testing.T) {
	setupTestServices(t)
	served := false
	serveFunc = func(context.Context) error {
		served = true
		return nil
	}

	_, err := run(t, "serve")

	require.NoError(t, err)
	assert.True(t, served)
}

func TestServeCmd_NotConfigured(t *testing.T) {
	setupTestServices(t)
	serveFunc = nil

	_, err := run(t, "serve")

	assert.ErrorIs(t, err, errNotConfigured)
}

func TestExecute_ClosesApp(t *testing.T) {
	setupTestServices(t)
	ingestionService, qaService, paperService, serveFunc = nil, nil, nil, nil
	originalVersion := version
	defer func() { version = originalVersion }()

	closed := false
	served := false
	load := func(context.Context) (*App, error) {
		return &App{
			Serve: func(context.Context) error {
				served = true
				return nil
			},
			Close: func() { closed = true },
		}, nil
	}

	for _, cmd := range rootCmd.Commands() {
		resetFlags(cmd)
	}
	rootCmd.SetArgs([]string{"serve"})
	defer rootCmd.SetArgs(nil)

	require.NoError(t, Execute(context.Background(), "1.2.3", load))
	assert.True(t, served)
	assert.True(t, closed)
	assert.Equal(t, "1.2.3", version)
}
