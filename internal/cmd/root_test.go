package cmd

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/castforge/castforge/internal/config"
	"github.com/castforge/castforge/pkg/objstore/file"
)

func TestSetVersionInfo(t *testing.T) {
	origVersion := versionInfo.Version
	origCommit := versionInfo.Commit
	origBuildDate := versionInfo.BuildDate
	defer func() {
		versionInfo.Version = origVersion
		versionInfo.Commit = origCommit
		versionInfo.BuildDate = origBuildDate
	}()

	tests := []struct {
		name      string
		version   string
		commit    string
		buildDate string
	}{
		{
			name:      "set all values",
			version:   "1.0.0",
			commit:    "abc123",
			buildDate: "2024-01-15",
		},
		{
			name:      "set dev version",
			version:   "dev",
			commit:    "HEAD",
			buildDate: "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			SetVersionInfo(tt.version, tt.commit, tt.buildDate)

			assert.Equal(t, tt.version, versionInfo.Version)
			assert.Equal(t, tt.commit, versionInfo.Commit)
			assert.Equal(t, tt.buildDate, versionInfo.BuildDate)
		})
	}
}

func TestExitError(t *testing.T) {
	base := errors.New("boom")
	err := exitError(3, "Something failed", base)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Something failed")
	assert.Contains(t, err.Error(), "exit code 3")
	assert.ErrorIs(t, err, base)
}

func TestBuildBackend(t *testing.T) {
	ctx := context.Background()

	t.Run("file backend", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.Storage.Backend = "file"
		cfg.Storage.File.BaseDir = t.TempDir()

		backend, err := buildBackend(ctx, cfg)
		require.NoError(t, err)
		defer func() { _ = backend.Close() }()

		_, ok := backend.(*file.Backend)
		assert.True(t, ok)
	})

	t.Run("empty defaults to file", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.Storage.File.BaseDir = t.TempDir()

		backend, err := buildBackend(ctx, cfg)
		require.NoError(t, err)
		_ = backend.Close()
	})

	t.Run("unknown backend", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.Storage.Backend = "tape"

		_, err := buildBackend(ctx, cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown storage backend")
	})
}

func TestBuildProviders(t *testing.T) {
	t.Run("defaults to mock", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.Providers.Generators = "mock"
		cfg.Providers.Synthesizers = "mock"

		gen, syn, info, err := buildProviders(cfg)
		require.NoError(t, err)
		assert.Equal(t, "mock", gen.Name())
		assert.Equal(t, "mock", syn.Name())
		assert.Equal(t, "mock", info.Generator)
		assert.Equal(t, "mock", info.Synthesizer)
	})

	t.Run("fallback chain", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.Providers.OpenAI.APIKey = "test-key"
		cfg.Providers.Generators = "openai,mock"
		cfg.Providers.Synthesizers = "mock"

		gen, _, info, err := buildProviders(cfg)
		require.NoError(t, err)
		assert.Contains(t, gen.Name(), "fallback")
		assert.Equal(t, "openai,mock", info.Generator)
	})

	t.Run("unknown backend", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.Providers.Generators = "imaginary"

		_, _, _, err := buildProviders(cfg)
		require.Error(t, err)
	})
}

func TestStorageHealthChecker(t *testing.T) {
	backend, err := file.New(file.Config{BaseDir: t.TempDir()})
	require.NoError(t, err)
	defer func() { _ = backend.Close() }()

	checker := storageHealthChecker{backend: backend}
	assert.NoError(t, checker.CheckHealth(context.Background()))
}
