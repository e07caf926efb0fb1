package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoader_DefaultsOnly(t *testing.T) {
	cfg, err := NewLoader(t.TempDir(), Development).Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 0.7, cfg.Semantic.SimilarityThreshold)
	assert.Equal(t, 30*time.Minute, cfg.Session.IdleTTL)
	assert.Contains(t, cfg.LoadedFrom, "defaults")
}

func TestLoader_LayeredFiles(t *testing.T) {
	dir := t.TempDir()
	base := []byte("server:\n  port: 9000\nsemantic:\n  similarityThreshold: 0.8\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "base.yaml"), base, 0o644))
	env := []byte("server:\n  port: 9100\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "development.yaml"), env, 0o644))

	cfg, err := NewLoader(dir, Development).Load()
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port, "environment file overrides base")
	assert.Equal(t, 0.8, cfg.Semantic.SimilarityThreshold, "base values survive when not overridden")
}

func TestLoader_EnvironmentVariablesWin(t *testing.T) {
	dir := t.TempDir()
	base := []byte("server:\n  port: 9000\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "base.yaml"), base, 0o644))
	t.Setenv("SERVER_PORT", "9999")
	t.Setenv("SIMILARITY_THRESHOLD", "0.9")

	cfg, err := NewLoader(dir, Development).Load()
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, 0.9, cfg.Semantic.SimilarityThreshold)
}

func TestLoader_RejectsInvalidValues(t *testing.T) {
	dir := t.TempDir()
	bad := []byte("semantic:\n  similarityThreshold: 1.5\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "base.yaml"), bad, 0o644))

	_, err := NewLoader(dir, Development).Load()
	assert.Error(t, err)
}

func TestConfig_ProductionRequiresJWTSecret(t *testing.T) {
	cfg, err := NewLoader(t.TempDir(), Production).Load()
	require.NoError(t, err, "auth disabled by default, no secret needed")
	assert.False(t, cfg.Security.EnableAuth)

	t.Setenv("ENABLE_AUTH", "true")
	_, err = NewLoader(t.TempDir(), Production).Load()
	assert.Error(t, err, "auth without a secret must not reach production")

	t.Setenv("JWT_SECRET", "test-secret")
	cfg, err = NewLoader(t.TempDir(), Production).Load()
	require.NoError(t, err)
	assert.True(t, cfg.Security.EnableAuth)
}

func TestGetEnvironment(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	assert.Equal(t, Production, getEnvironment())
	t.Setenv("ENVIRONMENT", "stage")
	assert.Equal(t, Staging, getEnvironment())
	t.Setenv("ENVIRONMENT", "")
	assert.Equal(t, Development, getEnvironment())
}
