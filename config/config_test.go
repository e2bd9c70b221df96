package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dora-ryukyu/word2vec3d/projection"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "nomic-embed-text", cfg.Ollama.Model)
}

func TestLoad_OverridesOnlyGivenFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
backend: huggingface
qdrant:
  enabled: true
  collection: words
projection:
  solver: svd
  tunables:
    max_iterations: 50
log_file: /tmp/word2vec3d.log
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, BackendHuggingFace, cfg.Backend)
	assert.True(t, cfg.Qdrant.Enabled)
	assert.Equal(t, "words", cfg.Qdrant.Collection)
	assert.Equal(t, "localhost:6334", cfg.Qdrant.Address)
	assert.Equal(t, uint64(768), cfg.Qdrant.Dimensions)
	assert.Equal(t, projection.SolverSVD, cfg.Projection.Solver)
	assert.Equal(t, 50, cfg.Projection.Tunables.MaxIterations)
	assert.Equal(t, 7.13, cfg.Projection.Tunables.SeedFrequency)
	assert.Equal(t, "/tmp/word2vec3d.log", cfg.LogFile)
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()

	badBackend := filepath.Join(dir, "backend.yaml")
	require.NoError(t, os.WriteFile(badBackend, []byte("backend: openai\n"), 0o600))
	_, err := Load(badBackend)
	assert.ErrorContains(t, err, `unknown backend "openai"`)

	badSolver := filepath.Join(dir, "solver.yaml")
	require.NoError(t, os.WriteFile(badSolver, []byte("projection:\n  solver: lanczos\n"), 0o600))
	_, err = Load(badSolver)
	assert.ErrorContains(t, err, `unknown solver "lanczos"`)

	badYAML := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(badYAML, []byte("backend: [\n"), 0o600))
	_, err = Load(badYAML)
	assert.ErrorContains(t, err, "parse config")
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := Default()
	cfg.Backend = BackendHuggingFace
	cfg.Qdrant.Dimensions = 384

	require.NoError(t, Save(path, cfg))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
