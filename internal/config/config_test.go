package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"randforest/internal/models"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func clearEnv(t *testing.T) {
	for _, k := range []string{"PORT", "API_KEY", "MODEL_PATH", "FOREST_WORKERS", "FOREST_SEED"} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverlaysFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
forest:
  num_trees: 25
  growth: fixed
  learner: projection
  max_depth: 6
data:
  classes: 4
server:
  port: "9090"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.Forest.NumTrees)
	assert.Equal(t, "fixed", cfg.Forest.Growth)
	assert.Equal(t, 6, cfg.Forest.MaxDepth)
	assert.Equal(t, 10, cfg.Forest.NumTries)
	assert.Equal(t, 4, cfg.Data.Classes)
	assert.Equal(t, "9090", cfg.Server.Port)

	rf, err := cfg.Forest.Forest()
	require.NoError(t, err)
	assert.Equal(t, models.FixedDepth, rf.Growth)
	assert.Equal(t, "projection", rf.Learner)
	assert.Equal(t, 25, rf.NumTrees)
}

func TestLoadRejectsInvalid(t *testing.T) {
	clearEnv(t)
	for name, body := range map[string]string{
		"growth":  "forest:\n  growth: sideways\n",
		"trees":   "forest:\n  num_trees: 0\n",
		"entropy": "forest:\n  min_entropy: -1\n",
		"port":    "server:\n  port: http\n",
		"yaml":    "forest: [",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "7000")
	t.Setenv("API_KEY", "secret")
	t.Setenv("MODEL_PATH", "/tmp/m.gob")
	t.Setenv("FOREST_WORKERS", "3")
	t.Setenv("FOREST_SEED", "42")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "7000", cfg.Server.Port)
	assert.Equal(t, "secret", cfg.Server.APIKey)
	assert.Equal(t, "/tmp/m.gob", cfg.Server.ModelPath)
	assert.Equal(t, 3, cfg.Forest.Workers)
	assert.Equal(t, uint64(42), cfg.Forest.Seed)

	t.Setenv("FOREST_SEED", "minus one")
	_, err = Load("")
	assert.Error(t, err)
}

func TestApplyRejectsUnknownLearner(t *testing.T) {
	f := Default().Forest
	f.Learner = "nope"
	_, err := f.Forest()
	assert.ErrorIs(t, err, models.ErrUnknownLearner)
}
