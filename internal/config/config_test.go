package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IvanBrykalov/costlru/internal/config"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "costlru.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)

	opt := cfg.EngineOptions()
	assert.Equal(t, int64(64<<20), opt.MaxTotalCost)
	assert.Equal(t, int64(48<<20), opt.TargetCost)
	assert.Equal(t, int64(1<<20), opt.MaxEntryCost)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := writeFile(t, `
engine:
  name: pages
  max_total_cost: 1000
  target_cost: 800
cache:
  shards: 16
log:
  level: debug
  format: json
`)
	t.Setenv("COSTLRU_ENGINE_TARGET_COST", "600")
	t.Setenv("COSTLRU_ENGINE_FORCE_RECLAIM", "true")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "pages", cfg.Engine.Name)
	assert.Equal(t, int64(1000), cfg.Engine.MaxTotalCost, "file value kept")
	assert.Equal(t, int64(600), cfg.Engine.TargetCost, "env overrides file")
	assert.True(t, cfg.Engine.ForceReclaim)
	assert.Equal(t, int64(1<<20), cfg.Engine.MaxEntryCost, "default kept")
	assert.Equal(t, 16, cfg.Cache.Shards)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "costlru", cfg.Metrics.Namespace)
}

func TestLoad_Errors(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, config.ErrReadFile)

	_, err = config.Load(writeFile(t, "engine: [not, a, map]"))
	require.ErrorIs(t, err, config.ErrParsingConfig)

	t.Setenv("COSTLRU_ENGINE_MAX_TOTAL_COST", "lots")
	_, err = config.Load("")
	require.ErrorIs(t, err, config.ErrParsingConfig)
}

func TestValidate(t *testing.T) {
	cfg := config.Default()
	cfg.Engine.TargetCost = -1
	require.ErrorIs(t, cfg.Validate(), config.ErrInvalidConfig)

	cfg = config.Default()
	cfg.Log.Format = "xml"
	require.ErrorIs(t, cfg.Validate(), config.ErrInvalidConfig)

	cfg = config.Default()
	cfg.Cache.Shards = -2
	require.ErrorIs(t, cfg.Validate(), config.ErrInvalidConfig)
}
