package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/rebeliceyang/lazyjson/internal/models"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, GetDefaults(), cfg)

	policy, err := cfg.Policy()
	require.NoError(t, err)
	assert.Equal(t, models.PolicyFirstItemExpanded, policy)

	e, err := cfg.Expander()
	require.NoError(t, err)
	assert.Equal(t, models.Expander{ExpandSingleChildren: true, Collapse: models.CollapseReset}, e)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
viewer:
  expansion_policy: collapsed
  collapse_mode: preserve
  expand_single_children: false
ui:
  theme: catppuccin-mocha
log:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "catppuccin-mocha", cfg.UI.Theme)
	assert.Equal(t, 2048, cfg.Search.ChunkSize)
	e, err := cfg.Expander()
	require.NoError(t, err)
	assert.Equal(t, models.Expander{Collapse: models.CollapsePreserve}, e)
	level, err := cfg.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, level)
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeConfig(t, "viewer:\n  expansion_policy: collapsed\n")
	t.Setenv("LAZYJSON_VIEWER_EXPANSION_POLICY", "expanded")

	cfg, err := Load(path)
	require.NoError(t, err)
	policy, err := cfg.Policy()
	require.NoError(t, err)
	assert.Equal(t, models.PolicyExpanded, policy)
}

func TestLoad_Invalid(t *testing.T) {
	_, err := Load(writeConfig(t, "viewer:\n  expansion_policy: sideways\n"))
	assert.ErrorContains(t, err, "viewer.expansion_policy")

	_, err = Load(writeConfig(t, "viewer:\n  collapse_mode: forget\n"))
	assert.ErrorContains(t, err, "viewer.collapse_mode")

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestConfig_YAML(t *testing.T) {
	out, err := GetDefaults().YAML()
	require.NoError(t, err)

	var back Config
	require.NoError(t, yaml.Unmarshal([]byte(out), &back))
	assert.Equal(t, *GetDefaults(), back)
	assert.Contains(t, out, "expansion_policy: first-item-expanded")
}

func TestConfig_HistoryPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	cfg := GetDefaults()
	path, err := cfg.HistoryPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "lazyjson", "history.db"), path)

	cfg.History.Path = "/tmp/h.db"
	path, err = cfg.HistoryPath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/h.db", path)
}
