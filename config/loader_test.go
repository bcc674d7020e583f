package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoader_LayeredPrecedence(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	writeFile(t, filepath.Join(home, UserConfigDir, UserConfigFile), `
scoring:
  system: from-user
log:
  level: warn
`)

	project := t.TempDir()
	writeFile(t, filepath.Join(project, ProjectConfigFile), `
scoring:
  system: from-project
data:
  dir: records
`)
	nested := filepath.Join(project, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))

	cfg, err := NewLoader(nil).LoadFrom(nested)
	require.NoError(t, err)

	assert.Equal(t, "from-project", cfg.Scoring.System)
	assert.Equal(t, "warn", cfg.Log.Level)

	root, err := filepath.Abs(project)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "records"), cfg.Data.Dir)
	assert.Equal(t, filepath.Join(root, "profiles"), cfg.Profiles.Dir)
}

func TestLoader_DefaultsOnly(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := NewLoader(nil).LoadFrom(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "data", cfg.Data.Dir)
}

func TestLoader_InvalidProjectConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	project := t.TempDir()
	writeFile(t, filepath.Join(project, ProjectConfigFile), "log:\n  level: loud\n")

	_, err := NewLoader(nil).LoadFrom(project)
	assert.Error(t, err)
}

func TestLoader_LoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	writeFile(t, path, "archive:\n  path: /abs/history.db\nmetrics:\n  textfile: acf.prom\n")

	cfg, err := NewLoader(nil).LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "/abs/history.db", cfg.Archive.Path)
	assert.Equal(t, filepath.Join(dir, "acf.prom"), cfg.Metrics.Textfile)
}

func TestLoader_EnsureUserConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	require.NoError(t, NewLoader(nil).EnsureUserConfig())

	path := filepath.Join(home, UserConfigDir, UserConfigFile)
	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Data.Dir, cfg.Data.Dir)

	// Existing files are left alone
	writeFile(t, path, "scoring:\n  system: mine\n")
	require.NoError(t, NewLoader(nil).EnsureUserConfig())
	cfg, err = LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "mine", cfg.Scoring.System)
}

func TestFindProjectConfig_NotFound(t *testing.T) {
	assert.Empty(t, FindProjectConfig(t.TempDir()))
}
