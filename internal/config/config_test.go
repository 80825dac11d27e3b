package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// useConfigDir points the package at a fresh temp dir for one test.
func useConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(EnvConfigDir, dir)
	ClearUserConfigCache()
	t.Cleanup(ClearUserConfigCache)
	return dir
}

func TestDirPrecedence(t *testing.T) {
	t.Setenv(EnvConfigDir, "")
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	dir, err := Dir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/xdg", AppName), dir)

	t.Setenv(EnvConfigDir, "/tmp/override")
	dir, err = Dir()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/override", dir)

	path, err := StorePath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/override", StoreFileName), path)
}

func TestLoadUserConfigDefaultsWhenMissing(t *testing.T) {
	useConfigDir(t)

	cfg, err := LoadUserConfig()
	require.NoError(t, err)
	assert.Equal(t, "dark", cfg.Theme)
	assert.Equal(t, FilterAuto, cfg.Filter.GetBackend())
	assert.Equal(t, "fzf", cfg.Filter.GetFzfPath())
	assert.Equal(t, "tmux", cfg.Tmux.GetBinary())
	assert.Equal(t, "-", cfg.Display.GetPlaceholder())
	assert.True(t, cfg.Display.GetShowPaneCount())
}

func TestLoadUserConfigReadsTOML(t *testing.T) {
	dir := useConfigDir(t)
	content := `
theme = "light"

[filter]
backend = "builtin"

[display]
placeholder = "?"
show_pane_count = false

[logs]
debug_level = "debug"
debug_max_mb = 4
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, UserConfigFileName), []byte(content), 0o600))

	cfg, err := LoadUserConfig()
	require.NoError(t, err)
	assert.Equal(t, "light", GetTheme())
	assert.Equal(t, FilterBuiltin, cfg.Filter.GetBackend())
	assert.Equal(t, "?", cfg.Display.GetPlaceholder())
	assert.False(t, cfg.Display.GetShowPaneCount())
	assert.Equal(t, "debug", cfg.Logs.DebugLevel)
	assert.Equal(t, 4, cfg.Logs.DebugMaxMB)
}

func TestLoadUserConfigParseError(t *testing.T) {
	dir := useConfigDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, UserConfigFileName), []byte("theme = [broken"), 0o600))

	cfg, err := LoadUserConfig()
	require.Error(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "dark", cfg.Theme)
	assert.Equal(t, "dark", GetTheme())
}

func TestUnknownFilterBackendFallsBackToAuto(t *testing.T) {
	assert.Equal(t, FilterAuto, FilterSettings{Backend: "grep"}.GetBackend())
	assert.Equal(t, FilterFzf, FilterSettings{Backend: "fzf"}.GetBackend())
}

func TestCreateExampleConfig(t *testing.T) {
	dir := useConfigDir(t)

	path, written, err := CreateExampleConfig()
	require.NoError(t, err)
	assert.True(t, written)
	assert.Equal(t, filepath.Join(dir, UserConfigFileName), path)

	cfg, err := LoadUserConfig()
	require.NoError(t, err)
	assert.Equal(t, "dark", cfg.Theme)
	assert.Equal(t, 256, cfg.Logs.RingBufferKB)

	_, written, err = CreateExampleConfig()
	require.NoError(t, err)
	assert.False(t, written, "existing config must not be overwritten")
}
