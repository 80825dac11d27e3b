// Package config resolves jkl's well-known paths and loads the optional
// config.toml with per-field defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
	dark "github.com/thiagokokada/dark-mode-go"
)

const (
	// AppName names the per-user config directory.
	AppName = "jkl"

	// UserConfigFileName is the TOML config file for user preferences
	UserConfigFileName = "config.toml"

	// StoreFileName is the metadata document kept next to the config.
	StoreFileName = "session_context.json"

	// EnvConfigDir overrides the config directory (used by tests and wrappers).
	EnvConfigDir = "JKL_CONFIG_DIR"

	// EnvDebug enables debug logging when set to any non-empty value.
	EnvDebug = "JKL_DEBUG"
)

// Filter backends accepted by [filter] backend.
const (
	FilterAuto    = "auto"
	FilterFzf     = "fzf"
	FilterBuiltin = "builtin"
)

// UserConfig represents user-facing configuration in TOML format
type UserConfig struct {
	// Theme sets the color scheme: "dark" (default), "light", or "system"
	Theme string `toml:"theme"`

	// Filter selects how the navigator ranks search results
	Filter FilterSettings `toml:"filter"`

	// Tmux configures the session manager binary
	Tmux TmuxSettings `toml:"tmux"`

	// Display tweaks navigator rendering
	Display DisplaySettings `toml:"display"`

	// Logs defines debug log settings
	Logs LogSettings `toml:"logs"`
}

// FilterSettings configures the fuzzy filter collaborator.
type FilterSettings struct {
	// Backend is "auto" (default), "fzf", or "builtin"
	Backend string `toml:"backend"`

	// FzfPath is the fzf executable (default: "fzf")
	FzfPath string `toml:"fzf_path"`
}

// TmuxSettings configures the tmux client.
type TmuxSettings struct {
	// Binary is the tmux executable (default: "tmux")
	Binary string `toml:"binary"`
}

// DisplaySettings configures the navigator table.
type DisplaySettings struct {
	// Placeholder is shown for missing status or context (default: "-")
	Placeholder string `toml:"placeholder"`

	// ShowPaneCount appends the live pane count to session names (default: true)
	ShowPaneCount *bool `toml:"show_pane_count"`
}

// LogSettings defines debug log settings.
type LogSettings struct {
	// DebugLevel sets the minimum log level: "debug", "info", "warn", "error"
	DebugLevel string `toml:"debug_level"`

	// DebugFormat sets the log format: "json" (default) or "text"
	DebugFormat string `toml:"debug_format"`

	// DebugMaxMB is the max size in MB for debug.log before rotation
	DebugMaxMB int `toml:"debug_max_mb"`

	// DebugBackups is the number of rotated debug.log files to keep
	DebugBackups int `toml:"debug_backups"`

	// DebugRetentionDays is how long rotated files are kept
	DebugRetentionDays int `toml:"debug_retention_days"`

	// DebugCompress gzips rotated files
	DebugCompress bool `toml:"debug_compress"`

	// RingBufferKB is the size of the in-memory buffer dumped on failure
	RingBufferKB int `toml:"ring_buffer_kb"`
}

// GetShowPaneCount returns whether pane counts are shown, defaulting to true
func (d DisplaySettings) GetShowPaneCount() bool {
	if d.ShowPaneCount == nil {
		return true
	}
	return *d.ShowPaneCount
}

// GetPlaceholder returns the marker for missing values, defaulting to "-"
func (d DisplaySettings) GetPlaceholder() string {
	if d.Placeholder == "" {
		return "-"
	}
	return d.Placeholder
}

// GetBackend returns the configured filter backend, defaulting to "auto"
func (f FilterSettings) GetBackend() string {
	switch f.Backend {
	case FilterFzf, FilterBuiltin:
		return f.Backend
	default:
		return FilterAuto
	}
}

// GetFzfPath returns the fzf executable, defaulting to "fzf"
func (f FilterSettings) GetFzfPath() string {
	if f.FzfPath == "" {
		return "fzf"
	}
	return f.FzfPath
}

// GetBinary returns the tmux executable, defaulting to "tmux"
func (t TmuxSettings) GetBinary() string {
	if t.Binary == "" {
		return "tmux"
	}
	return t.Binary
}

var defaultUserConfig = UserConfig{Theme: "dark"}

var (
	userConfigCache   *UserConfig
	userConfigCacheMu sync.RWMutex
)

// Dir returns the per-user config directory.
// Order: $JKL_CONFIG_DIR, $XDG_CONFIG_HOME/jkl, ~/.config/jkl.
func Dir() (string, error) {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return dir, nil
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", AppName), nil
}

// StorePath returns the path of the metadata document.
func StorePath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, StoreFileName), nil
}

// GetUserConfigPath returns the path to the user config file
func GetUserConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, UserConfigFileName), nil
}

// LoadUserConfig loads the user configuration from TOML file.
// Returns cached config after first load. On a parse error the defaults are
// cached and returned together with the error.
func LoadUserConfig() (*UserConfig, error) {
	userConfigCacheMu.RLock()
	if userConfigCache != nil {
		defer userConfigCacheMu.RUnlock()
		return userConfigCache, nil
	}
	userConfigCacheMu.RUnlock()

	userConfigCacheMu.Lock()
	defer userConfigCacheMu.Unlock()

	if userConfigCache != nil {
		return userConfigCache, nil
	}

	configPath, err := GetUserConfigPath()
	if err != nil {
		userConfigCache = &defaultUserConfig
		return userConfigCache, nil
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		userConfigCache = &defaultUserConfig
		return userConfigCache, nil
	}

	var config UserConfig
	if _, err := toml.DecodeFile(configPath, &config); err != nil {
		userConfigCache = &defaultUserConfig
		return userConfigCache, fmt.Errorf("config.toml parse error: %w", err)
	}

	userConfigCache = &config
	return userConfigCache, nil
}

// ClearUserConfigCache drops the cached config so the next load reads disk.
func ClearUserConfigCache() {
	userConfigCacheMu.Lock()
	userConfigCache = nil
	userConfigCacheMu.Unlock()
}

// GetTheme returns the configured theme, defaulting to "dark"
func GetTheme() string {
	config, err := LoadUserConfig()
	if err != nil || config == nil {
		return "dark"
	}
	switch config.Theme {
	case "dark", "light", "system":
		return config.Theme
	default:
		return "dark"
	}
}

// ResolveTheme resolves the configured theme to "dark" or "light".
// "system" asks the OS and falls back to "dark" when detection fails.
func ResolveTheme() string {
	theme := GetTheme()
	if theme != "system" {
		return theme
	}
	isDark, err := dark.IsDarkMode()
	if err != nil || isDark {
		return "dark"
	}
	return "light"
}

// Settings returns the loaded config, or the defaults when loading failed.
func Settings() UserConfig {
	config, err := LoadUserConfig()
	if err != nil || config == nil {
		return defaultUserConfig
	}
	return *config
}

// exampleConfig is written by CreateExampleConfig.
const exampleConfig = `# jkl configuration

# Color scheme: "dark", "light" or "system"
theme = "dark"

[filter]
# "auto" uses fzf when it is on PATH and the builtin matcher otherwise
backend = "auto"
fzf_path = "fzf"

[tmux]
binary = "tmux"

[display]
placeholder = "-"
show_pane_count = true

[logs]
# Debug logs are written to debug.log when JKL_DEBUG is set
debug_level = "info"
debug_format = "json"
debug_max_mb = 10
debug_backups = 3
debug_retention_days = 10
debug_compress = false
ring_buffer_kb = 256
`

// CreateExampleConfig writes an example config.toml unless one already exists.
// Returns the path and whether a file was written.
func CreateExampleConfig() (string, bool, error) {
	configPath, err := GetUserConfigPath()
	if err != nil {
		return "", false, err
	}
	if _, err := os.Stat(configPath); err == nil {
		return configPath, false, nil
	}

	// Validate before writing so the example always decodes.
	var probe UserConfig
	if _, err := toml.Decode(exampleConfig, &probe); err != nil {
		return "", false, fmt.Errorf("example config is invalid: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o700); err != nil {
		return "", false, fmt.Errorf("failed to create config directory: %w", err)
	}

	tmpPath := configPath + ".tmp"
	if err := os.WriteFile(tmpPath, []byte(exampleConfig), 0o600); err != nil {
		return "", false, fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, configPath); err != nil {
		os.Remove(tmpPath)
		return "", false, fmt.Errorf("failed to finalize config save: %w", err)
	}
	ClearUserConfigCache()
	return configPath, true, nil
}
