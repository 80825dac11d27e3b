package ui

import (
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/jkl-dev/jkl/internal/store"
)

// Theme names accepted by InitTheme.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

type palette struct {
	Text, TextDim, Border, Accent lipgloss.Color
	Green, Yellow, Red, Comment   lipgloss.Color
	SelectionBg                   lipgloss.Color
}

// Tokyo Night
var darkPalette = palette{
	Text:        lipgloss.Color("#c0caf5"),
	TextDim:     lipgloss.Color("#787fa0"),
	Border:      lipgloss.Color("#414868"),
	Accent:      lipgloss.Color("#7aa2f7"),
	Green:       lipgloss.Color("#9ece6a"),
	Yellow:      lipgloss.Color("#e0af68"),
	Red:         lipgloss.Color("#f7768e"),
	Comment:     lipgloss.Color("#565f89"),
	SelectionBg: lipgloss.Color("#283457"),
}

// Tokyo Night Day
var lightPalette = palette{
	Text:        lipgloss.Color("#343b58"),
	TextDim:     lipgloss.Color("#6a6d7c"),
	Border:      lipgloss.Color("#9699a3"),
	Accent:      lipgloss.Color("#34548a"),
	Green:       lipgloss.Color("#485e30"),
	Yellow:      lipgloss.Color("#8f5e15"),
	Red:         lipgloss.Color("#8c4351"),
	Comment:     lipgloss.Color("#848cb5"),
	SelectionBg: lipgloss.Color("#b7c1e3"),
}

var (
	themeMu      sync.RWMutex
	currentTheme = ThemeDark
	colors       palette
)

var (
	HeaderStyle       lipgloss.Style
	SearchPromptStyle lipgloss.Style
	SearchEmptyStyle  lipgloss.Style
	ColumnTitleStyle  lipgloss.Style
	RowStyle          lipgloss.Style
	RowAltStyle       lipgloss.Style
	RowSelectedStyle  lipgloss.Style
	PaneRowStyle      lipgloss.Style
	PlaceholderStyle  lipgloss.Style
	FooterStyle       lipgloss.Style
	FooterKeyStyle    lipgloss.Style
	ModeNormalStyle   lipgloss.Style
	ModeSearchStyle   lipgloss.Style
	ErrorStyle        lipgloss.Style
	DialogBoxStyle    lipgloss.Style
	DialogTitleStyle  lipgloss.Style
	OptionStyle       lipgloss.Style
	OptionActiveStyle lipgloss.Style
)

// InitTheme switches the palette ("light" or anything else for dark) and
// rebuilds every style. Call before the first render.
func InitTheme(theme string) {
	themeMu.Lock()
	defer themeMu.Unlock()
	if theme == ThemeLight {
		currentTheme = ThemeLight
		colors = lightPalette
	} else {
		currentTheme = ThemeDark
		colors = darkPalette
	}
	initStyles()
}

// CurrentTheme returns the active theme name.
func CurrentTheme() string {
	themeMu.RLock()
	defer themeMu.RUnlock()
	return currentTheme
}

func init() {
	InitTheme(ThemeDark)
}

func initStyles() {
	HeaderStyle = lipgloss.NewStyle().Foreground(colors.Accent).Bold(true)
	SearchPromptStyle = lipgloss.NewStyle().Foreground(colors.Accent)
	SearchEmptyStyle = lipgloss.NewStyle().Foreground(colors.TextDim).Faint(true)
	ColumnTitleStyle = lipgloss.NewStyle().Foreground(colors.Text).Bold(true)
	RowStyle = lipgloss.NewStyle().Foreground(colors.Text)
	RowAltStyle = lipgloss.NewStyle().Foreground(colors.TextDim)
	RowSelectedStyle = lipgloss.NewStyle().Foreground(colors.Text).Background(colors.SelectionBg).Bold(true)
	PaneRowStyle = lipgloss.NewStyle().Foreground(colors.TextDim)
	PlaceholderStyle = lipgloss.NewStyle().Foreground(colors.Comment)
	FooterStyle = lipgloss.NewStyle().Foreground(colors.Comment)
	FooterKeyStyle = lipgloss.NewStyle().Foreground(colors.Accent).Bold(true)
	ModeNormalStyle = lipgloss.NewStyle().Foreground(colors.Green).Bold(true)
	ModeSearchStyle = lipgloss.NewStyle().Foreground(colors.Yellow).Bold(true)
	ErrorStyle = lipgloss.NewStyle().Foreground(colors.Red)
	DialogBoxStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colors.Accent).
		Padding(1, 2)
	DialogTitleStyle = lipgloss.NewStyle().Foreground(colors.Accent).Bold(true)
	OptionStyle = lipgloss.NewStyle().Foreground(colors.TextDim).Padding(0, 1)
	OptionActiveStyle = lipgloss.NewStyle().
		Foreground(colors.Text).
		Background(colors.SelectionBg).
		Bold(true).
		Padding(0, 1)
}

// statusStyle colors a status cell. Absent and unset statuses render plain.
func statusStyle(status *store.AgentStatus) lipgloss.Style {
	base := lipgloss.NewStyle()
	if status == nil {
		return base
	}
	switch *status {
	case store.StatusDone:
		return base.Foreground(colors.Green)
	case store.StatusWorking:
		return base.Foreground(colors.Accent)
	case store.StatusWaiting, store.StatusIdle:
		return base.Foreground(colors.Yellow)
	}
	return base
}

// centerInScreen places content in the middle of a width x height screen.
// Unknown dimensions leave content untouched.
func centerInScreen(content string, width, height int) string {
	if width <= 0 || height <= 0 {
		return content
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
