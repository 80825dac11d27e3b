package ui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"github.com/jkl-dev/jkl/internal/store"
)

func TestInitThemeSwitchesPalette(t *testing.T) {
	t.Cleanup(func() { InitTheme(ThemeDark) })

	InitTheme(ThemeLight)
	assert.Equal(t, ThemeLight, CurrentTheme())
	assert.Equal(t, lightPalette.Accent, colors.Accent)

	InitTheme("solarized")
	assert.Equal(t, ThemeDark, CurrentTheme(), "unknown themes fall back to dark")
	assert.Equal(t, darkPalette.Accent, colors.Accent)
}

func TestStatusStyleColors(t *testing.T) {
	tests := []struct {
		status *store.AgentStatus
		want   interface{}
	}{
		{store.StatusDone.Ptr(), colors.Green},
		{store.StatusWorking.Ptr(), colors.Accent},
		{store.StatusWaiting.Ptr(), colors.Yellow},
		{store.StatusIdle.Ptr(), colors.Yellow},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusStyle(tt.status).GetForeground(), tt.status.String())
	}

	_, isNoColor := statusStyle(nil).GetForeground().(lipgloss.NoColor)
	assert.True(t, isNoColor)
	_, isNoColor = statusStyle(store.StatusUnset.Ptr()).GetForeground().(lipgloss.NoColor)
	assert.True(t, isNoColor)
}

func TestCenterInScreen(t *testing.T) {
	assert.Equal(t, "box", centerInScreen("box", 0, 0))
	placed := centerInScreen("box", 9, 3)
	assert.Contains(t, placed, "   box   ")
}
