package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// HelpOverlay lists the navigator bindings in a modal box.
type HelpOverlay struct {
	keys          KeyMap
	visible       bool
	width, height int
}

// NewHelpOverlay returns a hidden overlay describing keys.
func NewHelpOverlay(keys KeyMap) *HelpOverlay {
	return &HelpOverlay{keys: keys}
}

// Show opens the overlay.
func (h *HelpOverlay) Show() { h.visible = true }

// Hide closes the overlay.
func (h *HelpOverlay) Hide() { h.visible = false }

// IsVisible reports whether the overlay is open.
func (h *HelpOverlay) IsVisible() bool { return h.visible }

// SetSize sets the screen size used for centering.
func (h *HelpOverlay) SetSize(width, height int) {
	h.width = width
	h.height = height
}

// Update closes the overlay on any key.
func (h *HelpOverlay) Update(msg tea.Msg) (*HelpOverlay, tea.Cmd) {
	if _, ok := msg.(tea.KeyMsg); ok && h.visible {
		h.Hide()
	}
	return h, nil
}

type helpSection struct {
	title    string
	bindings []key.Binding
}

func (h *HelpOverlay) sections() []helpSection {
	k := h.keys
	return []helpSection{
		{"NAVIGATION", []key.Binding{k.Down, k.Up, k.Expand, k.Collapse}},
		{"ACTIONS", []key.Binding{k.Confirm, k.Refresh, k.Search, k.Help, k.Quit}},
		{"SEARCH MODE", k.searchHelp()},
	}
}

// View renders the overlay, or "" when hidden.
func (h *HelpOverlay) View() string {
	if !h.visible {
		return ""
	}

	keyWidth := 0
	for _, s := range h.sections() {
		for _, b := range s.bindings {
			keyWidth = max(keyWidth, runewidth.StringWidth(b.Help().Key))
		}
	}

	sectionStyle := lipgloss.NewStyle().Foreground(colors.Yellow).Bold(true)

	var lines []string
	lines = append(lines, DialogTitleStyle.Render("jkl keys"), "")
	for i, s := range h.sections() {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, sectionStyle.Render(s.title))
		for _, b := range s.bindings {
			help := b.Help()
			lines = append(lines, "  "+FooterKeyStyle.Render(runewidth.FillRight(help.Key, keyWidth))+"  "+RowStyle.Render(help.Desc))
		}
	}
	lines = append(lines, "", FooterStyle.Render("press any key to close"))

	return centerInScreen(DialogBoxStyle.Render(strings.Join(lines, "\n")), h.width, h.height)
}
