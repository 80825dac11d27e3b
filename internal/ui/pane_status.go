package ui

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jkl-dev/jkl/internal/store"
)

// PaneStatusOptions is the order the selector offers statuses in.
var PaneStatusOptions = []store.AgentStatus{
	store.StatusWorking,
	store.StatusWaiting,
	store.StatusIdle,
	store.StatusDone,
	store.StatusUnset,
}

// PaneUpdater records a pane status.
type PaneUpdater interface {
	UpsertPane(sessionName, paneID string, status *store.AgentStatus) error
}

// PaneStatusSelector picks one status for a single pane.
type PaneStatusSelector struct {
	sessionName string
	paneID      string
	cursor      int
}

// NewPaneStatusSelector starts on current, or on the first option when
// current is nil or not offered.
func NewPaneStatusSelector(sessionName, paneID string, current *store.AgentStatus) *PaneStatusSelector {
	s := &PaneStatusSelector{sessionName: sessionName, paneID: paneID}
	if current != nil {
		for i, opt := range PaneStatusOptions {
			if opt == *current {
				s.cursor = i
				break
			}
		}
	}
	return s
}

// Next moves the cursor right, wrapping.
func (s *PaneStatusSelector) Next() {
	s.cursor = (s.cursor + 1) % len(PaneStatusOptions)
}

// Prev moves the cursor left, wrapping.
func (s *PaneStatusSelector) Prev() {
	s.cursor = (s.cursor - 1 + len(PaneStatusOptions)) % len(PaneStatusOptions)
}

// Selected returns the status under the cursor.
func (s *PaneStatusSelector) Selected() store.AgentStatus {
	return PaneStatusOptions[s.cursor]
}

// Confirm writes the selected status to the pane.
func (s *PaneStatusSelector) Confirm(u PaneUpdater) error {
	status := s.Selected()
	if err := u.UpsertPane(s.sessionName, s.paneID, &status); err != nil {
		return fmt.Errorf("set status of pane %s: %w", s.paneID, err)
	}
	uiLog.Info("pane_status_selected",
		slog.String("session", s.sessionName),
		slog.String("pane", s.paneID),
		slog.String("status", status.String()))
	return nil
}

// PaneStatusDialog is the terminal front end of a PaneStatusSelector.
type PaneStatusDialog struct {
	selector *PaneStatusSelector
	updater  PaneUpdater

	width, height int

	confirmed bool
	err       error
	done      bool
}

var (
	paneStatusLeft    = key.NewBinding(key.WithKeys("left", "h", "shift+tab", "k", "up"))
	paneStatusRight   = key.NewBinding(key.WithKeys("right", "l", "tab", "j", "down"))
	paneStatusConfirm = key.NewBinding(key.WithKeys("enter"))
	paneStatusCancel  = key.NewBinding(key.WithKeys("esc", "q", "ctrl+c"))
)

// NewPaneStatusDialog returns a dialog that writes through updater.
func NewPaneStatusDialog(selector *PaneStatusSelector, updater PaneUpdater) *PaneStatusDialog {
	return &PaneStatusDialog{selector: selector, updater: updater}
}

// Confirmed reports whether a status was written.
func (d *PaneStatusDialog) Confirmed() bool { return d.confirmed }

// Err returns the error from writing the status, if any.
func (d *PaneStatusDialog) Err() error { return d.err }

// Init implements tea.Model.
func (d *PaneStatusDialog) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (d *PaneStatusDialog) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		d.width, d.height = msg.Width, msg.Height
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, paneStatusLeft):
			d.selector.Prev()
		case key.Matches(msg, paneStatusRight):
			d.selector.Next()
		case key.Matches(msg, paneStatusConfirm):
			d.err = d.selector.Confirm(d.updater)
			d.confirmed = d.err == nil
			d.done = true
			return d, tea.Quit
		case key.Matches(msg, paneStatusCancel):
			d.done = true
			return d, tea.Quit
		}
	}
	return d, nil
}

// View implements tea.Model.
func (d *PaneStatusDialog) View() string {
	if d.done {
		return ""
	}

	title := DialogTitleStyle.Render(fmt.Sprintf("Pane %s in %s", d.selector.paneID, d.selector.sessionName))

	opts := make([]string, 0, len(PaneStatusOptions))
	for i, opt := range PaneStatusOptions {
		label := strings.ToUpper(opt.String()[:1]) + opt.String()[1:]
		if i == d.selector.cursor {
			opts = append(opts, OptionActiveStyle.Render(label))
		} else {
			opts = append(opts, OptionStyle.Render(label))
		}
	}

	help := FooterStyle.Render("←/→ choose • enter set • esc cancel")
	content := lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, opts...),
		"",
		help,
	)
	return centerInScreen(DialogBoxStyle.Render(content), d.width, d.height)
}
