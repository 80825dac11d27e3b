package ui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

const (
	colSession = "Session"
	colStatus  = "Status"
	colContext = "Context"
	colGap     = 2

	// header, column titles, footer
	chromeLines = 3
)

// Home is the navigator screen. It owns the terminal side (input, layout)
// and drives a Navigator for everything else.
type Home struct {
	ctx   context.Context
	nav   *Navigator
	keys  KeyMap
	input textinput.Model
	help  *HelpOverlay

	showPaneCount bool
	width, height int

	switched string
	err      error
	quitting bool
}

// NewHome returns the navigator screen for nav, which should already be
// refreshed.
func NewHome(ctx context.Context, nav *Navigator, showPaneCount bool) *Home {
	ti := textinput.New()
	ti.Prompt = "Search: "
	ti.Placeholder = "type to filter"
	ti.CharLimit = 256
	ti.SetValue(nav.Query())

	keys := DefaultKeyMap()
	return &Home{
		ctx:           ctx,
		nav:           nav,
		keys:          keys,
		input:         ti,
		help:          NewHelpOverlay(keys),
		showPaneCount: showPaneCount,
	}
}

// Switched returns the session id the client was switched to, or "".
func (h *Home) Switched() string { return h.switched }

// Err returns the error that ended the program, if any.
func (h *Home) Err() error { return h.err }

// Init implements tea.Model.
func (h *Home) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (h *Home) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		h.width = msg.Width
		h.height = msg.Height
		h.input.Width = max(msg.Width-len(h.input.Prompt)-1, 10)
		h.help.SetSize(msg.Width, msg.Height)
		return h, nil

	case tea.KeyMsg:
		if key.Matches(msg, h.keys.ForceQuit) {
			return h.quit(nil)
		}
		if h.help.IsVisible() {
			h.help, _ = h.help.Update(msg)
			return h, nil
		}
		if h.nav.Mode() == ModeSearch {
			return h.handleSearchKey(msg)
		}
		return h.handleNormalKey(msg)
	}
	return h, nil
}

func (h *Home) handleNormalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, h.keys.Down):
		h.nav.MoveDown()
	case key.Matches(msg, h.keys.Up):
		h.nav.MoveUp()
	case key.Matches(msg, h.keys.Expand):
		h.nav.Expand()
	case key.Matches(msg, h.keys.Collapse):
		h.nav.Collapse()
	case key.Matches(msg, h.keys.Search):
		h.input.SetValue(h.nav.Query())
		h.input.CursorEnd()
		cmd := h.input.Focus()
		if err := h.nav.EnterSearch(h.ctx); err != nil {
			return h.quit(err)
		}
		return h, cmd
	case key.Matches(msg, h.keys.Refresh):
		if err := h.nav.Refresh(h.ctx); err != nil {
			return h.quit(err)
		}
	case key.Matches(msg, h.keys.Confirm):
		return h.confirm()
	case key.Matches(msg, h.keys.Help):
		h.help.Show()
	case key.Matches(msg, h.keys.Quit):
		return h.quit(nil)
	}
	return h, nil
}

func (h *Home) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, h.keys.Cancel):
		h.input.Blur()
		h.nav.ExitSearch()
		return h, nil
	case key.Matches(msg, h.keys.Confirm):
		return h.confirm()
	case key.Matches(msg, searchDown):
		h.nav.MoveDown()
		return h, nil
	case key.Matches(msg, searchUp):
		h.nav.MoveUp()
		return h, nil
	}

	var cmd tea.Cmd
	h.input, cmd = h.input.Update(msg)
	if value := h.input.Value(); value != h.nav.Query() {
		if err := h.nav.SetQuery(h.ctx, value); err != nil {
			return h.quit(err)
		}
	}
	return h, cmd
}

func (h *Home) confirm() (tea.Model, tea.Cmd) {
	target, err := h.nav.Confirm(h.ctx)
	if err != nil {
		return h.quit(err)
	}
	h.switched = target
	return h.quit(nil)
}

func (h *Home) quit(err error) (tea.Model, tea.Cmd) {
	if err != nil {
		uiLog.Error("navigator_failed", slog.String("error", err.Error()))
	}
	h.err = err
	h.quitting = true
	return h, tea.Quit
}

// View implements tea.Model.
func (h *Home) View() string {
	if h.quitting {
		return ""
	}
	if h.help.IsVisible() {
		return h.help.View()
	}

	var b strings.Builder
	b.WriteString(h.renderHeader())
	b.WriteString("\n")
	b.WriteString(h.renderTable())
	b.WriteString(h.renderFooter())
	return b.String()
}

func (h *Home) renderHeader() string {
	if h.nav.Mode() == ModeSearch {
		return h.input.View()
	}
	if h.nav.Query() == "" {
		return SearchEmptyStyle.Render("Search: ")
	}
	return SearchPromptStyle.Render("Search: ") + h.nav.Query()
}

type columnWidths struct {
	name, status, context int
}

func (h *Home) measure(rows []Row) columnWidths {
	w := columnWidths{
		name:    runewidth.StringWidth(colSession),
		status:  runewidth.StringWidth(colStatus),
		context: runewidth.StringWidth(colContext),
	}
	for _, r := range rows {
		w.name = max(w.name, runewidth.StringWidth(h.nameCell(r)))
		w.status = max(w.status, runewidth.StringWidth(h.statusText(r)))
		if r.Kind == RowSession {
			w.context = max(w.context, runewidth.StringWidth(h.nav.ContextText(r.Session.Context)))
		}
	}
	if h.width > 0 {
		remaining := h.width - w.name - w.status - 2*colGap
		if remaining < w.context {
			w.context = max(remaining, 0)
		}
	}
	return w
}

func (h *Home) nameCell(r Row) string {
	if r.Kind == RowPane {
		return "    └ " + r.Pane.PaneID
	}
	marker := "  "
	if len(r.Session.Panes) > 0 {
		if h.nav.IsExpanded(r.Session.ID) {
			marker = "▾ "
		} else {
			marker = "▸ "
		}
	}
	name := marker + r.Session.Name
	if h.showPaneCount && len(r.Session.Panes) > 0 {
		name += fmt.Sprintf(" (%d)", len(r.Session.Panes))
	}
	return name
}

func (h *Home) statusText(r Row) string {
	if r.Kind == RowPane {
		return h.nav.StatusText(r.Pane.Status)
	}
	return h.nav.StatusText(r.Session.Status)
}

func (h *Home) renderTable() string {
	rows := h.nav.Rows()
	w := h.measure(rows)

	var b strings.Builder
	b.WriteString(ColumnTitleStyle.Render(h.formatLine(colSession, colStatus, colContext, w)))
	b.WriteString("\n")

	if len(rows) == 0 {
		msg := "No tmux sessions"
		if strings.TrimSpace(h.nav.Query()) != "" {
			msg = "No sessions match the query"
		}
		b.WriteString(PlaceholderStyle.Render(msg))
		b.WriteString("\n")
		return b.String()
	}

	start, end := h.visibleRange(len(rows))
	sessionIndex := 0
	for i := 0; i < end; i++ {
		r := rows[i]
		if r.Kind == RowSession && i > 0 {
			sessionIndex++
		}
		if i < start {
			continue
		}

		status := h.statusText(r)
		note := ""
		if r.Kind == RowSession {
			note = h.nav.ContextText(r.Session.Context)
		}
		line := h.formatLine(h.nameCell(r), status, note, w)

		switch {
		case i == h.nav.SelectedIndex():
			line = RowSelectedStyle.Render(h.padToWidth(line))
		default:
			line = h.styleCells(r, status, note, w, sessionIndex%2 == 1)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// visibleRange returns the window of rows that fits the screen and keeps the
// selection in view.
func (h *Home) visibleRange(total int) (int, int) {
	if h.height <= 0 {
		return 0, total
	}
	visible := max(h.height-chromeLines, 1)
	if total <= visible {
		return 0, total
	}
	start := 0
	if sel := h.nav.SelectedIndex(); sel >= visible {
		start = sel - visible + 1
	}
	return start, min(start+visible, total)
}

func (h *Home) formatLine(name, status, note string, w columnWidths) string {
	gap := strings.Repeat(" ", colGap)
	return runewidth.FillRight(runewidth.Truncate(name, w.name, "…"), w.name) + gap +
		runewidth.FillRight(status, w.status) + gap +
		runewidth.Truncate(note, w.context, "…")
}

func (h *Home) styleCells(r Row, status, note string, w columnWidths, alt bool) string {
	base := RowStyle
	if alt {
		base = RowAltStyle
	}
	if r.Kind == RowPane {
		base = PaneRowStyle
	}

	statusPtr := r.Session.Status
	if r.Kind == RowPane {
		statusPtr = r.Pane.Status
	}
	statusCell := runewidth.FillRight(status, w.status)
	if status == h.nav.Placeholder() {
		statusCell = PlaceholderStyle.Render(statusCell)
	} else {
		statusCell = statusStyle(statusPtr).Render(statusCell)
	}

	contextCell := runewidth.Truncate(note, w.context, "…")
	if note == h.nav.Placeholder() {
		contextCell = PlaceholderStyle.Render(contextCell)
	} else {
		contextCell = base.Render(contextCell)
	}

	gap := strings.Repeat(" ", colGap)
	name := runewidth.FillRight(runewidth.Truncate(h.nameCell(r), w.name, "…"), w.name)
	return base.Render(name) + gap + statusCell + gap + contextCell
}

func (h *Home) padToWidth(line string) string {
	if h.width <= 0 {
		return line
	}
	return runewidth.FillRight(line, h.width)
}

func (h *Home) renderFooter() string {
	bindings := h.keys.normalHelp()
	badge := ModeNormalStyle.Render("[NORM]")
	if h.nav.Mode() == ModeSearch {
		bindings = h.keys.searchHelp()
		badge = ModeSearchStyle.Render("[SEARCH]")
	}

	parts := make([]string, 0, len(bindings))
	for _, kb := range bindings {
		help := kb.Help()
		parts = append(parts, FooterKeyStyle.Render(help.Key)+" "+FooterStyle.Render(help.Desc))
	}
	help := strings.Join(parts, FooterStyle.Render(" • "))

	if h.width <= 0 {
		return help + "  " + badge
	}
	space := h.width - lipgloss.Width(help) - lipgloss.Width(badge)
	if space < 1 {
		space = 1
	}
	return help + strings.Repeat(" ", space) + badge
}
