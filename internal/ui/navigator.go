package ui

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/jkl-dev/jkl/internal/filter"
	"github.com/jkl-dev/jkl/internal/logging"
	"github.com/jkl-dev/jkl/internal/store"
	"github.com/jkl-dev/jkl/internal/tmux"
)

var uiLog = logging.ForComponent(logging.CompUI)

// SessionSource lists live sessions and panes and switches the client.
type SessionSource interface {
	ListSessions(ctx context.Context) ([]tmux.SessionInfo, error)
	ListPanes(ctx context.Context) ([]tmux.PaneInfo, error)
	SwitchClient(ctx context.Context, target string) error
}

// MetadataStore is the part of the store the navigator reads and prunes.
type MetadataStore interface {
	Load() (store.Records, error)
	Prune(live store.LivePanes) error
}

// Mode is the navigator input mode.
type Mode int

const (
	ModeNormal Mode = iota
	ModeSearch
)

func (m Mode) String() string {
	if m == ModeSearch {
		return "SEARCH"
	}
	return "NORM"
}

// RowKind tags a display row.
type RowKind int

const (
	RowSession RowKind = iota
	RowPane
)

// PaneRow is one live pane of a session.
type PaneRow struct {
	SessionID string
	PaneID    string
	Status    *store.AgentStatus
}

// SessionRow is one live session joined with its stored metadata.
type SessionRow struct {
	ID      string
	Name    string
	Status  *store.AgentStatus
	Context string // trimmed; "" when nothing is recorded
	Panes   []PaneRow
}

// RowKey is the logical identity of a row, stable across rebuilds.
type RowKey struct {
	Kind      RowKind
	SessionID string
	PaneID    string
}

// Row is one display row: a session or one of its panes.
type Row struct {
	Kind    RowKind
	Session *SessionRow
	Pane    *PaneRow
}

// Key returns the row's logical identity.
func (r Row) Key() RowKey {
	if r.Kind == RowPane {
		return RowKey{Kind: RowPane, SessionID: r.Pane.SessionID, PaneID: r.Pane.PaneID}
	}
	return RowKey{Kind: RowSession, SessionID: r.Session.ID}
}

// SessionID returns the id of the session that owns the row.
func (r Row) SessionID() string {
	if r.Kind == RowPane {
		return r.Pane.SessionID
	}
	return r.Session.ID
}

// Navigator holds the filterable, expandable session view and its
// selection. It performs no terminal I/O.
type Navigator struct {
	source      SessionSource
	store       MetadataStore
	filter      filter.Filter
	placeholder string

	sessions []*SessionRow
	filtered []*SessionRow
	expanded map[string]bool
	rows     []Row
	selected int // -1 when rows is empty

	query string
	mode  Mode
}

// NewNavigator returns an empty navigator; call Refresh to populate it.
func NewNavigator(source SessionSource, st MetadataStore, f filter.Filter, placeholder string) *Navigator {
	if placeholder == "" {
		placeholder = "-"
	}
	return &Navigator{
		source:      source,
		store:       st,
		filter:      f,
		placeholder: placeholder,
		expanded:    make(map[string]bool),
		selected:    -1,
	}
}

// Mode returns the input mode.
func (n *Navigator) Mode() Mode { return n.mode }

// Query returns the filter query.
func (n *Navigator) Query() string { return n.query }

// Rows returns the flattened display rows.
func (n *Navigator) Rows() []Row { return n.rows }

// Sessions returns every session row of the last refresh, unfiltered.
func (n *Navigator) Sessions() []*SessionRow { return n.sessions }

// SelectedIndex returns the index of the selected row, or -1.
func (n *Navigator) SelectedIndex() int { return n.selected }

// Selected returns the selected row.
func (n *Navigator) Selected() (Row, bool) {
	if n.selected < 0 || n.selected >= len(n.rows) {
		return Row{}, false
	}
	return n.rows[n.selected], true
}

// IsExpanded reports whether a session's pane rows are shown.
func (n *Navigator) IsExpanded(sessionID string) bool { return n.expanded[sessionID] }

// Placeholder is shown for absent status or context.
func (n *Navigator) Placeholder() string { return n.placeholder }

// Refresh re-reads live sessions and panes, prunes stale pane metadata,
// reloads the store and rebuilds every row, then re-applies the query.
func (n *Navigator) Refresh(ctx context.Context) error {
	prev, hadSelection := n.selectedKey()

	sessions, err := n.source.ListSessions(ctx)
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}
	panes, err := n.source.ListPanes(ctx)
	if err != nil {
		return fmt.Errorf("list panes: %w", err)
	}

	live := make(store.LivePanes)
	for _, p := range panes {
		live.Add(p.SessionName, p.PaneID)
	}
	if err := n.store.Prune(live); err != nil {
		return fmt.Errorf("prune: %w", err)
	}
	records, err := n.store.Load()
	if err != nil {
		return fmt.Errorf("load store: %w", err)
	}

	n.sessions = buildSessionRows(sessions, live, records)

	alive := make(map[string]bool, len(n.sessions))
	for _, s := range n.sessions {
		alive[s.ID] = true
	}
	for id := range n.expanded {
		if !alive[id] {
			delete(n.expanded, id)
		}
	}

	uiLog.Debug("navigator_refreshed",
		slog.Int("sessions", len(sessions)),
		slog.Int("panes", len(panes)))
	return n.applyFilter(ctx, prev, hadSelection)
}

func buildSessionRows(sessions []tmux.SessionInfo, live store.LivePanes, records store.Records) []*SessionRow {
	rows := make([]*SessionRow, 0, len(sessions))
	for _, s := range sessions {
		rec := records.Get(s.Name)
		row := &SessionRow{ID: s.ID, Name: s.Name}
		if rec != nil {
			row.Status = rec.Status
			row.Context = strings.TrimSpace(rec.ContextText())
		}

		paneIDs := make([]string, 0, len(live[s.Name]))
		for id := range live[s.Name] {
			paneIDs = append(paneIDs, id)
		}
		sort.Slice(paneIDs, func(i, j int) bool { return store.ComparePaneIDs(paneIDs[i], paneIDs[j]) < 0 })
		for _, id := range paneIDs {
			row.Panes = append(row.Panes, PaneRow{
				SessionID: s.ID,
				PaneID:    id,
				Status:    rec.PaneStatus(id),
			})
		}
		rows = append(rows, row)
	}
	return rows
}

// MoveDown selects the next row, wrapping to the first.
func (n *Navigator) MoveDown() {
	if len(n.rows) == 0 {
		n.selected = -1
		return
	}
	n.selected = (n.selected + 1) % len(n.rows)
}

// MoveUp selects the previous row, wrapping to the last.
func (n *Navigator) MoveUp() {
	if len(n.rows) == 0 {
		n.selected = -1
		return
	}
	if n.selected <= 0 {
		n.selected = len(n.rows) - 1
		return
	}
	n.selected--
}

// EnterSearch switches to search mode and re-applies the current query.
func (n *Navigator) EnterSearch(ctx context.Context) error {
	n.mode = ModeSearch
	prev, ok := n.selectedKey()
	return n.applyFilter(ctx, prev, ok)
}

// ExitSearch returns to normal mode. The filtered view is kept.
func (n *Navigator) ExitSearch() {
	n.mode = ModeNormal
}

// SetQuery replaces the query and re-applies filtering.
func (n *Navigator) SetQuery(ctx context.Context, query string) error {
	n.query = query
	prev, ok := n.selectedKey()
	return n.applyFilter(ctx, prev, ok)
}

// Expand shows the pane rows of the selected row's session.
func (n *Navigator) Expand() {
	row, ok := n.Selected()
	if !ok {
		return
	}
	n.expanded[row.SessionID()] = true
	n.rebuildRows(row.Key(), true)
}

// Collapse hides the pane rows of the selected row's session. A selected
// pane row is gone afterwards, so selection falls back to the first row.
func (n *Navigator) Collapse() {
	row, ok := n.Selected()
	if !ok {
		return
	}
	delete(n.expanded, row.SessionID())
	n.rebuildRows(row.Key(), true)
}

// Confirm switches the client to the selected row's session. It returns
// the target, or "" when nothing is selected.
func (n *Navigator) Confirm(ctx context.Context) (string, error) {
	row, ok := n.Selected()
	if !ok {
		return "", nil
	}
	target := row.SessionID()
	if err := n.source.SwitchClient(ctx, target); err != nil {
		return "", fmt.Errorf("switch client: %w", err)
	}
	return target, nil
}

// CandidateLine renders a session as a filter candidate:
// id, name, status and context separated by tabs.
func (n *Navigator) CandidateLine(s *SessionRow) string {
	return strings.Join([]string{
		s.ID,
		filter.SanitizeField(s.Name),
		n.StatusText(s.Status),
		n.ContextText(s.Context),
	}, "\t")
}

// StatusText renders a status, using the placeholder for absent or unset.
func (n *Navigator) StatusText(status *store.AgentStatus) string {
	if status == nil || *status == store.StatusUnset {
		return n.placeholder
	}
	return status.String()
}

// ContextText renders free text on one line, or the placeholder.
func (n *Navigator) ContextText(text string) string {
	text = strings.TrimSpace(filter.SanitizeField(text))
	if text == "" {
		return n.placeholder
	}
	return text
}

func (n *Navigator) selectedKey() (RowKey, bool) {
	row, ok := n.Selected()
	if !ok {
		return RowKey{}, false
	}
	return row.Key(), true
}

func (n *Navigator) applyFilter(ctx context.Context, prev RowKey, hadSelection bool) error {
	if strings.TrimSpace(n.query) == "" {
		n.filtered = n.sessions
		n.rebuildRows(prev, hadSelection)
		return nil
	}

	candidates := make([]string, len(n.sessions))
	byID := make(map[string]*SessionRow, len(n.sessions))
	for i, s := range n.sessions {
		candidates[i] = n.CandidateLine(s)
		byID[s.ID] = s
	}

	lines, err := n.filter.Filter(ctx, n.query, candidates)
	if err != nil {
		return fmt.Errorf("filter %q: %w", n.query, err)
	}

	filtered := make([]*SessionRow, 0, len(lines))
	seen := make(map[string]bool, len(lines))
	for _, line := range lines {
		id := filter.ID(line)
		if s, ok := byID[id]; ok && !seen[id] {
			seen[id] = true
			filtered = append(filtered, s)
		}
	}
	n.filtered = filtered
	n.rebuildRows(prev, hadSelection)

	uiLog.Debug("navigator_filtered",
		slog.String("query", n.query),
		slog.Int("matches", len(filtered)))
	return nil
}

// rebuildRows flattens filtered sessions and their expanded panes, then
// selects prev if it is still present, else the first row.
func (n *Navigator) rebuildRows(prev RowKey, hadSelection bool) {
	rows := make([]Row, 0, len(n.filtered))
	for _, s := range n.filtered {
		rows = append(rows, Row{Kind: RowSession, Session: s})
		if !n.expanded[s.ID] {
			continue
		}
		for i := range s.Panes {
			rows = append(rows, Row{Kind: RowPane, Session: s, Pane: &s.Panes[i]})
		}
	}
	n.rows = rows

	if len(rows) == 0 {
		n.selected = -1
		return
	}
	n.selected = 0
	if !hadSelection {
		return
	}
	for i, r := range rows {
		if r.Key() == prev {
			n.selected = i
			return
		}
	}
}
