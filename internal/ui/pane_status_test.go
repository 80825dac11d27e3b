package ui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jkl-dev/jkl/internal/store"
)

type paneWrite struct {
	session, pane string
	status        *store.AgentStatus
}

type fakePaneUpdater struct {
	writes []paneWrite
	err    error
}

func (f *fakePaneUpdater) UpsertPane(sessionName, paneID string, status *store.AgentStatus) error {
	if f.err != nil {
		return f.err
	}
	f.writes = append(f.writes, paneWrite{session: sessionName, pane: paneID, status: status})
	return nil
}

func TestPaneStatusSelectorInitialCursor(t *testing.T) {
	tests := []struct {
		name    string
		current *store.AgentStatus
		want    store.AgentStatus
	}{
		{"absent", nil, store.StatusWorking},
		{"idle", store.StatusIdle.Ptr(), store.StatusIdle},
		{"unset", store.StatusUnset.Ptr(), store.StatusUnset},
		{"unknown", store.AgentStatus("bogus").Ptr(), store.StatusWorking},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewPaneStatusSelector("web", "%1", tt.current)
			assert.Equal(t, tt.want, s.Selected())
		})
	}
}

func TestPaneStatusSelectorWraps(t *testing.T) {
	s := NewPaneStatusSelector("web", "%1", nil)
	s.Prev()
	assert.Equal(t, store.StatusUnset, s.Selected())
	s.Next()
	assert.Equal(t, store.StatusWorking, s.Selected())
	for range PaneStatusOptions {
		s.Next()
	}
	assert.Equal(t, store.StatusWorking, s.Selected())
}

func TestPaneStatusSelectorConfirm(t *testing.T) {
	u := &fakePaneUpdater{}
	s := NewPaneStatusSelector("web", "%3", store.StatusWaiting.Ptr())
	s.Next()

	require.NoError(t, s.Confirm(u))
	require.Len(t, u.writes, 1)
	assert.Equal(t, "web", u.writes[0].session)
	assert.Equal(t, "%3", u.writes[0].pane)
	assert.Equal(t, store.StatusIdle, *u.writes[0].status)
}

func TestPaneStatusDialogConfirm(t *testing.T) {
	u := &fakePaneUpdater{}
	d := NewPaneStatusDialog(NewPaneStatusSelector("web", "%3", nil), u)

	d.Update(tea.KeyMsg{Type: tea.KeyRight})
	d.Update(runeKey("l"))
	assert.Contains(t, d.View(), "Pane %3 in web")
	_, cmd := d.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.True(t, isQuit(cmd))
	assert.True(t, d.Confirmed())
	assert.NoError(t, d.Err())
	require.Len(t, u.writes, 1)
	assert.Equal(t, store.StatusIdle, *u.writes[0].status)
}

func TestPaneStatusDialogCancel(t *testing.T) {
	u := &fakePaneUpdater{}
	d := NewPaneStatusDialog(NewPaneStatusSelector("web", "%3", nil), u)

	d.Update(tea.KeyMsg{Type: tea.KeyLeft})
	_, cmd := d.Update(tea.KeyMsg{Type: tea.KeyEsc})

	assert.True(t, isQuit(cmd))
	assert.False(t, d.Confirmed())
	assert.Empty(t, u.writes)
}

func TestPaneStatusDialogWriteError(t *testing.T) {
	u := &fakePaneUpdater{err: store.ErrIO}
	d := NewPaneStatusDialog(NewPaneStatusSelector("web", "%3", nil), u)

	d.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, d.Confirmed())
	assert.True(t, errors.Is(d.Err(), store.ErrIO))
}
