package ui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jkl-dev/jkl/internal/store"
)

func runeKey(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestHome(t *testing.T) (*Home, *fakeSource, *fakeStore) {
	t.Helper()
	nav, src, st, _ := newTestNavigator(t)
	h := NewHome(context.Background(), nav, true)
	h.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return h, src, st
}

func press(h *Home, msgs ...tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	for _, msg := range msgs {
		_, cmd = h.Update(msg)
	}
	return cmd
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestHomeNormalNavigation(t *testing.T) {
	h, _, _ := newTestHome(t)

	press(h, runeKey("j"))
	assert.Equal(t, 1, h.nav.SelectedIndex())
	press(h, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 0, h.nav.SelectedIndex(), "down wraps past the last row")
	press(h, runeKey("k"))
	assert.Equal(t, 2, h.nav.SelectedIndex())
}

func TestHomeExpandCollapseKeys(t *testing.T) {
	h, _, _ := newTestHome(t)

	press(h, runeKey("l"))
	assert.Len(t, h.nav.Rows(), 5)
	press(h, tea.KeyMsg{Type: tea.KeyLeft})
	assert.Len(t, h.nav.Rows(), 3)
}

func TestHomeSearchFlow(t *testing.T) {
	h, _, _ := newTestHome(t)

	press(h, runeKey("/"))
	assert.Equal(t, ModeSearch, h.nav.Mode())

	press(h, runeKey("b"), runeKey("e"), runeKey("t"))
	assert.Equal(t, "bet", h.nav.Query())
	assert.Equal(t, []string{"$2"}, rowKeys(h.nav))

	press(h, tea.KeyMsg{Type: tea.KeyBackspace}, tea.KeyMsg{Type: tea.KeyBackspace}, tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Equal(t, "", h.nav.Query())
	assert.Len(t, h.nav.Rows(), 3)

	press(h, runeKey("g"), runeKey("a"), runeKey("m"))
	press(h, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ModeNormal, h.nav.Mode())
	assert.Equal(t, []string{"$3"}, rowKeys(h.nav), "leaving search keeps the filtered rows")

	// Letters are navigation again in normal mode.
	press(h, runeKey("j"))
	assert.Equal(t, "gam", h.nav.Query())
}

func TestHomeSearchArrowKeysMove(t *testing.T) {
	h, _, _ := newTestHome(t)
	press(h, runeKey("/"), tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, h.nav.SelectedIndex())
	assert.Equal(t, "", h.nav.Query())
	press(h, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, h.nav.SelectedIndex())
}

func TestHomeConfirmSwitchesAndQuits(t *testing.T) {
	h, src, _ := newTestHome(t)

	press(h, runeKey("j"))
	cmd := press(h, tea.KeyMsg{Type: tea.KeyEnter})

	assert.True(t, isQuit(cmd))
	assert.Equal(t, []string{"$2"}, src.switched)
	assert.Equal(t, "$2", h.Switched())
	assert.NoError(t, h.Err())
	assert.Empty(t, h.View())
}

func TestHomeConfirmFromSearch(t *testing.T) {
	h, src, _ := newTestHome(t)

	press(h, runeKey("/"), runeKey("g"), runeKey("a"))
	cmd := press(h, tea.KeyMsg{Type: tea.KeyEnter})

	assert.True(t, isQuit(cmd))
	assert.Equal(t, []string{"$3"}, src.switched)
}

func TestHomeQuitWithoutSwitching(t *testing.T) {
	for _, msg := range []tea.KeyMsg{runeKey("q"), {Type: tea.KeyEsc}, {Type: tea.KeyCtrlC}} {
		h, src, _ := newTestHome(t)
		assert.True(t, isQuit(press(h, msg)), msg.String())
		assert.Empty(t, src.switched)
		assert.Empty(t, h.Switched())
	}

	h, src, _ := newTestHome(t)
	press(h, runeKey("/"))
	assert.True(t, isQuit(press(h, tea.KeyMsg{Type: tea.KeyCtrlC})), "ctrl+c quits from search mode")
	assert.Empty(t, src.switched)
}

func TestHomeRefreshKey(t *testing.T) {
	h, _, st := newTestHome(t)

	press(h, runeKey("r"))
	assert.Len(t, st.pruned, 2)

	st.loadErr = store.ErrIO
	cmd := press(h, runeKey("r"))
	assert.True(t, isQuit(cmd))
	assert.True(t, errors.Is(h.Err(), store.ErrIO))
}

func TestHomeView(t *testing.T) {
	h, _, _ := newTestHome(t)
	press(h, runeKey("l"))

	view := h.View()
	assert.Contains(t, view, "Session")
	assert.Contains(t, view, "Status")
	assert.Contains(t, view, "Context")
	assert.Contains(t, view, "alpha (2)")
	assert.Contains(t, view, "└ %1")
	assert.Contains(t, view, "working")
	assert.Contains(t, view, "compiling")
	assert.Contains(t, view, "[NORM]")

	press(h, runeKey("/"))
	assert.Contains(t, h.View(), "[SEARCH]")
}

func TestHomeViewEmptyStates(t *testing.T) {
	h, _, _ := newTestHome(t)
	press(h, runeKey("/"), runeKey("z"), runeKey("z"))
	assert.Contains(t, h.View(), "No sessions match the query")

	nav := NewNavigator(&fakeSource{}, &fakeStore{records: store.Records{}}, &substringFilter{}, "-")
	require.NoError(t, nav.Refresh(context.Background()))
	empty := NewHome(context.Background(), nav, false)
	assert.Contains(t, empty.View(), "No tmux sessions")
}

func TestHomeViewKeepsSelectionVisible(t *testing.T) {
	h, _, _ := newTestHome(t)
	h.Update(tea.WindowSizeMsg{Width: 80, Height: chromeLines + 2})

	press(h, runeKey("k"))
	view := h.View()
	assert.Contains(t, view, "gamma")
	assert.False(t, strings.Contains(view, "alpha"), "first row scrolls out of view")
}

func TestHomeHelpOverlay(t *testing.T) {
	h, src, _ := newTestHome(t)

	press(h, runeKey("?"))
	view := h.View()
	assert.Contains(t, view, "jkl keys")
	assert.Contains(t, view, "SEARCH MODE")
	assert.Contains(t, view, "expand")

	// The closing key is swallowed by the overlay.
	cmd := press(h, tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, isQuit(cmd))
	assert.Empty(t, src.switched)
	assert.Contains(t, h.View(), "[NORM]")
}
