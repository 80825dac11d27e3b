package ui

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchHelpDescribesLiveBindings(t *testing.T) {
	bindings := DefaultKeyMap().searchHelp()
	require.Len(t, bindings, 4)

	for _, msg := range []tea.KeyMsg{{Type: tea.KeyDown}, {Type: tea.KeyCtrlN}, {Type: tea.KeyCtrlJ}} {
		assert.True(t, key.Matches(msg, bindings[0]), msg.String())
	}
	for _, msg := range []tea.KeyMsg{{Type: tea.KeyUp}, {Type: tea.KeyCtrlP}, {Type: tea.KeyCtrlK}} {
		assert.True(t, key.Matches(msg, bindings[1]), msg.String())
	}
	assert.Equal(t, "next row", bindings[0].Help().Desc)
	assert.Equal(t, "previous row", bindings[1].Help().Desc)

	for _, b := range bindings {
		assert.NotEmpty(t, b.Help().Key)
	}
}
