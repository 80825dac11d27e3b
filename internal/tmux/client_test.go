package tmux

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCall struct {
	binary string
	args   []string
}

// fakeRunner returns a client whose commands answer with out/err and
// records every invocation.
func fakeRunner(out string, err error) (*Client, *[]fakeCall) {
	var calls []fakeCall
	c := &Client{binary: "tmux-test", run: func(_ context.Context, binary string, args ...string) ([]byte, error) {
		calls = append(calls, fakeCall{binary: binary, args: args})
		if err != nil {
			return nil, err
		}
		return []byte(out), nil
	}}
	return c, &calls
}

func TestListSessionsParsesLines(t *testing.T) {
	c, calls := fakeRunner("$0\tmain\n$1\tbuild agent\n\t\n$2\t\nno-tab\n $3 \t tail \n", nil)

	sessions, err := c.ListSessions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []SessionInfo{
		{ID: "$0", Name: "main"},
		{ID: "$1", Name: "build agent"},
		{ID: "$3", Name: "tail"},
	}, sessions)

	require.Len(t, *calls, 1)
	assert.Equal(t, "tmux-test", (*calls)[0].binary)
	assert.Equal(t, []string{"list-sessions", "-F", "#{session_id}\t#{session_name}"}, (*calls)[0].args)
}

func TestListPanesParsesLines(t *testing.T) {
	c, calls := fakeRunner("main\t%0\nmain\t%3\nweb\t%1\n", nil)

	panes, err := c.ListPanes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []PaneInfo{
		{SessionName: "main", PaneID: "%0"},
		{SessionName: "main", PaneID: "%3"},
		{SessionName: "web", PaneID: "%1"},
	}, panes)
	assert.Equal(t, []string{"list-panes", "-a", "-F", "#{session_name}\t#{pane_id}"}, (*calls)[0].args)
}

func TestListWithoutServerReportsStderr(t *testing.T) {
	for _, stderr := range []string{
		"no server running on /tmp/tmux-1000/default",
		"error connecting to /tmp/tmux-1000/broken (No such file or directory)",
	} {
		c, _ := fakeRunner("", &CommandError{Args: []string{"list-sessions"}, ExitCode: 1, Stderr: stderr})

		sessions, err := c.ListSessions(context.Background())
		require.Error(t, err, stderr)
		assert.Nil(t, sessions)
		assert.True(t, errors.Is(err, ErrCommand))
		assert.Contains(t, err.Error(), stderr)

		panes, err := c.ListPanes(context.Background())
		require.Error(t, err, stderr)
		assert.Nil(t, panes)
		var cmdErr *CommandError
		require.True(t, errors.As(err, &cmdErr))
		assert.Equal(t, stderr, cmdErr.Stderr)
	}
}

func TestListFailurePropagates(t *testing.T) {
	c, _ := fakeRunner("", &CommandError{Args: []string{"list-sessions"}, ExitCode: 1, Stderr: "unknown format"})

	_, err := c.ListSessions(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCommand))
	assert.Contains(t, err.Error(), "unknown format")
}

func TestSwitchClient(t *testing.T) {
	c, calls := fakeRunner("", nil)
	require.NoError(t, c.SwitchClient(context.Background(), "%4"))
	assert.Equal(t, []string{"switch-client", "-t", "%4"}, (*calls)[0].args)

	c, _ = fakeRunner("", &CommandError{Args: []string{"switch-client", "-t", "$9"}, ExitCode: 1, Stderr: "can't find session: $9"})
	err := c.SwitchClient(context.Background(), "$9")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCommand))
}

func TestCommandErrorMessage(t *testing.T) {
	err := &CommandError{Args: []string{"list-panes", "-a"}, ExitCode: 2}
	assert.Equal(t, "tmux list-panes -a: exit status 2", err.Error())

	wrapped := errors.New("exec: not found")
	err = &CommandError{Args: []string{"list-sessions"}, ExitCode: -1, Err: wrapped}
	assert.True(t, errors.Is(err, wrapped))
	assert.True(t, errors.Is(err, ErrCommand))
}

func TestNewClientDefaultsBinary(t *testing.T) {
	assert.Equal(t, "tmux", NewClient("").binary)
	assert.Equal(t, "/opt/tmux", NewClient("/opt/tmux").binary)
}
