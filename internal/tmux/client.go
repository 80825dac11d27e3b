// Package tmux lists sessions and panes of the running tmux server and
// switches the attached client between them.
package tmux

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/jkl-dev/jkl/internal/logging"
)

var tmuxLog = logging.ForComponent(logging.CompTmux)

// ErrCommand is wrapped by every failed tmux invocation.
var ErrCommand = errors.New("tmux command failed")

// CommandError describes a tmux invocation that could not start or exited
// non-zero.
type CommandError struct {
	Args     []string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("tmux %s", strings.Join(e.Args, " "))
	if e.Stderr != "" {
		return fmt.Sprintf("%s: %s", msg, e.Stderr)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return fmt.Sprintf("%s: exit status %d", msg, e.ExitCode)
}

func (e *CommandError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrCommand}
	}
	return []error{ErrCommand, e.Err}
}

// SessionInfo is one live tmux session.
type SessionInfo struct {
	ID   string
	Name string
}

// PaneInfo is one live pane and the session it belongs to.
type PaneInfo struct {
	SessionName string
	PaneID      string
}

type runFunc func(ctx context.Context, binary string, args ...string) ([]byte, error)

// Client runs tmux commands through a configurable binary.
type Client struct {
	binary string
	run    runFunc
}

// NewClient returns a client for the given tmux binary ("" means "tmux").
func NewClient(binary string) *Client {
	if binary == "" {
		binary = "tmux"
	}
	return &Client{binary: binary, run: execRun}
}

func execRun(ctx context.Context, binary string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		cmdErr := &CommandError{
			Args:     args,
			ExitCode: -1,
			Stderr:   strings.TrimSpace(stderr.String()),
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			cmdErr.ExitCode = exitErr.ExitCode()
		} else {
			cmdErr.Err = err
		}
		return nil, cmdErr
	}
	return stdout.Bytes(), nil
}

// ListSessions returns every session as reported by tmux. Any tmux failure,
// including no running server, is returned as a *CommandError carrying stderr.
func (c *Client) ListSessions(ctx context.Context) ([]SessionInfo, error) {
	out, err := c.list(ctx, "list-sessions", "-F", "#{session_id}\t#{session_name}")
	if err != nil {
		return nil, err
	}
	var sessions []SessionInfo
	for _, fields := range splitPairs(out) {
		sessions = append(sessions, SessionInfo{ID: fields[0], Name: fields[1]})
	}
	tmuxLog.Debug("sessions_listed", slog.Int("count", len(sessions)))
	return sessions, nil
}

// ListPanes returns every pane of every session.
func (c *Client) ListPanes(ctx context.Context) ([]PaneInfo, error) {
	out, err := c.list(ctx, "list-panes", "-a", "-F", "#{session_name}\t#{pane_id}")
	if err != nil {
		return nil, err
	}
	var panes []PaneInfo
	for _, fields := range splitPairs(out) {
		panes = append(panes, PaneInfo{SessionName: fields[0], PaneID: fields[1]})
	}
	tmuxLog.Debug("panes_listed", slog.Int("count", len(panes)))
	return panes, nil
}

// SwitchClient points the attached client at target (a session or pane id).
func (c *Client) SwitchClient(ctx context.Context, target string) error {
	if _, err := c.run(ctx, c.binary, "switch-client", "-t", target); err != nil {
		tmuxLog.Warn("switch_client_failed", slog.String("target", target), slog.String("error", err.Error()))
		return err
	}
	tmuxLog.Info("switched_client", slog.String("target", target))
	return nil
}

func (c *Client) list(ctx context.Context, args ...string) ([]byte, error) {
	out, err := c.run(ctx, c.binary, args...)
	if err != nil {
		tmuxLog.Warn("list_failed", slog.String("command", args[0]), slog.String("error", err.Error()))
		return nil, err
	}
	return out, nil
}

// splitPairs parses "a\tb" lines, dropping lines where either field is
// empty after trimming.
func splitPairs(out []byte) [][2]string {
	var pairs [][2]string
	for _, line := range strings.Split(string(out), "\n") {
		first, second, ok := strings.Cut(line, "\t")
		if !ok {
			continue
		}
		first = strings.TrimSpace(first)
		second = strings.TrimSpace(second)
		if first == "" || second == "" {
			continue
		}
		pairs = append(pairs, [2]string{first, second})
	}
	return pairs
}
