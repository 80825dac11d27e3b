package filter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// CommandError is returned when fzf cannot start or exits with a code other
// than 0 (matches) or 1 (no matches).
type CommandError struct {
	ExitCode int
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("fzf exited %d: %s", e.ExitCode, e.Stderr)
	}
	if e.Err != nil {
		return fmt.Sprintf("fzf: %v", e.Err)
	}
	return fmt.Sprintf("fzf exited %d", e.ExitCode)
}

func (e *CommandError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrFilter}
	}
	return []error{ErrFilter, e.Err}
}

// Fzf filters through `fzf --filter`.
type Fzf struct {
	path string
	run  func(ctx context.Context, path string, args []string, stdin []byte) (stdout []byte, exitCode int, stderr string, err error)
}

// NewFzf returns a filter invoking the fzf binary at path.
func NewFzf(path string) *Fzf {
	return &Fzf{path: path, run: execFzf}
}

func execFzf(ctx context.Context, path string, args []string, stdin []byte) ([]byte, int, string, error) {
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdin = bytes.NewReader(stdin)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return stdout.Bytes(), exitErr.ExitCode(), strings.TrimSpace(stderr.String()), nil
	}
	if err != nil {
		return nil, -1, "", err
	}
	return stdout.Bytes(), 0, "", nil
}

// Filter implements Filter.
func (f *Fzf) Filter(ctx context.Context, query string, candidates []string) ([]string, error) {
	var input bytes.Buffer
	for _, line := range candidates {
		input.WriteString(line)
		input.WriteByte('\n')
	}

	out, code, stderr, err := f.run(ctx, f.path, []string{"--filter", query}, input.Bytes())
	if err != nil {
		return nil, &CommandError{ExitCode: -1, Err: err}
	}
	switch code {
	case 0:
	case 1:
		filterLog.Debug("fzf_no_match", slog.String("query", query))
		return nil, nil
	default:
		filterLog.Warn("fzf_failed", slog.Int("exit_code", code), slog.String("stderr", stderr))
		return nil, &CommandError{ExitCode: code, Stderr: stderr}
	}

	var matches []string
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimRight(line, "\r")
		if line != "" {
			matches = append(matches, line)
		}
	}
	filterLog.Debug("fzf_filtered",
		slog.String("query", query),
		slog.Int("candidates", len(candidates)),
		slog.Int("matches", len(matches)))
	return matches, nil
}
