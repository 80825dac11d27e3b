// Package filter ranks candidate lines against a fuzzy query.
//
// Candidates are tab-delimited lines whose first field identifies the row
// they came from. A Filter returns the matching lines in rank order; no
// match is an empty result, never an error.
package filter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/jkl-dev/jkl/internal/config"
	"github.com/jkl-dev/jkl/internal/logging"
)

var filterLog = logging.ForComponent(logging.CompFilter)

// ErrFilter is wrapped by every failed filter invocation.
var ErrFilter = errors.New("fuzzy filter failed")

// Filter returns the subsequence of candidates matching query, best first.
type Filter interface {
	Filter(ctx context.Context, query string, candidates []string) ([]string, error)
}

// New returns the filter for backend (see config.Filter*). With
// config.FilterAuto, fzf is used when fzfPath resolves on PATH and the
// builtin matcher otherwise.
func New(backend, fzfPath string) (Filter, error) {
	if fzfPath == "" {
		fzfPath = "fzf"
	}
	switch backend {
	case config.FilterFzf:
		return NewFzf(fzfPath), nil
	case config.FilterBuiltin:
		return Builtin{}, nil
	case config.FilterAuto, "":
		if path, err := exec.LookPath(fzfPath); err == nil {
			filterLog.Debug("filter_selected", slog.String("backend", "fzf"), slog.String("path", path))
			return NewFzf(path), nil
		}
		filterLog.Debug("filter_selected", slog.String("backend", "builtin"))
		return Builtin{}, nil
	}
	return nil, fmt.Errorf("%w: unknown backend %q", ErrFilter, backend)
}

// ID returns the first tab-delimited field of a candidate line.
func ID(line string) string {
	id, _, _ := strings.Cut(line, "\t")
	return id
}

// SanitizeField makes free text safe to embed as one field of a candidate
// line: tabs and line breaks become spaces.
func SanitizeField(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '\t', '\n', '\r':
			return ' '
		}
		return r
	}, s)
}
