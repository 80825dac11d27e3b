package store

import (
	"strconv"
	"strings"
)

// ComparePaneIDs orders pane ids ascending. tmux ids look like "%12"; when
// both ids carry a numeric suffix after the same prefix they compare by
// number, so "%2" sorts before "%10". Anything else compares as strings.
func ComparePaneIDs(a, b string) int {
	pa, na, okA := splitPaneID(a)
	pb, nb, okB := splitPaneID(b)
	if okA && okB && pa == pb && na != nb {
		if na < nb {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

func splitPaneID(id string) (string, int, bool) {
	i := len(id)
	for i > 0 && id[i-1] >= '0' && id[i-1] <= '9' {
		i--
	}
	if i == len(id) {
		return id, 0, false
	}
	n, err := strconv.Atoi(id[i:])
	if err != nil {
		return id, 0, false
	}
	return id[:i], n, true
}
