package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionKeyDeterministic(t *testing.T) {
	names := []string{"", "build-agent", "build-agent ", "Build-Agent", "日本語"}
	seen := make(map[string]string)
	for _, name := range names {
		key := SessionKey(name)
		assert.Len(t, key, 64)
		assert.Equal(t, key, SessionKey(name), "key must be stable for %q", name)
		if other, dup := seen[key]; dup {
			t.Fatalf("names %q and %q share key %s", other, name, key)
		}
		seen[key] = name
	}
}

func TestSessionKeyKnownValue(t *testing.T) {
	// sha256("abc")
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", SessionKey("abc"))
}

func TestComparePaneIDs(t *testing.T) {
	assert.Negative(t, ComparePaneIDs("%1", "%2"))
	assert.Negative(t, ComparePaneIDs("%2", "%10"))
	assert.Positive(t, ComparePaneIDs("%10", "%9"))
	assert.Zero(t, ComparePaneIDs("%4", "%4"))
	assert.Negative(t, ComparePaneIDs("a", "b"))
	assert.Negative(t, ComparePaneIDs("%1", "x1"))
}

func TestMergeIsAdditive(t *testing.T) {
	dst := &SessionRecord{
		Context: strp("keep"),
		Panes:   map[string]*PaneRecord{"%1": {Status: StatusDone.Ptr()}},
	}
	src := &SessionRecord{
		SessionName: strp("n"),
		Status:      StatusIdle.Ptr(),
		Context:     strp("drop"),
		Panes: map[string]*PaneRecord{
			"%1": {Status: StatusWorking.Ptr()},
			"%2": {Status: StatusWaiting.Ptr()},
		},
	}

	Merge(dst, src)

	assert.Equal(t, "n", dst.Name())
	assert.Equal(t, StatusIdle, *dst.Status)
	assert.Equal(t, "keep", dst.ContextText())
	assert.Equal(t, StatusDone, *dst.PaneStatus("%1"))
	assert.Equal(t, StatusWaiting, *dst.PaneStatus("%2"))
}
