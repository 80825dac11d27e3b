package store

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in   string
		want AgentStatus
	}{
		{"idle", StatusIdle},
		{"  Working ", StatusWorking},
		{"WAITING", StatusWaiting},
		{"done\n", StatusDone},
		{"unset", StatusUnset},
		{"None", StatusUnset},
	}
	for _, tt := range tests {
		got, err := ParseStatus(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParseStatusRejectsUnknown(t *testing.T) {
	for _, in := range []string{"", "busy", "work ing"} {
		_, err := ParseStatus(in)
		require.Error(t, err, in)
		assert.True(t, errors.Is(err, ErrInvalidStatus), in)
	}
}

func TestStatusJSONUsesCanonicalToken(t *testing.T) {
	for _, status := range AllStatuses {
		data, err := json.Marshal(status)
		require.NoError(t, err)
		assert.Equal(t, `"`+status.String()+`"`, string(data))
	}

	_, err := json.Marshal(AgentStatus("bogus"))
	assert.Error(t, err)
}
