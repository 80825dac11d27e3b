package store

import (
	"encoding/json"
	"fmt"
	"strings"
)

// AgentStatus is the coarse state an operator or agent reports for a session
// or pane. A nil *AgentStatus means nothing was recorded; StatusUnset is an
// explicit "clear the status" choice.
type AgentStatus string

const (
	StatusIdle    AgentStatus = "idle"
	StatusWorking AgentStatus = "working"
	StatusWaiting AgentStatus = "waiting"
	StatusDone    AgentStatus = "done"
	StatusUnset   AgentStatus = "unset"
)

// legacyUnsetToken is how older documents spelled StatusUnset.
const legacyUnsetToken = "none"

// AllStatuses lists every status in declaration order.
var AllStatuses = []AgentStatus{StatusIdle, StatusWorking, StatusWaiting, StatusDone, StatusUnset}

// ParseStatus parses a status token case-insensitively, ignoring surrounding
// whitespace.
func ParseStatus(value string) (AgentStatus, error) {
	token := strings.ToLower(strings.TrimSpace(value))
	switch token {
	case string(StatusIdle), string(StatusWorking), string(StatusWaiting), string(StatusDone), string(StatusUnset):
		return AgentStatus(token), nil
	case legacyUnsetToken:
		return StatusUnset, nil
	}
	return "", fmt.Errorf("%w: %q (want one of idle, working, waiting, done, unset)", ErrInvalidStatus, value)
}

// String returns the canonical lowercase token.
func (s AgentStatus) String() string {
	return string(s)
}

// Ptr returns a pointer to a copy of s, for optional fields.
func (s AgentStatus) Ptr() *AgentStatus {
	return &s
}

// MarshalJSON writes the canonical token.
func (s AgentStatus) MarshalJSON() ([]byte, error) {
	if _, err := ParseStatus(string(s)); err != nil {
		return nil, err
	}
	return json.Marshal(string(s))
}

// UnmarshalJSON accepts any spelling ParseStatus accepts.
func (s *AgentStatus) UnmarshalJSON(data []byte) error {
	var token string
	if err := json.Unmarshal(data, &token); err != nil {
		return err
	}
	parsed, err := ParseStatus(token)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
