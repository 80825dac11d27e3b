package store

import (
	"crypto/sha256"
	"encoding/hex"
)

// SessionKey derives the identity key for a session name: the hex SHA-256
// of the name. Session ids issued by tmux are reused, names are not.
func SessionKey(sessionName string) string {
	sum := sha256.Sum256([]byte(sessionName))
	return hex.EncodeToString(sum[:])
}
