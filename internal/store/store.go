// Package store persists operator metadata for tmux sessions and panes.
//
// Records are keyed by SessionKey(session name) rather than by the tmux
// session id, which tmux reuses. Every mutation is a full load-mutate-save
// cycle against one JSON document; saves go through a temp file and an
// atomic rename so readers never see a partial document.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jkl-dev/jkl/internal/logging"
)

var storeLog = logging.ForComponent(logging.CompStore)

// LivePanes maps a session name to the set of pane ids tmux reports for it.
type LivePanes map[string]map[string]struct{}

// Add records one live pane.
func (l LivePanes) Add(sessionName, paneID string) {
	set, ok := l[sessionName]
	if !ok {
		set = make(map[string]struct{})
		l[sessionName] = set
	}
	set[paneID] = struct{}{}
}

// Store is a handle on the metadata document at a fixed path. It holds no
// state between calls: every operation reads the document fresh.
type Store struct {
	path string
}

// New returns a store backed by the document at path.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing document path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the document. A missing document is created empty. Records are
// re-keyed by their session name on the way in; see normalize.
func (s *Store) Load() (Records, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		records := make(Records)
		if err := s.Save(records); err != nil {
			return nil, err
		}
		storeLog.Info("store_created", slog.String("path", s.path))
		return records, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrIO, s.path, err)
	}

	raw := make(Records)
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformedStore, s.path, err)
	}

	records, rekeyed := normalize(raw)
	if rekeyed > 0 {
		storeLog.Info("store_rekeyed", slog.Int("records", rekeyed))
	}
	return records, nil
}

// Save writes records to a temp file next to the document, syncs it, and
// renames it over the document. On failure the previous document is intact.
func (s *Store) Save(records Records) error {
	if records == nil {
		records = make(Records)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("%w: create %s: %w", ErrIO, dir, err)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session contexts: %w", err)
	}
	data = append(data, '\n')

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("%w: write temp file: %w", ErrIO, err)
	}
	if err := syncFile(tmpPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: sync temp file: %w", ErrIO, err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: rename temp file: %w", ErrIO, err)
	}

	storeLog.Debug("store_saved", slog.Int("records", len(records)))
	return nil
}

func syncFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}

// SessionUpdate carries the optional fields of UpsertSession. Nil fields are
// left as they are.
type SessionUpdate struct {
	SessionID *string
	Status    *AgentStatus
	Context   *string
}

// UpsertSession records metadata for a session name and returns its key.
// The name is always written; every other field only when supplied, and a
// supplied session id replaces the previous one.
func (s *Store) UpsertSession(name string, update SessionUpdate) (string, error) {
	records, err := s.Load()
	if err != nil {
		return "", err
	}

	key := SessionKey(name)
	rec := records.entry(key)
	rec.SessionName = stringPtr(name)
	if update.SessionID != nil {
		rec.SessionID = stringPtr(*update.SessionID)
	}
	if update.Status != nil {
		rec.Status = update.Status.Ptr()
	}
	if update.Context != nil {
		rec.Context = stringPtr(*update.Context)
	}

	if err := s.Save(records); err != nil {
		return "", err
	}
	storeLog.Info("session_upserted",
		slog.String("session", name),
		slog.String("key", key),
		slog.Bool("status_set", update.Status != nil),
		slog.Bool("context_set", update.Context != nil))
	return key, nil
}

// UpsertPane sets the status of one pane of a session, creating the session
// and pane records as needed. status is written as given: nil removes the
// recorded status, StatusUnset records an explicit clear.
func (s *Store) UpsertPane(sessionName, paneID string, status *AgentStatus) error {
	records, err := s.Load()
	if err != nil {
		return err
	}

	rec := records.entry(SessionKey(sessionName))
	rec.SessionName = stringPtr(sessionName)
	pane := rec.pane(paneID)
	if status != nil {
		pane.Status = status.Ptr()
	} else {
		pane.Status = nil
	}

	if err := s.Save(records); err != nil {
		return err
	}
	storeLog.Info("pane_upserted",
		slog.String("session", sessionName),
		slog.String("pane", paneID),
		slog.Any("status", status))
	return nil
}

// RenameSession carries a record across a tmux rename. The record whose
// session id equals oldID is relabelled with newName and oldID, then merged
// additively into the record at SessionKey(newName). Fields already set on
// that record win, session id included. With no match a fresh record is
// created.
func (s *Store) RenameSession(oldID, newName string) error {
	records, err := s.Load()
	if err != nil {
		return err
	}

	var moved *SessionRecord
	for _, key := range records.sortedKeys() {
		rec := records[key]
		if rec != nil && rec.SessionID != nil && *rec.SessionID == oldID {
			moved = rec
			delete(records, key)
			storeLog.Debug("rename_source_found", slog.String("from_key", key))
			break
		}
	}

	matched := moved != nil
	if moved == nil {
		moved = &SessionRecord{}
	}
	moved.SessionName = stringPtr(newName)
	moved.SessionID = stringPtr(oldID)
	Merge(records.entry(SessionKey(newName)), moved)

	if err := s.Save(records); err != nil {
		return err
	}
	storeLog.Info("session_renamed",
		slog.String("session_id", oldID),
		slog.String("new_name", newName),
		slog.Bool("matched", matched))
	return nil
}

// Prune drops pane records that tmux no longer reports. Only sessions whose
// name appears in live are touched; session records and their scalar fields
// are never removed.
func (s *Store) Prune(live LivePanes) error {
	records, err := s.Load()
	if err != nil {
		return err
	}

	dropped := 0
	for _, rec := range records {
		if rec == nil || rec.SessionName == nil {
			continue
		}
		liveIDs, ok := live[*rec.SessionName]
		if !ok {
			continue
		}
		for paneID := range rec.Panes {
			if _, alive := liveIDs[paneID]; !alive {
				delete(rec.Panes, paneID)
				dropped++
			}
		}
	}

	if err := s.Save(records); err != nil {
		return err
	}
	storeLog.Info("panes_pruned", slog.Int("dropped", dropped), slog.Int("live_sessions", len(live)))
	return nil
}
