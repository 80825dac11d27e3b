package store

import "sort"

// PaneRecord is the metadata kept for one pane of a session.
type PaneRecord struct {
	Status *AgentStatus `json:"status,omitempty"`
}

// SessionRecord is the metadata kept for one session identity.
type SessionRecord struct {
	SessionName *string                `json:"session_name,omitempty"`
	SessionID   *string                `json:"session_id,omitempty"`
	Status      *AgentStatus           `json:"status,omitempty"`
	Context     *string                `json:"context,omitempty"`
	Panes       map[string]*PaneRecord `json:"panes,omitempty"`
}

// Records maps identity keys to session records.
type Records map[string]*SessionRecord

// Name returns the recorded session name or "".
func (r *SessionRecord) Name() string {
	if r == nil || r.SessionName == nil {
		return ""
	}
	return *r.SessionName
}

// ID returns the last seen tmux session id or "".
func (r *SessionRecord) ID() string {
	if r == nil || r.SessionID == nil {
		return ""
	}
	return *r.SessionID
}

// ContextText returns the free-text context or "".
func (r *SessionRecord) ContextText() string {
	if r == nil || r.Context == nil {
		return ""
	}
	return *r.Context
}

// PaneStatus returns the recorded status of a pane, or nil.
func (r *SessionRecord) PaneStatus(paneID string) *AgentStatus {
	if r == nil {
		return nil
	}
	if pane, ok := r.Panes[paneID]; ok && pane != nil {
		return pane.Status
	}
	return nil
}

// pane returns the pane sub-record, creating it if absent.
func (r *SessionRecord) pane(paneID string) *PaneRecord {
	if r.Panes == nil {
		r.Panes = make(map[string]*PaneRecord)
	}
	pane, ok := r.Panes[paneID]
	if !ok || pane == nil {
		pane = &PaneRecord{}
		r.Panes[paneID] = pane
	}
	return pane
}

// PaneIDs returns the recorded pane ids in ascending order.
func (r *SessionRecord) PaneIDs() []string {
	if r == nil {
		return nil
	}
	ids := make([]string, 0, len(r.Panes))
	for id := range r.Panes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ComparePaneIDs(ids[i], ids[j]) < 0 })
	return ids
}

// Merge fills every empty field of dst from src, pane by pane. A field of dst
// that already holds a value is never replaced.
func Merge(dst, src *SessionRecord) {
	if dst == nil || src == nil {
		return
	}
	if dst.SessionName == nil {
		dst.SessionName = src.SessionName
	}
	if dst.SessionID == nil {
		dst.SessionID = src.SessionID
	}
	if dst.Status == nil {
		dst.Status = src.Status
	}
	if dst.Context == nil {
		dst.Context = src.Context
	}
	for paneID, pane := range src.Panes {
		target := dst.pane(paneID)
		if target.Status == nil && pane != nil {
			target.Status = pane.Status
		}
	}
}

// Get returns the record for a session name, or nil.
func (rs Records) Get(sessionName string) *SessionRecord {
	return rs[SessionKey(sessionName)]
}

// entry returns the record at key, creating it if absent.
func (rs Records) entry(key string) *SessionRecord {
	rec, ok := rs[key]
	if !ok || rec == nil {
		rec = &SessionRecord{}
		rs[key] = rec
	}
	return rec
}

// sortedKeys returns the keys in a stable order.
func (rs Records) sortedKeys() []string {
	keys := make([]string, 0, len(rs))
	for k := range rs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// normalize re-keys every named record under SessionKey(name), merging
// records that collide. Records already at their canonical key are placed
// first so they win over stale copies. Unnamed records keep their key.
func normalize(raw Records) (Records, int) {
	out := make(Records, len(raw))
	var stale []string
	for _, key := range raw.sortedKeys() {
		rec := raw[key]
		if rec == nil {
			continue
		}
		if rec.SessionName != nil && SessionKey(*rec.SessionName) != key {
			stale = append(stale, key)
			continue
		}
		Merge(out.entry(key), rec)
	}
	for _, key := range stale {
		rec := raw[key]
		Merge(out.entry(SessionKey(*rec.SessionName)), rec)
	}
	return out, len(stale)
}

func stringPtr(s string) *string {
	return &s
}
