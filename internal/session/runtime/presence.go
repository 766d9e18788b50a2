package runtime

import (
	"github.com/samber/lo"

	"github.com/ezekaj/learning-sol-sub000/shared/wire"
)

// presenceTable tracks per-user cursor, selection and last-seen state for one
// session, in insertion order. It is owned by the session's runtime goroutine
// and does no internal locking.
type presenceTable struct {
	order   []string
	records map[string]*presenceRecord
}

type presenceRecord struct {
	userID    string
	name      string
	avatarURL string
	cursor    *wire.CursorState
	selection *wire.SelectionState
	updatedAt int64
}

func newPresenceTable() *presenceTable {
	return &presenceTable{
		records: make(map[string]*presenceRecord),
	}
}

// upsert merges a partial presence update. A missing record is created with
// empty cursor and selection; omitted fields keep their previous value; the
// last-seen timestamp always refreshes.
func (t *presenceTable) upsert(profile ParticipantProfile, cursor *wire.CursorState, selection *wire.SelectionState, atMs int64) {
	rec, ok := t.records[profile.UserID]
	if !ok {
		rec = &presenceRecord{userID: profile.UserID}
		t.records[profile.UserID] = rec
		t.order = append(t.order, profile.UserID)
	}
	rec.name = profile.Name
	rec.avatarURL = profile.AvatarURL
	if cursor != nil {
		c := *cursor
		rec.cursor = &c
	}
	if selection != nil {
		sel := *selection
		rec.selection = &sel
	}
	rec.updatedAt = atMs
}

// remove deletes a user's presence. Repeated removal is a no-op.
func (t *presenceTable) remove(userID string) bool {
	if _, ok := t.records[userID]; !ok {
		return false
	}
	delete(t.records, userID)
	for i, id := range t.order {
		if id == userID {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return true
}

// snapshot returns the table as wire entries in insertion order. Cursor and
// selection values are copied so callers cannot alias runtime state.
func (t *presenceTable) snapshot() []wire.PresenceEntry {
	return lo.Map(t.order, func(userID string, _ int) wire.PresenceEntry {
		rec := t.records[userID]
		out := wire.PresenceEntry{
			UserID:    rec.userID,
			Name:      rec.name,
			AvatarURL: rec.avatarURL,
			UpdatedAt: rec.updatedAt,
		}
		if rec.cursor != nil {
			c := *rec.cursor
			out.Cursor = &c
		}
		if rec.selection != nil {
			sel := *rec.selection
			out.Selection = &sel
		}
		return out
	})
}

// snapshotExcluding returns the snapshot without one user's record. The
// join acknowledgement uses it so a joiner sees peers only, never itself.
func (t *presenceTable) snapshotExcluding(userID string) []wire.PresenceEntry {
	return lo.Filter(t.snapshot(), func(entry wire.PresenceEntry, _ int) bool {
		return entry.UserID != userID
	})
}

func (t *presenceTable) len() int {
	return len(t.order)
}
