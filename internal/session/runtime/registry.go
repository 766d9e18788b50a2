package runtime

import (
	"context"

	"github.com/ezekaj/learning-sol-sub000/shared/wire"
)

// entry is the cached registry state for one session: the metadata snapshot,
// the live code buffer, and the authorized-participant profiles.
//
// An entry is loaded from the store at most once per successful load and is
// owned by the session's runtime goroutine afterwards; all mutation happens
// there. Code edits land only in the cached buffer, never back in the store.
type entry struct {
	session  SessionRecord
	profiles []ParticipantProfile
}

// loadEntry fetches the session row and its authorized-participant list.
//
// Returns sql.ErrNoRows unchanged when the session does not exist.
func loadEntry(ctx context.Context, store Store, sessionID string) (*entry, error) {
	session, err := store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	profiles, err := store.ListParticipants(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &entry{
		session:  session,
		profiles: profiles,
	}, nil
}

// profileFor returns the authorized profile of a user.
func (e *entry) profileFor(userID string) (ParticipantProfile, bool) {
	for _, p := range e.profiles {
		if p.UserID == userID {
			return p, true
		}
	}
	return ParticipantProfile{}, false
}

// mergeProfile adds or refreshes an authorized profile. Used when the HTTP
// surface authorizes a participant while the runtime is live.
func (e *entry) mergeProfile(profile ParticipantProfile) {
	for i, p := range e.profiles {
		if p.UserID == profile.UserID {
			e.profiles[i] = profile
			return
		}
	}
	e.profiles = append(e.profiles, profile)
}

// applyCode overwrites the live code buffer. Last write wins.
func (e *entry) applyCode(code string, atMs int64) {
	e.session.Code = code
	e.session.UpdatedAt = atMs
}

// info returns the wire view of the session, including the live buffer.
func (e *entry) info() wire.SessionInfo {
	return wire.SessionInfo{
		ID:        e.session.ID,
		Title:     e.session.Title,
		Kind:      e.session.Kind,
		Language:  e.session.Language,
		Code:      e.session.Code,
		CreatedBy: e.session.CreatedBy,
		CreatedAt: e.session.CreatedAt,
		UpdatedAt: e.session.UpdatedAt,
	}
}
