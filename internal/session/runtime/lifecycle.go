package runtime

import (
	"context"
	"database/sql"
	"errors"

	"github.com/samber/lo"

	"github.com/ezekaj/learning-sol-sub000/shared/logger"
	"github.com/ezekaj/learning-sol-sub000/shared/wire"
)

// ensureEntry returns the cached registry entry, loading it on first use.
// Only successful loads are cached, so a session created after a failed join
// attempt becomes joinable without a restart.
func (r *sessionRuntime) ensureEntry(ctx context.Context) (*entry, error) {
	if r.entry != nil {
		return r.entry, nil
	}
	e, err := loadEntry(ctx, r.store, r.sessionID)
	if err != nil {
		return nil, err
	}
	r.entry = e
	return e, nil
}

func (r *sessionRuntime) handleJoin(e joinEvent) {
	ctx := e.ctx
	if ctx == nil {
		ctx = context.Background()
	}

	entry, err := r.ensureEntry(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		r.emitError(e.socketID, wire.ErrCodeNotFound, "session not found")
		return
	}
	if err != nil {
		logger.Errorf("[runtime] join load error sid=%s: %v", r.sessionID, err)
		r.emitError(e.socketID, wire.ErrCodePersistenceFailure, "failed to load session")
		return
	}

	profile, ok := entry.profileFor(e.userID)
	if !ok {
		r.emitError(e.socketID, wire.ErrCodeForbidden, "not an authorized participant")
		return
	}

	// Chat history is read before any table is touched so a store failure
	// leaves no trace of the attempted join.
	records, err := r.store.ListRecentMessages(ctx, r.sessionID, historyLimit)
	if err != nil {
		logger.Errorf("[runtime] join history error sid=%s: %v", r.sessionID, err)
		r.emitError(e.socketID, wire.ErrCodePersistenceFailure, "failed to load chat history")
		return
	}

	prevSocket := r.active.socketOf(e.userID)
	added := r.active.add(e.userID, e.socketID)
	if !added && prevSocket != "" && prevSocket != e.socketID {
		// The user joined again from a newer connection; the old one drops
		// back to its pre-join state.
		r.emitter.ClearSession(prevSocket, r.sessionID)
	}
	r.emitter.BindSession(e.socketID, r.sessionID)

	r.presence.upsert(profile, nil, nil, r.now().UnixMilli())

	history := lo.Map(records, func(rec MessageRecord, _ int) wire.ChatMessage {
		return r.toWireMessage(rec)
	})

	r.emitter.EmitToSocket(e.socketID, "session_joined", wire.SessionJoinedPayload{
		Session:     entry.info(),
		ChatHistory: history,
		Presence:    r.presence.snapshotExcluding(e.userID),
	})

	if added {
		r.emitter.EmitToSession(r.sessionID, "user_joined", wire.UserJoinedPayload{
			User: wire.Participant{
				ID:        profile.UserID,
				Name:      profile.Name,
				AvatarURL: profile.AvatarURL,
				Role:      profile.Role,
			},
			Presence: r.presence.snapshot(),
		}, e.socketID)
	}

	logger.Debugf("[runtime] session %s: %s joined (participants=%d)", r.sessionID, e.userID, r.active.len())
}

func (r *sessionRuntime) handleTerminate(e terminateEvent) {
	r.emitter.ClearSession(e.socketID, r.sessionID)

	if !r.active.remove(e.userID, e.socketID) {
		// Stale or repeated trigger; leave/disconnect races end up here.
		return
	}
	r.presence.remove(e.userID)

	r.emitter.EmitToSession(r.sessionID, "user_left", wire.UserLeftPayload{
		UserID:   e.userID,
		Presence: r.presence.snapshot(),
	}, e.socketID)

	logger.Debugf("[runtime] session %s: %s left via %s (participants=%d)", r.sessionID, e.userID, e.trigger, r.active.len())
}

func (r *sessionRuntime) handleAuthorize(e authorizeEvent) {
	if r.entry == nil {
		return
	}
	r.entry.mergeProfile(e.profile)
	logger.Debugf("[runtime] session %s: authorized %s", r.sessionID, e.profile.UserID)
}

// authorName resolves a display name from the cached authorized profiles.
func (r *sessionRuntime) authorName(userID string) string {
	if r.entry != nil {
		if profile, ok := r.entry.profileFor(userID); ok {
			return profile.Name
		}
	}
	return userID
}

func (r *sessionRuntime) toWireMessage(rec MessageRecord) wire.ChatMessage {
	return wire.ChatMessage{
		ID:        rec.ID,
		SessionID: rec.SessionID,
		SenderID:  rec.UserID,
		Author:    r.authorName(rec.UserID),
		Content:   rec.Content,
		Kind:      rec.Kind,
		Timestamp: rec.CreatedAt,
	}
}
