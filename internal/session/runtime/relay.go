package runtime

import (
	"context"

	"github.com/ezekaj/learning-sol-sub000/shared/logger"
	"github.com/ezekaj/learning-sol-sub000/shared/wire"
)

func (r *sessionRuntime) handleCode(e codeEvent) {
	if !r.active.contains(e.userID) {
		r.emitError(e.socketID, wire.ErrCodeNotInSession, "join the session first")
		return
	}

	atMs := r.now().UnixMilli()
	r.entry.applyCode(e.code, atMs)

	r.emitter.EmitToSession(r.sessionID, "code_updated", wire.CodeUpdatedPayload{
		Code:      e.code,
		Change:    e.change,
		SenderID:  e.userID,
		Timestamp: atMs,
	}, e.socketID)
}

func (r *sessionRuntime) handleCursor(e cursorEvent) {
	if !r.active.contains(e.userID) {
		r.emitError(e.socketID, wire.ErrCodeNotInSession, "join the session first")
		return
	}

	r.presence.upsert(r.activeProfile(e.userID), &e.cursor, nil, r.now().UnixMilli())

	r.emitter.EmitToSession(r.sessionID, "cursor_updated", wire.CursorUpdatedPayload{
		SenderID: e.userID,
		Cursor:   e.cursor,
	}, e.socketID)
}

func (r *sessionRuntime) handleSelection(e selectionEvent) {
	if !r.active.contains(e.userID) {
		r.emitError(e.socketID, wire.ErrCodeNotInSession, "join the session first")
		return
	}

	r.presence.upsert(r.activeProfile(e.userID), nil, &e.selection, r.now().UnixMilli())

	r.emitter.EmitToSession(r.sessionID, "selection_updated", wire.SelectionUpdatedPayload{
		SenderID:  e.userID,
		Selection: e.selection,
	}, e.socketID)
}

func (r *sessionRuntime) handleChat(e chatEvent) {
	ctx := e.ctx
	if ctx == nil {
		ctx = context.Background()
	}

	if !r.active.contains(e.userID) {
		r.emitError(e.socketID, wire.ErrCodeNotInSession, "join the session first")
		return
	}

	rec, err := r.store.CreateMessage(ctx, MessageRecord{
		ID:        r.newID(),
		SessionID: r.sessionID,
		UserID:    e.userID,
		Content:   e.content,
		Kind:      e.kind,
		CreatedAt: r.now().UnixMilli(),
	})
	if err != nil {
		logger.Errorf("[runtime] chat persist error sid=%s: %v", r.sessionID, err)
		r.emitError(e.socketID, wire.ErrCodePersistenceFailure, "failed to persist message")
		return
	}

	// Fan out to every participant including the sender; the echo carries the
	// server-assigned id and timestamp.
	r.emitter.EmitToSession(r.sessionID, "message_received", r.toWireMessage(rec), "")
}

// activeProfile returns the cached profile of an active user. Active users
// are always on the authorized list, so the fallback only guards against a
// nil entry during shutdown.
func (r *sessionRuntime) activeProfile(userID string) ParticipantProfile {
	if r.entry != nil {
		if profile, ok := r.entry.profileFor(userID); ok {
			return profile
		}
	}
	return ParticipantProfile{UserID: userID, Name: userID}
}
