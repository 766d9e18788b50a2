package runtime

import (
	"context"
	"sync"
	"time"

	"github.com/ezekaj/learning-sol-sub000/pkg/types"
	"github.com/ezekaj/learning-sol-sub000/shared/logger"
	"github.com/ezekaj/learning-sol-sub000/shared/wire"
)

// historyLimit caps the chat history page sent with session_joined.
const historyLimit = 100

// Manager owns per-session runtimes and provides serialized entrypoints.
//
// Its routing table is the only globally synchronized structure; every other
// piece of session state belongs to exactly one runtime goroutine.
type Manager struct {
	store   Store
	emitter Emitter

	now   func() time.Time
	newID func() string

	mu       sync.Mutex
	runtimes map[string]*sessionRuntime
}

// NewManager creates a new per-session runtime manager.
func NewManager(store Store, emitter Emitter) *Manager {
	return &Manager{
		store:    store,
		emitter:  emitter,
		now:      time.Now,
		newID:    types.NewID,
		runtimes: make(map[string]*sessionRuntime),
	}
}

// EnqueueJoin schedules a join for a session.
//
// The runtime serializes all events for a given session id to ensure stable
// ordering under concurrent Socket.IO callbacks.
func (m *Manager) EnqueueJoin(ctx context.Context, userID, sessionID, socketID string) {
	if sessionID == "" || userID == "" {
		return
	}
	m.getOrCreate(sessionID).enqueue(joinEvent{
		ctx:      ctx,
		userID:   userID,
		socketID: socketID,
	})
}

// EnqueueTerminate schedules the converged leave/disconnect removal for a
// session. The trigger only distinguishes the two in logs.
func (m *Manager) EnqueueTerminate(userID, sessionID, socketID, trigger string) {
	if sessionID == "" || userID == "" {
		return
	}
	m.getOrCreate(sessionID).enqueue(terminateEvent{
		userID:   userID,
		socketID: socketID,
		trigger:  trigger,
	})
}

// EnqueueCode schedules a code broadcast for a session.
func (m *Manager) EnqueueCode(userID, sessionID, socketID, code string, change any) {
	if sessionID == "" || userID == "" {
		return
	}
	m.getOrCreate(sessionID).enqueue(codeEvent{
		userID:   userID,
		socketID: socketID,
		code:     code,
		change:   change,
	})
}

// EnqueueCursor schedules a cursor presence update and broadcast.
func (m *Manager) EnqueueCursor(userID, sessionID, socketID string, cursor wire.CursorState) {
	if sessionID == "" || userID == "" {
		return
	}
	m.getOrCreate(sessionID).enqueue(cursorEvent{
		userID:   userID,
		socketID: socketID,
		cursor:   cursor,
	})
}

// EnqueueSelection schedules a selection presence update and broadcast.
func (m *Manager) EnqueueSelection(userID, sessionID, socketID string, selection wire.SelectionState) {
	if sessionID == "" || userID == "" {
		return
	}
	m.getOrCreate(sessionID).enqueue(selectionEvent{
		userID:    userID,
		socketID:  socketID,
		selection: selection,
	})
}

// EnqueueChat schedules a chat persist and fan-out.
func (m *Manager) EnqueueChat(ctx context.Context, userID, sessionID, socketID, content, kind string) {
	if sessionID == "" || userID == "" {
		return
	}
	m.getOrCreate(sessionID).enqueue(chatEvent{
		ctx:      ctx,
		userID:   userID,
		socketID: socketID,
		content:  content,
		kind:     kind,
	})
}

// AuthorizeParticipant merges a newly authorized profile into a live
// session's cached registry entry. Sessions without a live runtime pick the
// participant up from the store on first load.
func (m *Manager) AuthorizeParticipant(sessionID string, profile ParticipantProfile) {
	if sessionID == "" || profile.UserID == "" {
		return
	}
	m.mu.Lock()
	rt, ok := m.runtimes[sessionID]
	m.mu.Unlock()
	if !ok {
		return
	}
	rt.enqueue(authorizeEvent{profile: profile})
}

func (m *Manager) getOrCreate(sessionID string) *sessionRuntime {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rt, ok := m.runtimes[sessionID]; ok {
		return rt
	}
	rt := newSessionRuntime(m.store, m.emitter, sessionID, m.now, m.newID)
	m.runtimes[sessionID] = rt
	return rt
}

// sessionRuntime owns all mutable state of one session: the registry entry,
// the active participant set and the presence table. Events are executed
// strictly in arrival order by a single goroutine.
type sessionRuntime struct {
	store   Store
	emitter Emitter

	sessionID string
	events    chan any

	now   func() time.Time
	newID func() string

	// Owned by the loop goroutine after start.
	entry    *entry
	active   *participantSet
	presence *presenceTable

	startOnce sync.Once
}

func newSessionRuntime(store Store, emitter Emitter, sessionID string, now func() time.Time, newID func() string) *sessionRuntime {
	return &sessionRuntime{
		store:     store,
		emitter:   emitter,
		sessionID: sessionID,
		events:    make(chan any, 256),
		now:       now,
		newID:     newID,
		active:    newParticipantSet(),
		presence:  newPresenceTable(),
	}
}

func (r *sessionRuntime) enqueue(evt any) {
	r.startOnce.Do(func() { go r.loop() })
	select {
	case r.events <- evt:
	default:
		// Avoid blocking Socket.IO callbacks indefinitely; drop under overload.
		logger.Warnf("[runtime] session %s queue full; dropping event %T", r.sessionID, evt)
	}
}

func (r *sessionRuntime) loop() {
	for evt := range r.events {
		switch e := evt.(type) {
		case joinEvent:
			r.handleJoin(e)
		case terminateEvent:
			r.handleTerminate(e)
		case codeEvent:
			r.handleCode(e)
		case cursorEvent:
			r.handleCursor(e)
		case selectionEvent:
			r.handleSelection(e)
		case chatEvent:
			r.handleChat(e)
		case authorizeEvent:
			r.handleAuthorize(e)
		default:
			logger.Warnf("[runtime] session %s: unknown event %T", r.sessionID, evt)
		}
	}
}

// emitError reports a failure to the offending socket only. Errors are never
// broadcast and never fatal; the connection stays usable.
func (r *sessionRuntime) emitError(socketID, code, message string) {
	r.emitter.EmitToSocket(socketID, "error", wire.ErrorPayload{
		Code:    code,
		Message: message,
	})
}
