package runtime

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ezekaj/learning-sol-sub000/shared/wire"
)

type fakeStore struct {
	mu           sync.Mutex
	sessions     map[string]SessionRecord
	participants map[string][]ParticipantProfile
	messages     map[string][]MessageRecord
	failCreate   bool
	failHistory  bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		sessions:     make(map[string]SessionRecord),
		participants: make(map[string][]ParticipantProfile),
		messages:     make(map[string][]MessageRecord),
	}
}

func (s *fakeStore) addSession(id, title string, userIDs ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = SessionRecord{ID: id, Title: title, Kind: "pair", Language: "solidity"}
	for _, uid := range userIDs {
		s.participants[id] = append(s.participants[id], ParticipantProfile{
			UserID: uid,
			Name:   "name-" + uid,
			Role:   "editor",
		})
	}
}

func (s *fakeStore) setFailCreate(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failCreate = fail
}

func (s *fakeStore) setFailHistory(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failHistory = fail
}

func (s *fakeStore) messageCount(sessionID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages[sessionID])
}

func (s *fakeStore) storedCode(sessionID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[sessionID].Code
}

func (s *fakeStore) GetSession(_ context.Context, id string) (SessionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return SessionRecord{}, sql.ErrNoRows
	}
	return session, nil
}

func (s *fakeStore) ListParticipants(_ context.Context, id string) ([]ParticipantProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ParticipantProfile, len(s.participants[id]))
	copy(out, s.participants[id])
	return out, nil
}

func (s *fakeStore) ListRecentMessages(_ context.Context, id string, limit int64) ([]MessageRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failHistory {
		return nil, errors.New("history unavailable")
	}
	msgs := s.messages[id]
	if int64(len(msgs)) > limit {
		msgs = msgs[int64(len(msgs))-limit:]
	}
	out := make([]MessageRecord, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (s *fakeStore) CreateMessage(_ context.Context, msg MessageRecord) (MessageRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failCreate {
		return MessageRecord{}, errors.New("disk full")
	}
	s.messages[msg.SessionID] = append(s.messages[msg.SessionID], msg)
	return msg, nil
}

type sessionEmit struct {
	sessionID string
	event     string
	payload   any
	skip      string
}

type socketEmit struct {
	socketID string
	event    string
	payload  any
}

type fakeEmitter struct {
	mu      sync.Mutex
	session []sessionEmit
	socket  []socketEmit
	bound   map[string]string
	cleared []string
}

func newFakeEmitter() *fakeEmitter {
	return &fakeEmitter{bound: make(map[string]string)}
}

func (e *fakeEmitter) EmitToSession(sessionID, event string, payload any, skipSocketID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.session = append(e.session, sessionEmit{sessionID, event, payload, skipSocketID})
}

func (e *fakeEmitter) EmitToSocket(socketID, event string, payload any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.socket = append(e.socket, socketEmit{socketID, event, payload})
}

func (e *fakeEmitter) BindSession(socketID, sessionID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.bound[socketID] = sessionID
}

func (e *fakeEmitter) ClearSession(socketID, sessionID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.bound[socketID] != sessionID {
		return
	}
	delete(e.bound, socketID)
	e.cleared = append(e.cleared, socketID)
}

func (e *fakeEmitter) sessionEvents(event string) []sessionEmit {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []sessionEmit
	for _, evt := range e.session {
		if evt.event == event {
			out = append(out, evt)
		}
	}
	return out
}

func (e *fakeEmitter) socketEvents(socketID, event string) []socketEmit {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []socketEmit
	for _, evt := range e.socket {
		if evt.socketID == socketID && evt.event == event {
			out = append(out, evt)
		}
	}
	return out
}

func (e *fakeEmitter) boundSession(socketID string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.bound[socketID]
}

func (e *fakeEmitter) clearedSockets() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.cleared))
	copy(out, e.cleared)
	return out
}

// waitCount polls until count reaches want; the runtime has no completion
// channel, so tests wait for the loop to drain.
func waitCount(t *testing.T, what string, want int, count func() int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if count() >= want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d %s, have %d", want, what, count())
}

func waitSessionEvents(t *testing.T, e *fakeEmitter, event string, n int) []sessionEmit {
	t.Helper()
	waitCount(t, event+" session events", n, func() int { return len(e.sessionEvents(event)) })
	return e.sessionEvents(event)
}

func waitSocketEvents(t *testing.T, e *fakeEmitter, socketID, event string, n int) []socketEmit {
	t.Helper()
	waitCount(t, event+" socket events", n, func() int { return len(e.socketEvents(socketID, event)) })
	return e.socketEvents(socketID, event)
}

func errorCode(t *testing.T, evt socketEmit) string {
	t.Helper()
	payload, ok := evt.payload.(wire.ErrorPayload)
	if !ok {
		t.Fatalf("unexpected error payload type %T", evt.payload)
	}
	return payload.Code
}

func TestManager_ScenarioTwoUsers(t *testing.T) {
	store := newFakeStore()
	store.addSession("s1", "Shared Contract", "alice", "bob")
	emitter := newFakeEmitter()
	mgr := NewManager(store, emitter)

	// alice joins an empty session and sees nobody else.
	mgr.EnqueueJoin(context.Background(), "alice", "s1", "sock-a")
	joinedA := waitSocketEvents(t, emitter, "sock-a", "session_joined", 1)
	payloadA, ok := joinedA[0].payload.(wire.SessionJoinedPayload)
	if !ok {
		t.Fatalf("unexpected payload type %T", joinedA[0].payload)
	}
	if payloadA.Session.ID != "s1" || payloadA.Session.Title != "Shared Contract" {
		t.Fatalf("unexpected session snapshot: %+v", payloadA.Session)
	}
	if len(payloadA.Presence) != 0 {
		t.Fatalf("expected empty presence snapshot, got %+v", payloadA.Presence)
	}
	if emitter.boundSession("sock-a") != "s1" {
		t.Fatalf("expected sock-a bound to s1")
	}

	// bob joins; alice is notified and bob's snapshot contains alice.
	mgr.EnqueueJoin(context.Background(), "bob", "s1", "sock-b")
	joinedB := waitSocketEvents(t, emitter, "sock-b", "session_joined", 1)
	payloadB := joinedB[0].payload.(wire.SessionJoinedPayload)
	if len(payloadB.Presence) != 1 || payloadB.Presence[0].UserID != "alice" {
		t.Fatalf("expected bob's snapshot to contain alice, got %+v", payloadB.Presence)
	}

	userJoined := waitSessionEvents(t, emitter, "user_joined", 2)
	bobJoin := userJoined[1]
	if bobJoin.skip != "sock-b" {
		t.Fatalf("user_joined should skip the joiner, skip=%q", bobJoin.skip)
	}
	uj := bobJoin.payload.(wire.UserJoinedPayload)
	if uj.User.ID != "bob" || uj.User.Name != "name-bob" {
		t.Fatalf("unexpected user_joined payload: %+v", uj.User)
	}
	if len(uj.Presence) != 2 {
		t.Fatalf("expected 2 presence entries after bob's join, got %+v", uj.Presence)
	}

	// bob moves the cursor; the broadcast skips bob.
	mgr.EnqueueCursor("bob", "s1", "sock-b", wire.CursorState{Line: 3, Column: 5})
	cursorEvts := waitSessionEvents(t, emitter, "cursor_updated", 1)
	if cursorEvts[0].skip != "sock-b" {
		t.Fatalf("cursor_updated should skip the sender, skip=%q", cursorEvts[0].skip)
	}
	cu := cursorEvts[0].payload.(wire.CursorUpdatedPayload)
	if cu.SenderID != "bob" || cu.Cursor.Line != 3 || cu.Cursor.Column != 5 {
		t.Fatalf("unexpected cursor_updated payload: %+v", cu)
	}

	// alice disconnects; bob sees user_left and a snapshot without alice.
	mgr.EnqueueTerminate("alice", "s1", "sock-a", TriggerDisconnect)
	leftEvts := waitSessionEvents(t, emitter, "user_left", 1)
	ul := leftEvts[0].payload.(wire.UserLeftPayload)
	if ul.UserID != "alice" {
		t.Fatalf("unexpected user_left payload: %+v", ul)
	}
	if len(ul.Presence) != 1 || ul.Presence[0].UserID != "bob" {
		t.Fatalf("expected snapshot with only bob, got %+v", ul.Presence)
	}
	if emitter.boundSession("sock-a") != "" {
		t.Fatalf("expected sock-a unbound after disconnect")
	}
}

func TestManager_JoinUnknownSessionNotFound(t *testing.T) {
	store := newFakeStore()
	emitter := newFakeEmitter()
	mgr := NewManager(store, emitter)

	mgr.EnqueueJoin(context.Background(), "alice", "ghost", "sock-a")
	errs := waitSocketEvents(t, emitter, "sock-a", "error", 1)
	if code := errorCode(t, errs[0]); code != wire.ErrCodeNotFound {
		t.Fatalf("expected not_found, got %q", code)
	}
	if emitter.boundSession("sock-a") != "" {
		t.Fatalf("socket must not be bound after a failed join")
	}
}

func TestManager_JoinUnauthorizedForbidden(t *testing.T) {
	store := newFakeStore()
	store.addSession("s1", "t", "alice")
	emitter := newFakeEmitter()
	mgr := NewManager(store, emitter)

	mgr.EnqueueJoin(context.Background(), "mallory", "s1", "sock-m")
	errs := waitSocketEvents(t, emitter, "sock-m", "error", 1)
	if code := errorCode(t, errs[0]); code != wire.ErrCodeForbidden {
		t.Fatalf("expected forbidden, got %q", code)
	}

	// A later authorized join observes no trace of the rejected attempt.
	mgr.EnqueueJoin(context.Background(), "alice", "s1", "sock-a")
	joined := waitSocketEvents(t, emitter, "sock-a", "session_joined", 1)
	payload := joined[0].payload.(wire.SessionJoinedPayload)
	if len(payload.Presence) != 0 {
		t.Fatalf("expected no residue from rejected join, got %+v", payload.Presence)
	}
	for _, evt := range emitter.sessionEvents("user_joined") {
		if uj := evt.payload.(wire.UserJoinedPayload); uj.User.ID == "mallory" {
			t.Fatalf("user_joined emitted for unauthorized user")
		}
	}
}

func TestManager_JoinHistoryFailureLeavesNoTrace(t *testing.T) {
	store := newFakeStore()
	store.addSession("s1", "t", "alice")
	store.setFailHistory(true)
	emitter := newFakeEmitter()
	mgr := NewManager(store, emitter)

	mgr.EnqueueJoin(context.Background(), "alice", "s1", "sock-a")
	errs := waitSocketEvents(t, emitter, "sock-a", "error", 1)
	if code := errorCode(t, errs[0]); code != wire.ErrCodePersistenceFailure {
		t.Fatalf("expected persistence_failure, got %q", code)
	}
	if emitter.boundSession("sock-a") != "" {
		t.Fatalf("socket must not be bound after a failed join")
	}

	// The connection stays usable; a retry succeeds cleanly.
	store.setFailHistory(false)
	mgr.EnqueueJoin(context.Background(), "alice", "s1", "sock-a")
	waitSocketEvents(t, emitter, "sock-a", "session_joined", 1)
	if got := len(emitter.sessionEvents("user_joined")); got != 1 {
		t.Fatalf("expected exactly one user_joined, got %d", got)
	}
}

func TestManager_RejoinSameSessionIdempotent(t *testing.T) {
	store := newFakeStore()
	store.addSession("s1", "t", "alice", "bob")
	emitter := newFakeEmitter()
	mgr := NewManager(store, emitter)

	mgr.EnqueueJoin(context.Background(), "alice", "s1", "sock-a")
	waitSocketEvents(t, emitter, "sock-a", "session_joined", 1)
	mgr.EnqueueCursor("alice", "s1", "sock-a", wire.CursorState{Line: 1, Column: 2})
	waitSessionEvents(t, emitter, "cursor_updated", 1)

	// Rejoin re-sends the snapshot without duplicating membership.
	mgr.EnqueueJoin(context.Background(), "alice", "s1", "sock-a")
	waitSocketEvents(t, emitter, "sock-a", "session_joined", 2)
	if got := len(emitter.sessionEvents("user_joined")); got != 1 {
		t.Fatalf("expected exactly one user_joined after rejoin, got %d", got)
	}

	// The rejoin kept alice's presence record, cursor included.
	mgr.EnqueueJoin(context.Background(), "bob", "s1", "sock-b")
	joinedB := waitSocketEvents(t, emitter, "sock-b", "session_joined", 1)
	payloadB := joinedB[0].payload.(wire.SessionJoinedPayload)
	if len(payloadB.Presence) != 1 {
		t.Fatalf("expected a single presence entry, got %+v", payloadB.Presence)
	}
	entry := payloadB.Presence[0]
	if entry.UserID != "alice" || entry.Cursor == nil || entry.Cursor.Line != 1 || entry.Cursor.Column != 2 {
		t.Fatalf("expected alice's cursor to survive the rejoin, got %+v", entry)
	}
}

func TestManager_SecondConnectionTakesOver(t *testing.T) {
	store := newFakeStore()
	store.addSession("s1", "t", "alice")
	emitter := newFakeEmitter()
	mgr := NewManager(store, emitter)

	mgr.EnqueueJoin(context.Background(), "alice", "s1", "sock-1")
	waitSocketEvents(t, emitter, "sock-1", "session_joined", 1)
	mgr.EnqueueJoin(context.Background(), "alice", "s1", "sock-2")
	waitSocketEvents(t, emitter, "sock-2", "session_joined", 1)

	if got := len(emitter.sessionEvents("user_joined")); got != 1 {
		t.Fatalf("takeover must not re-announce the user, got %d user_joined", got)
	}
	cleared := emitter.clearedSockets()
	if len(cleared) == 0 || cleared[len(cleared)-1] != "sock-1" {
		t.Fatalf("expected the first connection to be cleared, got %v", cleared)
	}
	if emitter.boundSession("sock-2") != "s1" {
		t.Fatalf("expected sock-2 bound to s1")
	}

	// A stale disconnect from the replaced connection changes nothing.
	mgr.EnqueueTerminate("alice", "s1", "sock-1", TriggerDisconnect)
	mgr.EnqueueCursor("alice", "s1", "sock-2", wire.CursorState{Line: 1, Column: 1})
	waitSessionEvents(t, emitter, "cursor_updated", 1)
	if got := len(emitter.sessionEvents("user_left")); got != 0 {
		t.Fatalf("stale disconnect must not remove the user, got %d user_left", got)
	}

	// The owning connection leaving does.
	mgr.EnqueueTerminate("alice", "s1", "sock-2", TriggerLeave)
	waitSessionEvents(t, emitter, "user_left", 1)
}

func TestManager_SwitchSessionsKeepsNewBinding(t *testing.T) {
	store := newFakeStore()
	store.addSession("s1", "t1", "alice", "bob")
	store.addSession("s2", "t2", "alice")
	emitter := newFakeEmitter()
	mgr := NewManager(store, emitter)

	mgr.EnqueueJoin(context.Background(), "alice", "s1", "sock-a")
	mgr.EnqueueJoin(context.Background(), "bob", "s1", "sock-b")
	waitSocketEvents(t, emitter, "sock-b", "session_joined", 1)

	// Switching sessions enqueues Terminate(s1) and Join(s2) into two
	// independent runtimes with no ordering between them. Model the worst
	// interleaving by letting the s2 join finish first.
	mgr.EnqueueJoin(context.Background(), "alice", "s2", "sock-a")
	waitSocketEvents(t, emitter, "sock-a", "session_joined", 2)
	if emitter.boundSession("sock-a") != "s2" {
		t.Fatalf("expected sock-a bound to s2")
	}

	mgr.EnqueueTerminate("alice", "s1", "sock-a", TriggerLeave)
	leftEvts := waitSessionEvents(t, emitter, "user_left", 1)
	if leftEvts[0].sessionID != "s1" {
		t.Fatalf("expected user_left on s1, got %q", leftEvts[0].sessionID)
	}

	// The late clear from s1 must not wipe the s2 binding.
	if emitter.boundSession("sock-a") != "s2" {
		t.Fatalf("late terminate from the old session wiped the new binding")
	}

	// alice keeps working in s2, and a disconnect still cleans s2 up.
	mgr.EnqueueCursor("alice", "s2", "sock-a", wire.CursorState{Line: 2, Column: 2})
	cursorEvts := waitSessionEvents(t, emitter, "cursor_updated", 1)
	if cursorEvts[0].sessionID != "s2" {
		t.Fatalf("expected cursor_updated on s2, got %q", cursorEvts[0].sessionID)
	}

	mgr.EnqueueTerminate("alice", "s2", "sock-a", TriggerDisconnect)
	waitSessionEvents(t, emitter, "user_left", 2)
	if emitter.boundSession("sock-a") != "" {
		t.Fatalf("expected sock-a unbound after the s2 disconnect")
	}
}

func TestManager_LeaveThenDisconnectRemovesOnce(t *testing.T) {
	store := newFakeStore()
	store.addSession("s1", "t", "alice", "bob")
	emitter := newFakeEmitter()
	mgr := NewManager(store, emitter)

	mgr.EnqueueJoin(context.Background(), "alice", "s1", "sock-a")
	mgr.EnqueueJoin(context.Background(), "bob", "s1", "sock-b")
	waitSocketEvents(t, emitter, "sock-b", "session_joined", 1)

	// Explicit leave races the transport disconnect; removal happens once.
	mgr.EnqueueTerminate("alice", "s1", "sock-a", TriggerLeave)
	mgr.EnqueueTerminate("alice", "s1", "sock-a", TriggerDisconnect)
	mgr.EnqueueCursor("bob", "s1", "sock-b", wire.CursorState{Line: 0, Column: 0})
	waitSessionEvents(t, emitter, "cursor_updated", 1)

	if got := len(emitter.sessionEvents("user_left")); got != 1 {
		t.Fatalf("expected exactly one user_left, got %d", got)
	}
}

func TestManager_ChatPersistsThenEchoesToAll(t *testing.T) {
	store := newFakeStore()
	store.addSession("s1", "t", "alice", "bob", "carol")
	emitter := newFakeEmitter()
	mgr := NewManager(store, emitter)
	mgr.newID = func() string { return "msg-1" }
	mgr.now = func() time.Time { return time.UnixMilli(1724400000000) }

	mgr.EnqueueJoin(context.Background(), "alice", "s1", "sock-a")
	mgr.EnqueueJoin(context.Background(), "bob", "s1", "sock-b")
	waitSocketEvents(t, emitter, "sock-b", "session_joined", 1)

	mgr.EnqueueChat(context.Background(), "alice", "s1", "sock-a", "hello", "text")
	msgs := waitSessionEvents(t, emitter, "message_received", 1)
	if msgs[0].skip != "" {
		t.Fatalf("message_received must include the sender, skip=%q", msgs[0].skip)
	}
	msg := msgs[0].payload.(wire.ChatMessage)
	if msg.ID != "msg-1" || msg.SessionID != "s1" || msg.SenderID != "alice" {
		t.Fatalf("unexpected message payload: %+v", msg)
	}
	if msg.Author != "name-alice" || msg.Content != "hello" || msg.Kind != "text" {
		t.Fatalf("unexpected message payload: %+v", msg)
	}
	if msg.Timestamp != 1724400000000 {
		t.Fatalf("expected the server-assigned timestamp, got %d", msg.Timestamp)
	}
	if store.messageCount("s1") != 1 {
		t.Fatalf("expected the message persisted before fan-out")
	}

	// A later joiner receives the message as history.
	mgr.EnqueueJoin(context.Background(), "carol", "s1", "sock-c")
	joinedC := waitSocketEvents(t, emitter, "sock-c", "session_joined", 1)
	payloadC := joinedC[0].payload.(wire.SessionJoinedPayload)
	if len(payloadC.ChatHistory) != 1 || payloadC.ChatHistory[0].Content != "hello" {
		t.Fatalf("expected chat history with one message, got %+v", payloadC.ChatHistory)
	}
	if payloadC.ChatHistory[0].Author != "name-alice" {
		t.Fatalf("expected resolved author name, got %+v", payloadC.ChatHistory[0])
	}
}

func TestManager_ChatPersistFailureStopsFanout(t *testing.T) {
	store := newFakeStore()
	store.addSession("s1", "t", "alice", "bob")
	emitter := newFakeEmitter()
	mgr := NewManager(store, emitter)

	mgr.EnqueueJoin(context.Background(), "alice", "s1", "sock-a")
	mgr.EnqueueJoin(context.Background(), "bob", "s1", "sock-b")
	waitSocketEvents(t, emitter, "sock-b", "session_joined", 1)

	store.setFailCreate(true)
	mgr.EnqueueChat(context.Background(), "alice", "s1", "sock-a", "hello", "text")
	errs := waitSocketEvents(t, emitter, "sock-a", "error", 1)
	if code := errorCode(t, errs[0]); code != wire.ErrCodePersistenceFailure {
		t.Fatalf("expected persistence_failure, got %q", code)
	}

	// Drain with another event, then confirm nothing was fanned out.
	mgr.EnqueueCursor("alice", "s1", "sock-a", wire.CursorState{Line: 0, Column: 0})
	waitSessionEvents(t, emitter, "cursor_updated", 1)
	if got := len(emitter.sessionEvents("message_received")); got != 0 {
		t.Fatalf("failed persist must not fan out, got %d message_received", got)
	}
}

func TestManager_CodeUpdatesCacheNotStore(t *testing.T) {
	store := newFakeStore()
	store.addSession("s1", "t", "alice", "bob")
	emitter := newFakeEmitter()
	mgr := NewManager(store, emitter)

	mgr.EnqueueJoin(context.Background(), "alice", "s1", "sock-a")
	waitSocketEvents(t, emitter, "sock-a", "session_joined", 1)

	mgr.EnqueueCode("alice", "s1", "sock-a", "pragma solidity ^0.8.0;", map[string]any{"op": "insert"})
	codeEvts := waitSessionEvents(t, emitter, "code_updated", 1)
	if codeEvts[0].skip != "sock-a" {
		t.Fatalf("code_updated should skip the sender, skip=%q", codeEvts[0].skip)
	}
	cu := codeEvts[0].payload.(wire.CodeUpdatedPayload)
	if cu.Code != "pragma solidity ^0.8.0;" || cu.SenderID != "alice" {
		t.Fatalf("unexpected code_updated payload: %+v", cu)
	}

	// The registry cache is authoritative for late joiners; the store copy
	// stays at its creation-time value.
	mgr.EnqueueJoin(context.Background(), "bob", "s1", "sock-b")
	joinedB := waitSocketEvents(t, emitter, "sock-b", "session_joined", 1)
	payloadB := joinedB[0].payload.(wire.SessionJoinedPayload)
	if payloadB.Session.Code != "pragma solidity ^0.8.0;" {
		t.Fatalf("expected the live buffer in the join snapshot, got %q", payloadB.Session.Code)
	}
	if store.storedCode("s1") != "" {
		t.Fatalf("code edits must never reach the store, got %q", store.storedCode("s1"))
	}
}

func TestManager_EventBeforeJoinRejected(t *testing.T) {
	store := newFakeStore()
	store.addSession("s1", "t", "alice")
	emitter := newFakeEmitter()
	mgr := NewManager(store, emitter)

	mgr.EnqueueCursor("alice", "s1", "sock-a", wire.CursorState{Line: 1, Column: 1})
	errs := waitSocketEvents(t, emitter, "sock-a", "error", 1)
	if code := errorCode(t, errs[0]); code != wire.ErrCodeNotInSession {
		t.Fatalf("expected not_in_session, got %q", code)
	}
	if got := len(emitter.sessionEvents("cursor_updated")); got != 0 {
		t.Fatalf("nothing may be broadcast before a join, got %d", got)
	}
}

func TestManager_AuthorizeParticipantWhileLive(t *testing.T) {
	store := newFakeStore()
	store.addSession("s1", "t", "alice")
	emitter := newFakeEmitter()
	mgr := NewManager(store, emitter)

	mgr.EnqueueJoin(context.Background(), "alice", "s1", "sock-a")
	waitSocketEvents(t, emitter, "sock-a", "session_joined", 1)

	mgr.EnqueueJoin(context.Background(), "bob", "s1", "sock-b")
	errs := waitSocketEvents(t, emitter, "sock-b", "error", 1)
	if code := errorCode(t, errs[0]); code != wire.ErrCodeForbidden {
		t.Fatalf("expected forbidden, got %q", code)
	}

	// Authorization through the HTTP surface reaches the live cache.
	mgr.AuthorizeParticipant("s1", ParticipantProfile{UserID: "bob", Name: "name-bob", Role: "editor"})
	mgr.EnqueueJoin(context.Background(), "bob", "s1", "sock-b")
	waitSocketEvents(t, emitter, "sock-b", "session_joined", 1)
}

func TestManager_ChatSerializesPerSession(t *testing.T) {
	store := newFakeStore()
	store.addSession("s1", "t", "alice")
	emitter := newFakeEmitter()
	mgr := NewManager(store, emitter)

	var next int
	mgr.newID = func() string {
		next++
		return fmt.Sprintf("m%d", next)
	}

	mgr.EnqueueJoin(context.Background(), "alice", "s1", "sock-a")
	waitSocketEvents(t, emitter, "sock-a", "session_joined", 1)

	const n = 50
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			mgr.EnqueueChat(context.Background(), "alice", "s1", "sock-a", fmt.Sprintf("line %d", i), "text")
		}(i)
	}
	wg.Wait()

	msgs := waitSessionEvents(t, emitter, "message_received", n)
	if len(msgs) != n {
		t.Fatalf("expected %d messages, got %d", n, len(msgs))
	}
	seen := make(map[string]bool, n)
	for _, evt := range msgs {
		msg := evt.payload.(wire.ChatMessage)
		if seen[msg.ID] {
			t.Fatalf("duplicate message id %s", msg.ID)
		}
		seen[msg.ID] = true
	}
	if store.messageCount("s1") != n {
		t.Fatalf("expected %d persisted messages, got %d", n, store.messageCount("s1"))
	}
}

func TestManager_SessionsRunIndependently(t *testing.T) {
	store := newFakeStore()
	store.addSession("s1", "t1", "alice")
	store.addSession("s2", "t2", "bob")
	emitter := newFakeEmitter()
	mgr := NewManager(store, emitter)

	mgr.EnqueueJoin(context.Background(), "alice", "s1", "sock-a")
	mgr.EnqueueJoin(context.Background(), "bob", "s2", "sock-b")
	waitSocketEvents(t, emitter, "sock-a", "session_joined", 1)
	waitSocketEvents(t, emitter, "sock-b", "session_joined", 1)

	mgr.EnqueueChat(context.Background(), "alice", "s1", "sock-a", "in s1", "text")
	mgr.EnqueueChat(context.Background(), "bob", "s2", "sock-b", "in s2", "text")
	msgs := waitSessionEvents(t, emitter, "message_received", 2)

	bySession := make(map[string]string)
	for _, evt := range msgs {
		msg := evt.payload.(wire.ChatMessage)
		bySession[evt.sessionID] = msg.Content
	}
	if bySession["s1"] != "in s1" || bySession["s2"] != "in s2" {
		t.Fatalf("messages routed to the wrong session: %+v", bySession)
	}
}
