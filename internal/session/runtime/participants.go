package runtime

// participantSet tracks the user ids currently connected to a session, in
// join order. It is owned by the session's runtime goroutine and does no
// internal locking.
//
// Each active user is owned by exactly one socket; a join from a second
// connection takes over ownership so a stale disconnect cannot evict the
// newer connection.
type participantSet struct {
	order   []string
	sockets map[string]string
}

func newParticipantSet() *participantSet {
	return &participantSet{
		sockets: make(map[string]string),
	}
}

// add registers a user as active and records the owning socket. It returns
// false when the user was already active (the socket owner is still
// updated).
func (s *participantSet) add(userID, socketID string) bool {
	_, present := s.sockets[userID]
	s.sockets[userID] = socketID
	if present {
		return false
	}
	s.order = append(s.order, userID)
	return true
}

// remove deregisters a user if socketID still owns it. It returns false for
// repeated or stale removals, making leave/disconnect races harmless.
func (s *participantSet) remove(userID, socketID string) bool {
	owner, present := s.sockets[userID]
	if !present || owner != socketID {
		return false
	}
	delete(s.sockets, userID)
	for i, id := range s.order {
		if id == userID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// contains reports whether the user is currently active.
func (s *participantSet) contains(userID string) bool {
	_, ok := s.sockets[userID]
	return ok
}

// socketOf returns the socket currently owning the user's membership.
func (s *participantSet) socketOf(userID string) string {
	return s.sockets[userID]
}

// users returns the active user ids in join order.
func (s *participantSet) users() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

func (s *participantSet) len() int {
	return len(s.order)
}
