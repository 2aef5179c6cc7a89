package model

import "time"

// SessionStatus is the lifecycle state of a logical session.
type SessionStatus string

const (
	SessionActive   SessionStatus = "ACTIVE"
	SessionInactive SessionStatus = "INACTIVE"
)

// UserSession is an owner-scoped class period. It is distinct from any
// network connection: a teacher's session outlives reconnects, and several
// connections can reference the same session.
type UserSession struct {
	SessionID    string              `json:"session_id"`
	Name         string              `json:"name"`
	OwnerID      string              `json:"owner_id"`
	Status       SessionStatus       `json:"status"`
	CreatedAt    time.Time           `json:"created_at"`
	Participants map[string]struct{} `json:"-"`
}

func (s *UserSession) AddParticipant(clientID string) {
	s.Participants[clientID] = struct{}{}
}

func (s *UserSession) RemoveParticipant(clientID string) {
	delete(s.Participants, clientID)
}
