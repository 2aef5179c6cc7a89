package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"airclass/internal/model"
)

// SessionService owns logical class-period sessions. A session belongs to
// one owner and is independent of any network connection.
type SessionService struct {
	mu       sync.RWMutex
	sessions map[string]*model.UserSession
	byOwner  map[string][]string // session ids in creation order
	seq      int

	log *logrus.Logger
}

func NewSessionService(log *logrus.Logger) *SessionService {
	return &SessionService{
		sessions: make(map[string]*model.UserSession),
		byOwner:  make(map[string][]string),
		seq:      1,
		log:      log,
	}
}

// Create always starts a new ACTIVE session. It deliberately does not
// deactivate the owner's prior sessions; ActiveFor resolves ties by
// creation order.
func (s *SessionService) Create(ownerID, name string) *model.UserSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := &model.UserSession{
		SessionID:    fmt.Sprintf("session-%d-%d", s.seq, time.Now().Unix()),
		Name:         name,
		OwnerID:      ownerID,
		Status:       model.SessionActive,
		CreatedAt:    time.Now(),
		Participants: make(map[string]struct{}),
	}
	s.seq++
	s.sessions[sess.SessionID] = sess
	s.byOwner[ownerID] = append(s.byOwner[ownerID], sess.SessionID)

	s.log.WithFields(logrus.Fields{
		"session_id": sess.SessionID,
		"owner_id":   ownerID,
		"name":       name,
	}).Info("session created")
	return sess
}

// ActiveFor returns the owner's first ACTIVE session in creation order,
// or nil. When several sessions are ACTIVE the oldest wins.
func (s *SessionService) ActiveFor(ownerID string) *model.UserSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.byOwner[ownerID] {
		if sess := s.sessions[id]; sess != nil && sess.Status == model.SessionActive {
			return sess
		}
	}
	return nil
}

// Get looks a session up by id.
func (s *SessionService) Get(sessionID string) (*model.UserSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[sessionID]
	return sess, ok
}

// ListFor returns the owner's sessions in creation order, as value copies.
func (s *SessionService) ListFor(ownerID string) []model.UserSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.UserSession, 0, len(s.byOwner[ownerID]))
	for _, id := range s.byOwner[ownerID] {
		if sess := s.sessions[id]; sess != nil {
			out = append(out, *sess)
		}
	}
	return out
}

// Join records a connection as a session participant. Unknown sessions
// are ignored; the caller already validated the id when it attached.
func (s *SessionService) Join(sessionID, clientID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[sessionID]; ok {
		sess.AddParticipant(clientID)
	}
}

// Leave removes a connection from the session's participant set.
func (s *SessionService) Leave(sessionID, clientID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[sessionID]; ok {
		sess.RemoveParticipant(clientID)
	}
}

// Deactivate marks the session INACTIVE. Idempotent.
func (s *SessionService) Deactivate(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return model.ErrSessionNotFound
	}
	sess.Status = model.SessionInactive
	s.log.WithField("session_id", sessionID).Info("session deactivated")
	return nil
}
