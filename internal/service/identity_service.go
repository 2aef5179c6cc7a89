package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"airclass/internal/model"
)

// IdentityService holds user records and the opaque auth tokens issued at
// login and registration. Tokens live only in memory and never expire.
type IdentityService struct {
	mu      sync.RWMutex
	byEmail map[string]*model.User
	byID    map[string]*model.User
	tokens  map[string]string // token -> user id
	nextID  int

	log *logrus.Logger
}

func NewIdentityService(log *logrus.Logger) *IdentityService {
	return &IdentityService{
		byEmail: make(map[string]*model.User),
		byID:    make(map[string]*model.User),
		tokens:  make(map[string]string),
		nextID:  1,
		log:     log,
	}
}

// Register creates a user record and issues a token for it.
func (s *IdentityService) Register(name, email, password string) (*model.User, string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[email]; exists {
		return nil, "", model.ErrEmailExists
	}

	user := &model.User{
		UserID:       fmt.Sprintf("user-%d", s.nextID),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}
	s.nextID++
	s.byEmail[email] = user
	s.byID[user.UserID] = user

	token, err := generateToken()
	if err != nil {
		return nil, "", err
	}
	s.tokens[token] = user.UserID

	s.log.WithFields(logrus.Fields{"user_id": user.UserID, "email": email}).Info("user registered")
	return user, token, nil
}

// Authenticate checks credentials against the store. The first argument is
// matched against email first, then against display name, so the desktop
// login dialog can send either.
func (s *IdentityService) Authenticate(nameOrEmail, password string) (*model.User, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.byEmail[nameOrEmail]
	if !ok {
		for _, u := range s.byEmail {
			if u.Name == nameOrEmail {
				user = u
				break
			}
		}
	}
	if user == nil {
		return nil, "", model.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return nil, "", model.ErrInvalidCredentials
	}

	token, err := generateToken()
	if err != nil {
		return nil, "", err
	}
	s.tokens[token] = user.UserID
	return user, token, nil
}

// UserByToken resolves an opaque token to its identity.
func (s *IdentityService) UserByToken(token string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userID, ok := s.tokens[token]
	if !ok {
		return nil, model.ErrInvalidToken
	}
	user, ok := s.byID[userID]
	if !ok {
		return nil, model.ErrInvalidToken
	}
	return user, nil
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
