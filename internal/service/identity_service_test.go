package service

import (
	"errors"
	"testing"

	"airclass/internal/model"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	identity := NewIdentityService(testLogger())

	user, token, err := identity.Register("Test User", "test@example.com", "123456")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.UserID != "user-1" {
		t.Fatalf("first user id = %q, want user-1", user.UserID)
	}
	if token == "" {
		t.Fatal("registration must issue a token")
	}

	got, err := identity.UserByToken(token)
	if err != nil {
		t.Fatalf("user by token: %v", err)
	}
	if got.UserID != user.UserID {
		t.Fatalf("token resolves to %q, want %q", got.UserID, user.UserID)
	}

	// Login works by email and by display name.
	if _, _, err := identity.Authenticate("test@example.com", "123456"); err != nil {
		t.Fatalf("authenticate by email: %v", err)
	}
	if _, _, err := identity.Authenticate("Test User", "123456"); err != nil {
		t.Fatalf("authenticate by name: %v", err)
	}
}

func TestAuthenticateRejectsBadCredentials(t *testing.T) {
	identity := NewIdentityService(testLogger())
	identity.Register("Test User", "test@example.com", "123456")

	if _, _, err := identity.Authenticate("test@example.com", "wrong"); !errors.Is(err, model.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := identity.Authenticate("nobody@example.com", "123456"); !errors.Is(err, model.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	identity := NewIdentityService(testLogger())
	identity.Register("Test User", "test@example.com", "123456")

	if _, _, err := identity.Register("Other", "test@example.com", "abcdef"); !errors.Is(err, model.ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
}

func TestUnknownTokenRejected(t *testing.T) {
	identity := NewIdentityService(testLogger())
	if _, err := identity.UserByToken("bogus"); !errors.Is(err, model.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
