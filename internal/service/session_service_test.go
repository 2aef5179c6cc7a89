package service

import (
	"errors"
	"testing"

	"airclass/internal/model"
)

// Creating a second session does not deactivate the first: both stay
// ACTIVE and the oldest one wins the ActiveFor scan. This permissive
// behavior is deliberate; see DESIGN.md.
func TestActiveForReturnsOldestActiveSession(t *testing.T) {
	sessions := NewSessionService(testLogger())

	first := sessions.Create("u1", "Period 1")
	second := sessions.Create("u1", "Period 2")

	if first.Status != model.SessionActive || second.Status != model.SessionActive {
		t.Fatal("both sessions must remain ACTIVE after the second create")
	}

	active := sessions.ActiveFor("u1")
	if active == nil || active.SessionID != first.SessionID {
		t.Fatalf("ActiveFor must return the oldest ACTIVE session, got %+v", active)
	}

	if err := sessions.Deactivate(first.SessionID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	active = sessions.ActiveFor("u1")
	if active == nil || active.SessionID != second.SessionID {
		t.Fatalf("after deactivating the oldest, the next ACTIVE wins, got %+v", active)
	}
}

func TestDeactivateIsIdempotent(t *testing.T) {
	sessions := NewSessionService(testLogger())
	sess := sessions.Create("u1", "Period 1")

	if err := sessions.Deactivate(sess.SessionID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if err := sessions.Deactivate(sess.SessionID); err != nil {
		t.Fatalf("second deactivate must be a no-op, got %v", err)
	}
	if err := sessions.Deactivate("missing"); !errors.Is(err, model.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestJoinAndLeaveTrackParticipants(t *testing.T) {
	sessions := NewSessionService(testLogger())
	sess := sessions.Create("u1", "Period 1")

	sessions.Join(sess.SessionID, "m1")
	sessions.Join(sess.SessionID, "m1") // idempotent
	sessions.Join("missing", "m2")      // unknown session is a no-op

	got, _ := sessions.Get(sess.SessionID)
	if len(got.Participants) != 1 {
		t.Fatalf("expected one participant, got %d", len(got.Participants))
	}

	sessions.Leave(sess.SessionID, "m1")
	got, _ = sessions.Get(sess.SessionID)
	if len(got.Participants) != 0 {
		t.Fatalf("leave must remove the participant, got %d", len(got.Participants))
	}
}

func TestActiveForUnknownOwner(t *testing.T) {
	sessions := NewSessionService(testLogger())
	if sessions.ActiveFor("nobody") != nil {
		t.Fatal("unknown owner must have no active session")
	}
}
