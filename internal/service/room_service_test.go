package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"airclass/internal/model"
)

func TestEmptyRoomIsDeletedOnLastLeave(t *testing.T) {
	rooms := NewRoomService(testLogger())

	rooms.JoinRoom("room-1", "desktop-1")
	rooms.JoinRoom("room-1", "mobile-1")

	rooms.DropMember("desktop-1")
	if !rooms.RoomExists("room-1") {
		t.Fatal("room must survive while a member remains")
	}

	rooms.DropMember("mobile-1")
	if rooms.RoomExists("room-1") {
		t.Fatal("room must be deleted once the last member leaves")
	}
}

func TestJoinRoomIsIdempotent(t *testing.T) {
	rooms := NewRoomService(testLogger())
	rooms.JoinRoom("room-1", "mobile-1")
	rooms.JoinRoom("room-1", "mobile-1")

	var members []string
	rooms.WithRoomOf("mobile-1", func(r *model.Room) { members = r.MemberIDs() })
	if len(members) != 1 {
		t.Fatalf("double join must not duplicate membership, got %v", members)
	}
}

func TestAttendanceCodeLifecycle(t *testing.T) {
	rooms := NewRoomService(testLogger())
	now := time.Now()
	rooms.now = func() time.Time { return now }

	rooms.JoinRoom("room-1", "desktop-1")

	code, err := rooms.GenerateAttendanceCode("room-1", 5)
	if err != nil {
		t.Fatalf("generate code: %v", err)
	}
	if !strings.HasPrefix(code.Code, "ATT-") || len(code.Code) != 12 {
		t.Fatalf("unexpected code format: %q", code.Code)
	}

	record, err := rooms.MarkAttendance("room-1", code.Code, "s1", "Ann")
	if err != nil {
		t.Fatalf("mark attendance: %v", err)
	}
	if record.StudentID != "s1" || record.Code != code.Code {
		t.Fatalf("unexpected record: %+v", record)
	}

	// Marking again with the same student appends a second record.
	if _, err := rooms.MarkAttendance("room-1", code.Code, "s1", "Ann"); err != nil {
		t.Fatalf("second mark: %v", err)
	}
	records, err := rooms.ListAttendance("room-1")
	if err != nil {
		t.Fatalf("list attendance: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("duplicate redemption must keep both records, got %d", len(records))
	}

	// Unknown code and expired code are distinguishable failures.
	if _, err := rooms.MarkAttendance("room-1", "ATT-NOPE", "s1", "Ann"); !errors.Is(err, model.ErrInvalidCode) {
		t.Fatalf("expected ErrInvalidCode, got %v", err)
	}
	now = now.Add(6 * time.Minute)
	if _, err := rooms.MarkAttendance("room-1", code.Code, "s2", "Ben"); !errors.Is(err, model.ErrCodeExpired) {
		t.Fatalf("expected ErrCodeExpired, got %v", err)
	}
}

func TestZeroDurationCodeExpiresImmediately(t *testing.T) {
	rooms := NewRoomService(testLogger())
	now := time.Now()
	rooms.now = func() time.Time { return now }

	rooms.JoinRoom("room-1", "desktop-1")
	code, err := rooms.GenerateAttendanceCode("room-1", 0)
	if err != nil {
		t.Fatalf("generate code: %v", err)
	}

	now = now.Add(time.Nanosecond)
	if _, err := rooms.MarkAttendance("room-1", code.Code, "s1", "Ann"); !errors.Is(err, model.ErrCodeExpired) {
		t.Fatalf("expected ErrCodeExpired for zero-duration code, got %v", err)
	}
}

func TestSpeakRequestStatusIsTerminal(t *testing.T) {
	rooms := NewRoomService(testLogger())
	rooms.JoinRoom("room-1", "desktop-1")

	req, err := rooms.CreateSpeakRequest("room-1", "s1", "Ann")
	if err != nil {
		t.Fatalf("create request: %v", err)
	}

	if err := rooms.UpdateSpeakRequest("room-1", req.ID, "reject"); err != nil {
		t.Fatalf("reject: %v", err)
	}

	pending, err := rooms.ListPendingRequests("room-1")
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("rejected request must not be pending, got %v", pending)
	}

	// Re-deciding a resolved request is refused: REJECTED cannot become
	// APPROVED and the rejected student never becomes the speaker.
	if err := rooms.UpdateSpeakRequest("room-1", req.ID, "approve"); !errors.Is(err, model.ErrRequestResolved) {
		t.Fatalf("expected ErrRequestResolved, got %v", err)
	}
	var speaker string
	rooms.WithRoomOf("desktop-1", func(r *model.Room) {
		speaker = r.CurrentSpeaker
		if got := r.FindSpeakRequest(req.ID); got != nil && got.Status != model.RequestRejected {
			t.Fatalf("terminal status was overwritten: %v", got.Status)
		}
	})
	if speaker != "" {
		t.Fatalf("refused approval must not set a speaker, got %q", speaker)
	}
}

func TestUpdateSpeakRequestErrors(t *testing.T) {
	rooms := NewRoomService(testLogger())
	rooms.JoinRoom("room-1", "desktop-1")

	if err := rooms.UpdateSpeakRequest("nope", "id", "approve"); !errors.Is(err, model.ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
	if err := rooms.UpdateSpeakRequest("room-1", "missing", "approve"); !errors.Is(err, model.ErrRequestNotFound) {
		t.Fatalf("expected ErrRequestNotFound, got %v", err)
	}

	req, _ := rooms.CreateSpeakRequest("room-1", "s1", "Ann")
	if err := rooms.UpdateSpeakRequest("room-1", req.ID, "defer"); !errors.Is(err, model.ErrInvalidAction) {
		t.Fatalf("expected ErrInvalidAction, got %v", err)
	}
}

func TestRESTEventsReachDesktopMembersOnly(t *testing.T) {
	log := testLogger()
	registry := NewClientRegistry(log)
	rooms := NewRoomService(log)
	registry.SetRoomMembership(rooms)
	rooms.SetBroadcaster(NewBroadcastEngine(registry, log))

	desktop := &fakeSender{}
	mobile := &fakeSender{}

	d := registry.Register(desktop)
	if err := registry.IdentifyRole(d, model.RoleDesktop, "d1"); err != nil {
		t.Fatalf("identify desktop: %v", err)
	}
	m := registry.Register(mobile)
	if err := registry.IdentifyRole(m, model.RoleMobile, "m1"); err != nil {
		t.Fatalf("identify mobile: %v", err)
	}

	rooms.JoinRoom("room-1", "d1")
	rooms.JoinRoom("room-1", "m1")

	if _, err := rooms.CreateSpeakRequest("room-1", "m1", "Ann"); err != nil {
		t.Fatalf("create request: %v", err)
	}

	if desktop.count() != 1 {
		t.Fatalf("desktop expected 1 speak_request event, got %d", desktop.count())
	}
	if mobile.count() != 0 {
		t.Fatalf("mobile must not receive desktop-only events, got %d", mobile.count())
	}
	if !strings.Contains(string(desktop.last()), `"speak_request"`) {
		t.Fatalf("unexpected event payload: %s", desktop.last())
	}
}
