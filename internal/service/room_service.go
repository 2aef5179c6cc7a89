package service

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"airclass/internal/model"
)

// RoomService owns the room table. One lock serializes every room
// mutation, which restores the atomicity the handlers rely on: a
// multi-step operation (record gesture, resolve the speak queue, snapshot
// members) can never interleave with another connection's handler.
// Broadcasts happen after the lock is released, on member-id snapshots.
type RoomService struct {
	mu      sync.RWMutex
	rooms   map[string]*model.Room
	nextSeq int
	now     func() time.Time
	b       Broadcaster
	log     *logrus.Logger
}

func NewRoomService(log *logrus.Logger) *RoomService {
	return &RoomService{
		rooms:   make(map[string]*model.Room),
		nextSeq: 1,
		now:     time.Now,
		log:     log,
	}
}

// SetBroadcaster wires the fan-out engine in after construction.
func (s *RoomService) SetBroadcaster(b Broadcaster) {
	s.b = b
}

// JoinRoom adds a client to the room, creating the room lazily on first
// reference. Joining twice is a no-op. Callers must have gated on an
// identified role already.
func (s *RoomService) JoinRoom(roomID, clientID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[roomID]
	if !ok {
		room = model.NewRoom(roomID, "", "")
		s.rooms[roomID] = room
	}
	room.AddMember(clientID)
	s.log.WithFields(logrus.Fields{"client_id": clientID, "room_id": roomID}).Info("client joined room")
}

// DropMember removes the client from every room it belongs to. A room
// left empty is deleted immediately; the membership removal completes
// before the emptiness check.
func (s *RoomService) DropMember(clientID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for roomID, room := range s.rooms {
		if !room.HasMember(clientID) {
			continue
		}
		room.RemoveMember(clientID)
		if room.IsEmpty() {
			delete(s.rooms, roomID)
			s.log.WithField("room_id", roomID).Info("room deleted (empty)")
		}
	}
}

// WithRoomOf runs fn under the room lock against the first room the
// client is a member of. Returns false when the client is in no room.
// fn must not block; it runs inside the single-writer critical section.
func (s *RoomService) WithRoomOf(clientID string, fn func(room *model.Room)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, room := range s.rooms {
		if room.HasMember(clientID) {
			fn(room)
			return true
		}
	}
	return false
}

// RoomExists reports whether the room table holds roomID.
func (s *RoomService) RoomExists(roomID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.rooms[roomID]
	return ok
}

// CreateClassroom creates a named room through the REST surface.
func (s *RoomService) CreateClassroom(ownerID, name, description string) model.RoomSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	roomID := fmt.Sprintf("room-%d-%d", s.nextSeq, s.now().Unix())
	s.nextSeq++
	room := model.NewRoom(roomID, name, description)
	room.OwnerID = ownerID
	s.rooms[roomID] = room
	s.log.WithFields(logrus.Fields{"room_id": roomID, "owner_id": ownerID}).Info("classroom created")
	return room.Summary(s.now())
}

// ListClassrooms summarizes every room.
func (s *RoomService) ListClassrooms() []model.RoomSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	now := s.now()
	out := make([]model.RoomSummary, 0, len(s.rooms))
	for _, room := range s.rooms {
		out = append(out, room.Summary(now))
	}
	return out
}

// UpdateClassroom patches name and/or description. This is the only way
// to set metadata on a lazily created room.
func (s *RoomService) UpdateClassroom(roomID string, name, description *string) (model.RoomSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[roomID]
	if !ok {
		return model.RoomSummary{}, model.ErrRoomNotFound
	}
	if name != nil {
		room.Name = *name
	}
	if description != nil {
		room.Description = *description
	}
	return room.Summary(s.now()), nil
}

// DeleteClassroom removes a room outright.
func (s *RoomService) DeleteClassroom(roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[roomID]; !ok {
		return model.ErrRoomNotFound
	}
	delete(s.rooms, roomID)
	s.log.WithField("room_id", roomID).Info("classroom deleted")
	return nil
}

// GenerateAttendanceCode issues a fresh code valid for durationMinutes and
// pushes an attendance_qr_code event to the room's desktop clients.
func (s *RoomService) GenerateAttendanceCode(roomID string, durationMinutes int) (*model.AttendanceCode, error) {
	s.mu.Lock()
	room, ok := s.rooms[roomID]
	if !ok {
		s.mu.Unlock()
		return nil, model.ErrRoomNotFound
	}
	now := s.now()
	code := &model.AttendanceCode{
		Code:      "ATT-" + strings.ToUpper(uuid.NewString()[:8]),
		Expiry:    now.Add(time.Duration(durationMinutes) * time.Minute),
		Redeemed:  make(map[string]struct{}),
		CreatedAt: now,
	}
	room.AttendanceCodes[code.Code] = code
	members := room.MemberIDs()
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{"room_id": roomID, "code": code.Code}).Info("attendance code generated")
	s.notifyRole(members, model.RoleDesktop, event{Type: EventAttendanceQR, Data: code})
	return code, nil
}

// MarkAttendance redeems a code. A record is appended even when the
// student has already redeemed this code; the redeemed set only tracks
// who has used it. Expiry is checked lazily against the wall clock.
func (s *RoomService) MarkAttendance(roomID, code, studentID, studentName string) (*model.AttendanceRecord, error) {
	s.mu.Lock()
	room, ok := s.rooms[roomID]
	if !ok {
		s.mu.Unlock()
		return nil, model.ErrRoomNotFound
	}
	ac, ok := room.AttendanceCodes[code]
	if !ok {
		s.mu.Unlock()
		return nil, model.ErrInvalidCode
	}
	now := s.now()
	if now.After(ac.Expiry) {
		s.mu.Unlock()
		return nil, model.ErrCodeExpired
	}
	record := model.AttendanceRecord{
		StudentID:   studentID,
		StudentName: studentName,
		Timestamp:   now,
		Code:        code,
	}
	room.AttendanceLog = append(room.AttendanceLog, record)
	ac.Redeemed[studentID] = struct{}{}
	members := room.MemberIDs()
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{"room_id": roomID, "student_id": studentID}).Info("attendance marked")
	s.notifyRole(members, model.RoleDesktop, event{Type: EventAttendanceUpdate, Data: record})
	return &record, nil
}

// ListAttendance returns the room's attendance log.
func (s *RoomService) ListAttendance(roomID string) ([]model.AttendanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[roomID]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	out := make([]model.AttendanceRecord, len(room.AttendanceLog))
	copy(out, room.AttendanceLog)
	return out, nil
}

// CreateSpeakRequest queues a request and notifies desktop clients.
func (s *RoomService) CreateSpeakRequest(roomID, studentID, studentName string) (*model.SpeakRequest, error) {
	s.mu.Lock()
	room, ok := s.rooms[roomID]
	if !ok {
		s.mu.Unlock()
		return nil, model.ErrRoomNotFound
	}
	req := room.AddSpeakRequest(studentID, studentName)
	reqCopy := *req
	members := room.MemberIDs()
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{"room_id": roomID, "request_id": reqCopy.ID}).Info("speak request created")
	s.notifyRole(members, model.RoleDesktop, event{Type: EventSpeakRequest, Data: reqCopy})
	return &reqCopy, nil
}

// ListPendingRequests returns queued requests still PENDING.
func (s *RoomService) ListPendingRequests(roomID string) ([]model.SpeakRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[roomID]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	pending := room.PendingSpeakRequests()
	out := make([]model.SpeakRequest, 0, len(pending))
	for _, req := range pending {
		out = append(out, *req)
	}
	return out, nil
}

// UpdateSpeakRequest approves or rejects a request by id and notifies
// desktop clients with a request_update event.
func (s *RoomService) UpdateSpeakRequest(roomID, requestID, action string) error {
	s.mu.Lock()
	room, ok := s.rooms[roomID]
	if !ok {
		s.mu.Unlock()
		return model.ErrRoomNotFound
	}

	var found bool
	switch action {
	case "approve":
		found = room.ApproveSpeakRequest(requestID)
	case "reject":
		found = room.RejectSpeakRequest(requestID)
	default:
		s.mu.Unlock()
		return model.ErrInvalidAction
	}
	if !found {
		err := model.ErrRequestNotFound
		if room.FindSpeakRequest(requestID) != nil {
			err = model.ErrRequestResolved
		}
		s.mu.Unlock()
		return err
	}
	members := room.MemberIDs()
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{
		"room_id":    roomID,
		"request_id": requestID,
		"action":     action,
	}).Info("speak request updated")
	s.notifyRole(members, model.RoleDesktop, requestUpdateEvent(requestID, action))
	return nil
}

func (s *RoomService) notifyRole(members []string, role model.Role, v interface{}) {
	if s.b == nil {
		return
	}
	s.b.BroadcastToRole(members, role, v)
}

func requestUpdateEvent(requestID, action string) event {
	return event{Type: EventRequestUpdate, Data: map[string]string{
		"request_id": requestID,
		"action":     action,
	}}
}
