package model

import (
	"time"

	"github.com/google/uuid"
)

// RequestStatus is the lifecycle state of a speak request. A request is
// mutable only while PENDING; APPROVED and REJECTED are terminal.
type RequestStatus string

const (
	RequestPending  RequestStatus = "PENDING"
	RequestApproved RequestStatus = "APPROVED"
	RequestRejected RequestStatus = "REJECTED"
)

// SpeakRequest is a student's queued request for the floor.
type SpeakRequest struct {
	ID          string        `json:"id"`
	StudentID   string        `json:"student_id"`
	StudentName string        `json:"student_name"`
	CreatedAt   time.Time     `json:"timestamp"`
	Status      RequestStatus `json:"status"`
}

// AttendanceCode is a time-boxed token redeemable to record presence.
type AttendanceCode struct {
	Code      string              `json:"code"`
	Expiry    time.Time           `json:"expiry"`
	Redeemed  map[string]struct{} `json:"-"`
	CreatedAt time.Time           `json:"created_at"`
}

// AttendanceRecord is one redemption of an attendance code.
type AttendanceRecord struct {
	StudentID   string    `json:"student_id"`
	StudentName string    `json:"student_name"`
	Timestamp   time.Time `json:"timestamp"`
	Code        string    `json:"code"`
}

// Room is a classroom: a realtime group of connections sharing gesture,
// attendance and speak-request state. Rooms hold member connection ids
// only, never connection objects; the registry owns those. All mutation
// happens under the room service lock.
type Room struct {
	RoomID          string
	Name            string
	Description     string
	OwnerID         string
	CreatedAt       time.Time
	Members         map[string]struct{}
	GestureHistory  []GestureEvent
	AttendanceCodes map[string]*AttendanceCode
	AttendanceLog   []AttendanceRecord
	SpeakQueue      []*SpeakRequest
	CurrentSpeaker  string
}

// NewRoom creates an empty room. Name and description stay empty when the
// room is created lazily by an identify message.
func NewRoom(roomID, name, description string) *Room {
	return &Room{
		RoomID:          roomID,
		Name:            name,
		Description:     description,
		CreatedAt:       time.Now(),
		Members:         make(map[string]struct{}),
		AttendanceCodes: make(map[string]*AttendanceCode),
	}
}

func (r *Room) AddMember(clientID string) {
	r.Members[clientID] = struct{}{}
}

func (r *Room) RemoveMember(clientID string) {
	delete(r.Members, clientID)
}

func (r *Room) IsEmpty() bool {
	return len(r.Members) == 0
}

func (r *Room) HasMember(clientID string) bool {
	_, ok := r.Members[clientID]
	return ok
}

// MemberIDs returns a copy-on-read snapshot of the membership set, safe to
// iterate after the room lock is released. Order is not stable.
func (r *Room) MemberIDs() []string {
	ids := make([]string, 0, len(r.Members))
	for id := range r.Members {
		ids = append(ids, id)
	}
	return ids
}

// AddGestureEvent appends unconditionally: no ordering validation, no dedup.
func (r *Room) AddGestureEvent(clientID string, gesture Gesture, timestamp []byte) {
	r.GestureHistory = append(r.GestureHistory, GestureEvent{
		ClientID:  clientID,
		Gesture:   gesture,
		Timestamp: timestamp,
	})
}

// AddSpeakRequest appends a PENDING request to the tail of the queue.
func (r *Room) AddSpeakRequest(studentID, studentName string) *SpeakRequest {
	req := &SpeakRequest{
		ID:          uuid.NewString(),
		StudentID:   studentID,
		StudentName: studentName,
		CreatedAt:   time.Now(),
		Status:      RequestPending,
	}
	r.SpeakQueue = append(r.SpeakQueue, req)
	return req
}

// NextPendingSpeakRequest returns the head-most PENDING request, discarding
// any leading resolved entries from the queue on the way. Returns nil when
// no PENDING request remains.
func (r *Room) NextPendingSpeakRequest() *SpeakRequest {
	for len(r.SpeakQueue) > 0 {
		head := r.SpeakQueue[0]
		if head.Status == RequestPending {
			return head
		}
		r.SpeakQueue = r.SpeakQueue[1:]
	}
	return nil
}

// FindSpeakRequest looks a queued request up by id.
func (r *Room) FindSpeakRequest(requestID string) *SpeakRequest {
	for _, req := range r.SpeakQueue {
		if req.ID == requestID {
			return req
		}
	}
	return nil
}

// ApproveSpeakRequest marks the request APPROVED and promotes its student
// to current speaker. Returns false if the id is not in the queue or the
// request already left PENDING; APPROVED and REJECTED are terminal.
func (r *Room) ApproveSpeakRequest(requestID string) bool {
	req := r.FindSpeakRequest(requestID)
	if req == nil || req.Status != RequestPending {
		return false
	}
	req.Status = RequestApproved
	r.CurrentSpeaker = req.StudentID
	return true
}

// RejectSpeakRequest marks the request REJECTED. The current speaker is
// left untouched. Returns false for unknown ids and resolved requests.
func (r *Room) RejectSpeakRequest(requestID string) bool {
	req := r.FindSpeakRequest(requestID)
	if req == nil || req.Status != RequestPending {
		return false
	}
	req.Status = RequestRejected
	return true
}

// PendingSpeakRequests lists queued requests still awaiting a decision.
func (r *Room) PendingSpeakRequests() []*SpeakRequest {
	var pending []*SpeakRequest
	for _, req := range r.SpeakQueue {
		if req.Status == RequestPending {
			pending = append(pending, req)
		}
	}
	return pending
}

// RoomSummary is the REST-facing view of a room.
type RoomSummary struct {
	RoomID          string    `json:"room_id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	CreatedAt       time.Time `json:"created_at"`
	OwnerID         string    `json:"owner_id,omitempty"`
	Participants    int       `json:"participants"`
	ActiveCodeCount int       `json:"active_attendance_codes"`
}

// Summary renders the room for listing endpoints.
func (r *Room) Summary(now time.Time) RoomSummary {
	active := 0
	for _, c := range r.AttendanceCodes {
		if c.Expiry.After(now) {
			active++
		}
	}
	return RoomSummary{
		RoomID:          r.RoomID,
		Name:            r.Name,
		Description:     r.Description,
		CreatedAt:       r.CreatedAt,
		OwnerID:         r.OwnerID,
		Participants:    len(r.Members),
		ActiveCodeCount: active,
	}
}
