package service

import (
	"encoding/json"

	"github.com/sirupsen/logrus"

	"airclass/internal/model"
)

// GestureService turns validated gesture events into room state changes
// and broadcasts. The whole read-decide-mutate sequence for the speak
// queue runs inside the room lock, so a THUMB_UP from the hardware unit
// can never race a REST approve against the same request.
type GestureService struct {
	rooms *RoomService
	b     Broadcaster
	log   *logrus.Logger
}

func NewGestureService(rooms *RoomService, b Broadcaster, log *logrus.Logger) *GestureService {
	return &GestureService{rooms: rooms, b: b, log: log}
}

// gestureEvent is the normalized broadcast sent to the other room members.
type gestureEvent struct {
	Type        string          `json:"type"`
	ClientID    string          `json:"client_id"`
	GestureType model.Gesture   `json:"gesture_type"`
	Timestamp   json.RawMessage `json:"timestamp"`
}

// HandleGesture records the gesture in the sender's room, applies the
// speak-queue shortcuts, and fans the event out to every member except
// the sender. A client in no room is a silent no-op, like the rest of
// the gesture path.
func (s *GestureService) HandleGesture(client *Client, g model.Gesture, timestamp json.RawMessage) {
	client.RecordGesture(g, timestamp)

	clientID := client.ID()
	var (
		members  []string
		resolved *model.SpeakRequest
		action   string
		raised   *model.SpeakRequest
	)
	ok := s.rooms.WithRoomOf(clientID, func(room *model.Room) {
		room.AddGestureEvent(clientID, g, timestamp)

		switch g {
		case model.GestureThumbUp:
			if req := room.NextPendingSpeakRequest(); req != nil {
				room.ApproveSpeakRequest(req.ID)
				reqCopy := *req
				resolved, action = &reqCopy, "approve"
			}
		case model.GestureThumbDown:
			if req := room.NextPendingSpeakRequest(); req != nil {
				room.RejectSpeakRequest(req.ID)
				reqCopy := *req
				resolved, action = &reqCopy, "reject"
			}
		case model.GestureHandRaise:
			req := room.AddSpeakRequest(clientID, client.DisplayName())
			reqCopy := *req
			raised = &reqCopy
		}

		members = room.MemberIDs()
	})
	if !ok {
		s.log.WithField("client_id", clientID).Debug("gesture from client outside any room")
		return
	}

	if resolved != nil {
		s.b.BroadcastToRole(members, model.RoleDesktop, requestUpdateEvent(resolved.ID, action))
	}
	if raised != nil {
		s.b.BroadcastToRole(members, model.RoleDesktop, event{Type: EventSpeakRequest, Data: *raised})
	}

	s.b.BroadcastToMembers(members, clientID, gestureEvent{
		Type:        EventGesture,
		ClientID:    clientID,
		GestureType: g,
		Timestamp:   timestamp,
	})

	s.log.WithFields(logrus.Fields{"client_id": clientID, "gesture": g}).Info("gesture broadcast")
}
