package service

import "airclass/internal/model"

// Broadcaster is the fan-out boundary shared by the websocket router and
// the REST handlers. Member ids are a snapshot taken under the room lock;
// delivery is best effort and a failed recipient never blocks the rest.
type Broadcaster interface {
	// BroadcastToMembers sends v to every listed member except exceptID
	// (pass "" to exclude nobody).
	BroadcastToMembers(memberIDs []string, exceptID string, v interface{})

	// BroadcastToRole sends v to the listed members holding the given role.
	BroadcastToRole(memberIDs []string, role model.Role, v interface{})
}

// Event types pushed to room members outside of direct request/response
// exchanges.
const (
	EventGesture          = "gesture"
	EventPageNavigation   = "page_navigation"
	EventAttendanceUpdate = "attendance_update"
	EventAttendanceQR     = "attendance_qr_code"
	EventSpeakRequest     = "speak_request"
	EventRequestUpdate    = "request_update"
)

// event is the {type, data} wrapper used by room notifications that carry
// a structured payload.
type event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}
