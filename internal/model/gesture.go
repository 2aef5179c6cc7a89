package model

import (
	"encoding/json"
	"fmt"
)

// Gesture is the closed set of gesture labels the hardware unit can emit.
type Gesture string

const (
	GestureHandRaise Gesture = "HAND_RAISE"
	GestureThumbUp   Gesture = "THUMB_UP"
	GestureThumbDown Gesture = "THUMB_DOWN"
	GestureWave      Gesture = "WAVE"
	GestureZoomIn    Gesture = "ZOOM_IN"
	GestureZoomOut   Gesture = "ZOOM_OUT"
)

// ParseGesture validates a wire-level gesture label. Labels outside the
// closed set are a validation error, not a silently accepted string.
func ParseGesture(s string) (Gesture, error) {
	switch g := Gesture(s); g {
	case GestureHandRaise, GestureThumbUp, GestureThumbDown,
		GestureWave, GestureZoomIn, GestureZoomOut:
		return g, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidGesture, s)
}

// GestureEvent is one entry in a room's gesture history. Timestamp is kept
// verbatim as sent by the client (hardware units send epoch numbers, apps
// send ISO strings).
type GestureEvent struct {
	ClientID  string          `json:"client_id"`
	Gesture   Gesture         `json:"gesture"`
	Timestamp json.RawMessage `json:"timestamp"`
}
