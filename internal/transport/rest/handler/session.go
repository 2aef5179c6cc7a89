package handler

import (
	"encoding/json"
	"net/http"

	"airclass/internal/service"
)

// SessionHandler exposes logical class-period sessions over REST so the
// desktop app can list and retire them outside a live socket.
type SessionHandler struct {
	sessions *service.SessionService
}

func NewSessionHandler(sessions *service.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// List handles GET /session?owner_id=.
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID := r.URL.Query().Get("owner_id")
	if ownerID == "" {
		writeError(w, http.StatusBadRequest, "owner_id is required")
		return
	}
	writeData(w, http.StatusOK, h.sessions.ListFor(ownerID))
}

type deactivateSessionRequest struct {
	SessionID string `json:"session_id"`
}

// Deactivate handles PUT /session, marking the session INACTIVE.
func (h *SessionHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	var req deactivateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	if err := h.sessions.Deactivate(req.SessionID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Session deactivated successfully")
}
