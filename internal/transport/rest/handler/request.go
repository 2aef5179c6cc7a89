package handler

import (
	"encoding/json"
	"net/http"

	"airclass/internal/service"
)

// RequestHandler handles the speak-request workflow over REST.
type RequestHandler struct {
	rooms *service.RoomService
}

func NewRequestHandler(rooms *service.RoomService) *RequestHandler {
	return &RequestHandler{rooms: rooms}
}

// List handles GET /request?room_id=, returning pending requests only.
func (h *RequestHandler) List(w http.ResponseWriter, r *http.Request) {
	roomID := r.URL.Query().Get("room_id")
	if roomID == "" {
		writeError(w, http.StatusBadRequest, "room_id is required")
		return
	}

	pending, err := h.rooms.ListPendingRequests(roomID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, pending)
}

type createRequestBody struct {
	RoomID      string `json:"room_id"`
	StudentID   string `json:"student_id"`
	StudentName string `json:"student_name"`
}

// Create handles POST /request.
func (h *RequestHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.RoomID == "" || req.StudentID == "" || req.StudentName == "" {
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	created, err := h.rooms.CreateSpeakRequest(req.RoomID, req.StudentID, req.StudentName)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, created)
}

type updateRequestBody struct {
	RoomID    string `json:"room_id"`
	RequestID string `json:"request_id"`
	Action    string `json:"action"`
}

// Update handles PUT /request with action approve or reject.
func (h *RequestHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.RoomID == "" || req.RequestID == "" || req.Action == "" {
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	if err := h.rooms.UpdateSpeakRequest(req.RoomID, req.RequestID, req.Action); err != nil {
		writeDomainError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Request updated successfully")
}
