package handler

import (
	"encoding/json"
	"net/http"

	"airclass/internal/service"
)

// AttendanceHandler handles attendance-code issuance and redemption.
type AttendanceHandler struct {
	rooms *service.RoomService
}

func NewAttendanceHandler(rooms *service.RoomService) *AttendanceHandler {
	return &AttendanceHandler{rooms: rooms}
}

// List handles GET /attendance?room_id=.
func (h *AttendanceHandler) List(w http.ResponseWriter, r *http.Request) {
	roomID := r.URL.Query().Get("room_id")
	if roomID == "" {
		writeError(w, http.StatusBadRequest, "room_id is required")
		return
	}

	records, err := h.rooms.ListAttendance(roomID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, records)
}

type markAttendanceRequest struct {
	RoomID      string `json:"room_id"`
	Code        string `json:"code"`
	StudentID   string `json:"student_id"`
	StudentName string `json:"student_name"`
}

// Mark handles POST /attendance.
func (h *AttendanceHandler) Mark(w http.ResponseWriter, r *http.Request) {
	var req markAttendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.RoomID == "" || req.Code == "" || req.StudentID == "" || req.StudentName == "" {
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	record, err := h.rooms.MarkAttendance(req.RoomID, req.Code, req.StudentID, req.StudentName)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, response{
		Success: true,
		Message: "Attendance marked successfully",
		Data:    record,
	})
}

type generateCodeRequest struct {
	RoomID          string `json:"room_id"`
	DurationMinutes *int   `json:"duration_minutes"`
}

// GenerateCode handles POST /attendance/code. Duration defaults to five
// minutes when omitted.
func (h *AttendanceHandler) GenerateCode(w http.ResponseWriter, r *http.Request) {
	var req generateCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.RoomID == "" {
		writeError(w, http.StatusBadRequest, "room_id is required")
		return
	}

	duration := 5
	if req.DurationMinutes != nil {
		duration = *req.DurationMinutes
	}

	code, err := h.rooms.GenerateAttendanceCode(req.RoomID, duration)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, code)
}
