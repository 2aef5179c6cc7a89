package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"airclass/internal/service"
)

// ClassroomHandler handles classroom CRUD over REST.
type ClassroomHandler struct {
	rooms    *service.RoomService
	identity *service.IdentityService
}

func NewClassroomHandler(rooms *service.RoomService, identity *service.IdentityService) *ClassroomHandler {
	return &ClassroomHandler{rooms: rooms, identity: identity}
}

// List handles GET /classroom.
func (h *ClassroomHandler) List(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, h.rooms.ListClassrooms())
}

type createClassroomRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Create handles POST /classroom. The caller's token identifies the
// classroom owner.
func (h *ClassroomHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, err := h.identity.UserByToken(bearerToken(r))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req createClassroomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	summary := h.rooms.CreateClassroom(user.UserID, req.Name, req.Description)
	writeData(w, http.StatusOK, summary)
}

type updateClassroomRequest struct {
	RoomID      string  `json:"room_id"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// Update handles PUT /classroom. Only fields present in the body change.
func (h *ClassroomHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateClassroomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	summary, err := h.rooms.UpdateClassroom(req.RoomID, req.Name, req.Description)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, summary)
}

type deleteClassroomRequest struct {
	RoomID string `json:"room_id"`
}

// Delete handles DELETE /classroom.
func (h *ClassroomHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req deleteClassroomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.rooms.DeleteClassroom(req.RoomID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Classroom deleted successfully")
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}
