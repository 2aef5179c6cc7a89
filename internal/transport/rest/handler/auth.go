package handler

import (
	"encoding/json"
	"net/http"

	"airclass/internal/service"
)

// AuthHandler handles login and registration over REST.
type AuthHandler struct {
	identity *service.IdentityService
}

func NewAuthHandler(identity *service.IdentityService) *AuthHandler {
	return &AuthHandler{identity: identity}
}

type loginRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type authData struct {
	UserID string `json:"user_id"`
	Token  string `json:"token"`
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	nameOrEmail := req.Email
	if nameOrEmail == "" {
		nameOrEmail = req.Name
	}

	user, token, err := h.identity.Authenticate(nameOrEmail, req.Password)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeData(w, http.StatusOK, authData{UserID: user.UserID, Token: token})
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	user, token, err := h.identity.Register(req.Name, req.Email, req.Password)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeData(w, http.StatusOK, authData{UserID: user.UserID, Token: token})
}
