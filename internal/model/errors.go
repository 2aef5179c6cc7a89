package model

import "errors"

// Domain-level sentinel errors. Transport layers map these to wire
// responses; they carry no HTTP or websocket specifics.
var (
	// ErrRoomNotFound indicates the referenced classroom does not exist.
	ErrRoomNotFound = errors.New("classroom not found")

	// ErrInvalidCode indicates an attendance code that was never issued
	// for the room.
	ErrInvalidCode = errors.New("invalid attendance code")

	// ErrCodeExpired indicates an attendance code past its expiry.
	// Distinct from ErrInvalidCode so callers can tell the cases apart.
	ErrCodeExpired = errors.New("attendance code has expired")

	// ErrRequestNotFound indicates an unknown speak request id.
	ErrRequestNotFound = errors.New("speak request not found")

	// ErrRequestResolved indicates a decision on a request that already
	// left PENDING. Resolved statuses are terminal.
	ErrRequestResolved = errors.New("speak request already resolved")

	// ErrSessionNotFound indicates an unknown logical session id.
	ErrSessionNotFound = errors.New("session not found")

	// ErrInvalidCredentials indicates a failed login.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrEmailExists indicates a registration attempt with a taken email.
	ErrEmailExists = errors.New("user with this email already exists")

	// ErrInvalidToken indicates an auth token that maps to no user.
	ErrInvalidToken = errors.New("invalid or unknown token")

	// ErrInvalidRole indicates a register value outside hardware/desktop/mobile.
	ErrInvalidRole = errors.New("invalid client role")

	// ErrRoleAlreadySet indicates a re-identification attempt on a
	// connection whose role is no longer UNKNOWN.
	ErrRoleAlreadySet = errors.New("client role already set")

	// ErrInvalidGesture indicates a gesture label outside the closed set.
	ErrInvalidGesture = errors.New("unknown gesture")

	// ErrInvalidAction indicates a speak-request action other than
	// approve or reject.
	ErrInvalidAction = errors.New("invalid action")
)
