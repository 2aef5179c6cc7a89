package ws

import (
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"airclass/internal/model"
	"airclass/internal/service"
)

// Router demultiplexes inbound JSON envelopes to the services. It is the
// only place that knows the wire-level message types; everything below it
// works with domain values.
type Router struct {
	registry *service.ClientRegistry
	identity *service.IdentityService
	sessions *service.SessionService
	rooms    *service.RoomService
	gestures *service.GestureService
	b        service.Broadcaster
	log      *logrus.Logger
}

func NewRouter(
	registry *service.ClientRegistry,
	identity *service.IdentityService,
	sessions *service.SessionService,
	rooms *service.RoomService,
	gestures *service.GestureService,
	b service.Broadcaster,
	log *logrus.Logger,
) *Router {
	return &Router{
		registry: registry,
		identity: identity,
		sessions: sessions,
		rooms:    rooms,
		gestures: gestures,
		b:        b,
		log:      log,
	}
}

type errorReply struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type registrationSuccess struct {
	Type       string `json:"type"`
	ClientType string `json:"client_type"`
	ClientID   string `json:"client_id"`
}

type loginResponse struct {
	Type        string `json:"type"`
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	ClientID    string `json:"client_id,omitempty"`
	SessionID   string `json:"session_id,omitempty"`
	SessionName string `json:"session_name,omitempty"`
}

type registerResponse struct {
	Type    string `json:"type"`
	Success bool   `json:"success"`
	Message string `json:"message"`
	UserID  string `json:"user_id,omitempty"`
}

type sessionResponse struct {
	Type        string `json:"type"`
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	SessionID   string `json:"session_id,omitempty"`
	SessionName string `json:"session_name,omitempty"`
}

type roomJoined struct {
	Type        string `json:"type"`
	RoomID      string `json:"room_id"`
	ClientID    string `json:"client_id"`
	SessionID   string `json:"session_id,omitempty"`
	SessionName string `json:"session_name,omitempty"`
}

type pageNavigation struct {
	Type      string          `json:"type"`
	ClientID  string          `json:"client_id"`
	Action    string          `json:"action"`
	Timestamp json.RawMessage `json:"timestamp"`
}

// HandleMessage processes one inbound envelope. No failure here is fatal
// to the connection: malformed input earns an error envelope, and an
// unexpected panic is converted to one too.
func (r *Router) HandleMessage(c *service.Client, raw []byte) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.WithField("panic", rec).Error("message handler panicked")
			c.Send(errorReply{Type: "error", Message: fmt.Sprintf("Error processing message: %v", rec)})
		}
	}()

	var env map[string]json.RawMessage
	if err := json.Unmarshal(raw, &env); err != nil {
		c.Send(errorReply{Type: "error", Message: "Invalid message format"})
		return
	}

	typeRaw, hasType := env["type"]
	if !hasType {
		// Bootstrap registration is the one typeless envelope allowed,
		// and only before the connection has a role.
		if _, ok := env["register"]; ok && c.Role() == model.RoleUnknown {
			r.handleBootstrap(c, env)
			return
		}
		c.Send(errorReply{Type: "error", Message: "Missing message type"})
		return
	}

	var msgType string
	json.Unmarshal(typeRaw, &msgType)

	// These establish identity and bypass the role gate.
	switch msgType {
	case "login":
		r.handleLogin(c, env)
		return
	case "register":
		r.handleRegister(c, env)
		return
	case "create_session":
		r.handleCreateSession(c, env)
		return
	}

	if c.Role() == model.RoleUnknown {
		c.Send(errorReply{Type: "error", Message: "Client not authenticated"})
		return
	}

	switch {
	case msgType == "identify" && env["roomId"] != nil:
		r.handleIdentify(c, env)
	case msgType == "gesture":
		r.handleGesture(c, env)
	case msgType == "page_navigation":
		r.handlePageNavigation(c, env)
	default:
		// Unknown types from identified clients are logged and dropped
		// without a reply.
		r.log.WithFields(logrus.Fields{
			"client_id": c.ID(),
			"msg_type":  msgType,
		}).Warn("unhandled message type")
	}
}

func (r *Router) handleBootstrap(c *service.Client, env map[string]json.RawMessage) {
	var registerAs string
	json.Unmarshal(env["register"], &registerAs)

	role, err := model.ParseRole(registerAs)
	if err != nil {
		c.Send(errorReply{Type: "error", Message: "Invalid client role"})
		return
	}

	suppliedID := stringField(env, "id")
	if err := r.registry.IdentifyRole(c, role, suppliedID); err != nil {
		c.Send(errorReply{Type: "error", Message: err.Error()})
		return
	}

	c.Send(registrationSuccess{
		Type:       "registration_success",
		ClientType: string(c.Role()),
		ClientID:   c.ID(),
	})
}

func (r *Router) handleLogin(c *service.Client, env map[string]json.RawMessage) {
	nameOrEmail := stringField(env, "email")
	if nameOrEmail == "" {
		nameOrEmail = stringField(env, "name")
	}
	password := stringField(env, "password")

	if nameOrEmail == "" || password == "" {
		c.Send(loginResponse{Type: "login_response", Success: false, Message: "Missing name or password"})
		return
	}

	user, _, err := r.identity.Authenticate(nameOrEmail, password)
	if err != nil {
		c.Send(loginResponse{Type: "login_response", Success: false, Message: "Invalid credentials"})
		return
	}

	r.registry.AttachUser(c, user)

	resp := loginResponse{
		Type:     "login_response",
		Success:  true,
		Message:  "Authentication successful",
		ClientID: c.ID(),
	}
	if sess := r.sessions.ActiveFor(user.UserID); sess != nil {
		c.SetSession(sess.SessionID)
		resp.SessionID = sess.SessionID
		resp.SessionName = sess.Name
	}
	c.Send(resp)
}

func (r *Router) handleRegister(c *service.Client, env map[string]json.RawMessage) {
	name := stringField(env, "name")
	email := stringField(env, "email")
	password := stringField(env, "password")

	if name == "" || email == "" || password == "" {
		c.Send(registerResponse{Type: "register_response", Success: false, Message: "Missing required fields"})
		return
	}

	user, _, err := r.identity.Register(name, email, password)
	if err != nil {
		c.Send(registerResponse{Type: "register_response", Success: false, Message: err.Error()})
		return
	}

	c.Send(registerResponse{
		Type:    "register_response",
		Success: true,
		Message: "Registration successful",
		UserID:  user.UserID,
	})
}

func (r *Router) handleCreateSession(c *service.Client, env map[string]json.RawMessage) {
	if c.ID() == "" {
		c.Send(sessionResponse{Type: "session_response", Success: false, Message: "Authentication required to create a session"})
		return
	}

	name := stringField(env, "name")
	if name == "" {
		c.Send(sessionResponse{Type: "session_response", Success: false, Message: "Session name is required"})
		return
	}

	sess := r.sessions.Create(c.ID(), name)
	c.SetSession(sess.SessionID)

	c.Send(sessionResponse{
		Type:        "session_response",
		Success:     true,
		Message:     "Session created successfully",
		SessionID:   sess.SessionID,
		SessionName: sess.Name,
	})
}

func (r *Router) handleIdentify(c *service.Client, env map[string]json.RawMessage) {
	roomID := stringField(env, "roomId")
	r.rooms.JoinRoom(roomID, c.ID())

	resp := roomJoined{
		Type:     "room_joined",
		RoomID:   roomID,
		ClientID: c.ID(),
	}
	if sid := c.SessionID(); sid != "" {
		if sess, ok := r.sessions.Get(sid); ok {
			r.sessions.Join(sid, c.ID())
			resp.SessionID = sid
			resp.SessionName = sess.Name
		}
	}
	c.Send(resp)
}

func (r *Router) handleGesture(c *service.Client, env map[string]json.RawMessage) {
	label := stringField(env, "gesture_type")
	timestamp := rawField(env, "timestamp")
	if label == "" || timestamp == nil {
		c.Send(errorReply{Type: "error", Message: "Invalid gesture data format"})
		return
	}

	gesture, err := model.ParseGesture(label)
	if err != nil {
		c.Send(errorReply{Type: "error", Message: "Invalid gesture data format"})
		return
	}

	r.gestures.HandleGesture(c, gesture, timestamp)
}

func (r *Router) handlePageNavigation(c *service.Client, env map[string]json.RawMessage) {
	action := stringField(env, "action")
	timestamp := rawField(env, "timestamp")
	if action == "" || timestamp == nil {
		c.Send(errorReply{Type: "error", Message: "Invalid navigation data format"})
		return
	}

	clientID := c.ID()
	var members []string
	if !r.rooms.WithRoomOf(clientID, func(room *model.Room) {
		members = room.MemberIDs()
	}) {
		return
	}

	r.b.BroadcastToMembers(members, clientID, pageNavigation{
		Type:      service.EventPageNavigation,
		ClientID:  clientID,
		Action:    action,
		Timestamp: timestamp,
	})
	r.log.WithFields(logrus.Fields{"client_id": clientID, "action": action}).Info("page navigation broadcast")
}

// stringField extracts a string value, returning "" for absent, null, or
// non-string fields.
func stringField(env map[string]json.RawMessage, key string) string {
	raw, ok := env[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// rawField extracts a field verbatim, treating JSON null and empty strings
// as absent.
func rawField(env map[string]json.RawMessage, key string) json.RawMessage {
	raw, ok := env[key]
	if !ok || string(raw) == "null" || string(raw) == `""` {
		return nil
	}
	return raw
}
