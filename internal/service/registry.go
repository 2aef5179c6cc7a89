package service

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"airclass/internal/model"
)

// Sender delivers one encoded outbound message to a connected peer.
// Implementations must not block: a slow peer fails its own send and
// nobody else's.
type Sender interface {
	Send(data []byte) error
}

// RoomMembership is the slice of the room manager the registry needs on
// disconnect (avoids a registry -> rooms -> registry import tangle).
type RoomMembership interface {
	DropMember(clientID string)
}

// Client is the registry's descriptor for one live connection. The
// registry owns every Client exclusively; rooms refer to clients by id
// only. Mutable fields are guarded by the client's own lock because
// broadcasts read role and id from other goroutines.
type Client struct {
	sender Sender

	mu            sync.RWMutex
	id            string
	role          model.Role
	name          string
	email         string
	sessionID     string
	lastGesture   model.Gesture
	lastGestureAt json.RawMessage
}

func (c *Client) ID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.id
}

func (c *Client) Role() model.Role {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.role
}

func (c *Client) SessionID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessionID
}

// DisplayName is the student-facing name: the login name when known,
// otherwise the client id.
func (c *Client) DisplayName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.name != "" {
		return c.name
	}
	return c.id
}

// SetSession attaches a logical session to this connection.
func (c *Client) SetSession(sessionID string) {
	c.mu.Lock()
	c.sessionID = sessionID
	c.mu.Unlock()
}

// RecordGesture remembers the most recent gesture for this connection.
func (c *Client) RecordGesture(g model.Gesture, timestamp json.RawMessage) {
	c.mu.Lock()
	c.lastGesture = g
	c.lastGestureAt = timestamp
	c.mu.Unlock()
}

// Send marshals v and hands it to the transport.
func (c *Client) Send(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.sender.Send(data)
}

// SendRaw hands pre-encoded bytes to the transport. Fan-out paths encode
// once and use this.
func (c *Client) SendRaw(data []byte) error {
	return c.sender.Send(data)
}

// ClientRegistry maps live transport connections to client descriptors.
// The id counter is process-wide and monotonic; ids are never reused,
// even after a disconnect.
type ClientRegistry struct {
	mu     sync.RWMutex
	byConn map[*Client]struct{}
	byID   map[string]*Client
	nextID int

	rooms RoomMembership
	log   *logrus.Logger
}

func NewClientRegistry(log *logrus.Logger) *ClientRegistry {
	return &ClientRegistry{
		byConn: make(map[*Client]struct{}),
		byID:   make(map[string]*Client),
		nextID: 1,
		log:    log,
	}
}

// SetRoomMembership wires the room manager in after construction
// (the room service is built later in main).
func (r *ClientRegistry) SetRoomMembership(rooms RoomMembership) {
	r.rooms = rooms
}

// Register creates a descriptor for a fresh connection. Always succeeds;
// the client starts with role UNKNOWN and no id.
func (r *ClientRegistry) Register(sender Sender) *Client {
	c := &Client{sender: sender, role: model.RoleUnknown}
	r.mu.Lock()
	r.byConn[c] = struct{}{}
	r.mu.Unlock()
	r.log.Info("connection opened")
	return c
}

// IdentifyRole assigns a role and id to a connection. Allowed only while
// the role is still UNKNOWN; re-identification is a protocol error. When
// suppliedID is empty an id of the form "{role}-{n}" is generated.
func (r *ClientRegistry) IdentifyRole(c *Client, role model.Role, suppliedID string) error {
	if role == model.RoleUnknown {
		return model.ErrInvalidRole
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	c.mu.Lock()
	if c.role != model.RoleUnknown {
		c.mu.Unlock()
		return model.ErrRoleAlreadySet
	}
	id := suppliedID
	if id == "" {
		id = fmt.Sprintf("%s-%d", role.Prefix(), r.nextID)
	}
	r.nextID++
	c.role = role
	c.id = id
	c.mu.Unlock()

	r.byID[id] = c
	r.log.WithFields(logrus.Fields{"client_id": id, "role": role}).Info("client registered")
	return nil
}

// AttachUser promotes a connection to a logged-in desktop client. Login is
// not gated on role UNKNOWN: a presenter app may authenticate after its
// bootstrap registration.
func (r *ClientRegistry) AttachUser(c *Client, user *model.User) {
	r.mu.Lock()
	c.mu.Lock()
	if c.id != "" {
		delete(r.byID, c.id)
	}
	c.role = model.RoleDesktop
	c.id = user.UserID
	c.name = user.Name
	c.email = user.Email
	c.mu.Unlock()
	r.byID[user.UserID] = c
	r.mu.Unlock()

	r.log.WithFields(logrus.Fields{"client_id": user.UserID, "user": user.Name}).Info("user logged in")
}

// Unregister tears a connection down. Room membership is removed first,
// so each affected room re-checks emptiness before the descriptor goes
// away; the order matters.
func (r *ClientRegistry) Unregister(c *Client) {
	id := c.ID()
	if id != "" && r.rooms != nil {
		r.rooms.DropMember(id)
	}

	r.mu.Lock()
	delete(r.byConn, c)
	if id != "" && r.byID[id] == c {
		delete(r.byID, id)
	}
	r.mu.Unlock()
	r.log.WithField("client_id", id).Info("connection closed")
}

// Resolve maps member ids to live descriptors, dropping ids whose
// connection is already gone.
func (r *ClientRegistry) Resolve(ids []string) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	clients := make([]*Client, 0, len(ids))
	for _, id := range ids {
		if c, ok := r.byID[id]; ok {
			clients = append(clients, c)
		}
	}
	return clients
}

// Lookup returns the descriptor for a single client id.
func (r *ClientRegistry) Lookup(id string) (*Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byID[id]
	return c, ok
}
