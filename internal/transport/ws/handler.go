package ws

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"airclass/internal/service"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // clients connect from the LAN, not a fixed origin
	},
}

// Handler upgrades HTTP requests to websocket connections and runs one
// read loop per connection. All shared state lives in the services; the
// handler only moves bytes.
type Handler struct {
	registry *service.ClientRegistry
	router   *Router
	log      *logrus.Logger
}

func NewHandler(registry *service.ClientRegistry, router *Router, log *logrus.Logger) *Handler {
	return &Handler{registry: registry, router: router, log: log}
}

// Serve handles GET /ws.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Error("websocket upgrade failed")
		return
	}

	conn := newConnection(wsConn)
	client := h.registry.Register(conn)

	go conn.writePump()
	go h.readPump(conn, client)
}

func (h *Handler) readPump(conn *Connection, client *service.Client) {
	defer func() {
		conn.close()
		h.registry.Unregister(client)
	}()

	conn.ws.SetReadLimit(maxMessageSize)
	conn.ws.SetReadDeadline(time.Now().Add(pongWait))
	conn.ws.SetPongHandler(func(string) error {
		conn.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := conn.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.WithError(err).Warn("websocket read error")
			}
			return
		}
		h.router.HandleMessage(client, raw)
	}
}
