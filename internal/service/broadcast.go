package service

import (
	"encoding/json"

	"github.com/sirupsen/logrus"

	"airclass/internal/model"
)

// BroadcastEngine fans events out to room members by resolving member ids
// through the client registry. Payloads are encoded once per broadcast.
// Per-recipient failures are isolated: a closed or saturated connection is
// logged and skipped, and delivery continues with the remaining members.
type BroadcastEngine struct {
	registry *ClientRegistry
	log      *logrus.Logger
}

func NewBroadcastEngine(registry *ClientRegistry, log *logrus.Logger) *BroadcastEngine {
	return &BroadcastEngine{registry: registry, log: log}
}

// BroadcastToMembers implements Broadcaster.
func (e *BroadcastEngine) BroadcastToMembers(memberIDs []string, exceptID string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		e.log.WithError(err).Error("broadcast encode failed")
		return
	}
	for _, c := range e.registry.Resolve(memberIDs) {
		if exceptID != "" && c.ID() == exceptID {
			continue
		}
		e.deliver(c, data)
	}
}

// BroadcastToRole implements Broadcaster.
func (e *BroadcastEngine) BroadcastToRole(memberIDs []string, role model.Role, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		e.log.WithError(err).Error("broadcast encode failed")
		return
	}
	for _, c := range e.registry.Resolve(memberIDs) {
		if c.Role() != role {
			continue
		}
		e.deliver(c, data)
	}
}

func (e *BroadcastEngine) deliver(c *Client, data []byte) {
	if err := c.SendRaw(data); err != nil {
		e.log.WithFields(logrus.Fields{
			"client_id": c.ID(),
		}).WithError(err).Warn("dropping broadcast to unreachable client")
	}
}
