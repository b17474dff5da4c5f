package chathub

import (
	"log"

	"roomchat/backend/internal/models"
)

// broadcastToRoom fans an event out to every live connection subscribed to
// the room, skipping excludeConn when given. Delivery is per-connection
// best effort: a connection whose send buffer is full is torn down rather
// than allowed to stall the coordinator loop.
func (m *ManagerService) broadcastToRoom(roomName, event string, data any, excludeConn string) {
	for _, connID := range m.Rooms.Connections(roomName) {
		if connID == excludeConn {
			continue
		}
		m.sendTo(connID, event, data)
	}
}

// sendTo queues one event for a single connection. Returns false when the
// connection is gone or too slow to keep up.
func (m *ManagerService) sendTo(connID, event string, data any) bool {
	client, ok := m.Clients[connID]
	if !ok {
		return false
	}

	select {
	case client.GetSendChannel() <- models.ServerEvent{Event: event, Data: data}:
		return true
	default:
		log.Printf("WARNING: Connection %s cannot keep up, dropping it", connID)
		m.teardown(connID)
		return false
	}
}

// sendError reports a rejected event to the originating connection only.
func (m *ManagerService) sendError(connID, msg string) {
	m.sendTo(connID, models.EventError, models.ErrorResponse{Error: msg})
}
