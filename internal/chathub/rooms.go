package chathub

import "sync"

// RoomIndex is the bidirectional live-subscription index: which connections
// listen to a room channel, and which room channels a connection listens to.
// Subscription is transport-level state and entirely separate from the
// persisted membership relation; a user can be a member of many rooms while
// subscribed only to the one they are viewing.
type RoomIndex struct {
	mu     sync.RWMutex
	byRoom map[string]map[string]struct{} // room name -> connIDs
	byConn map[string]map[string]struct{} // connID -> room names
}

func NewRoomIndex() *RoomIndex {
	return &RoomIndex{
		byRoom: make(map[string]map[string]struct{}),
		byConn: make(map[string]map[string]struct{}),
	}
}

// Subscribe attaches a connection to a room channel. Subscribing twice is a
// no-op.
func (x *RoomIndex) Subscribe(roomName, connID string) {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.byRoom[roomName] == nil {
		x.byRoom[roomName] = make(map[string]struct{})
	}
	x.byRoom[roomName][connID] = struct{}{}

	if x.byConn[connID] == nil {
		x.byConn[connID] = make(map[string]struct{})
	}
	x.byConn[connID][roomName] = struct{}{}
}

// Unsubscribe detaches a connection from a room channel. Unknown pairs are a
// no-op.
func (x *RoomIndex) Unsubscribe(roomName, connID string) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.drop(roomName, connID)
}

// DropConn detaches a connection from every room channel and returns the
// rooms it was subscribed to.
func (x *RoomIndex) DropConn(connID string) []string {
	x.mu.Lock()
	defer x.mu.Unlock()

	rooms := make([]string, 0, len(x.byConn[connID]))
	for roomName := range x.byConn[connID] {
		rooms = append(rooms, roomName)
	}
	for _, roomName := range rooms {
		x.drop(roomName, connID)
	}
	return rooms
}

// drop must be called with the lock held.
func (x *RoomIndex) drop(roomName, connID string) {
	if conns, ok := x.byRoom[roomName]; ok {
		delete(conns, connID)
		if len(conns) == 0 {
			delete(x.byRoom, roomName)
		}
	}
	if rooms, ok := x.byConn[connID]; ok {
		delete(rooms, roomName)
		if len(rooms) == 0 {
			delete(x.byConn, connID)
		}
	}
}

// IsSubscribed reports whether a connection currently listens to a room.
func (x *RoomIndex) IsSubscribed(roomName, connID string) bool {
	x.mu.RLock()
	defer x.mu.RUnlock()
	_, ok := x.byRoom[roomName][connID]
	return ok
}

// Connections returns a snapshot of the connections subscribed to a room.
func (x *RoomIndex) Connections(roomName string) []string {
	x.mu.RLock()
	defer x.mu.RUnlock()

	conns := make([]string, 0, len(x.byRoom[roomName]))
	for connID := range x.byRoom[roomName] {
		conns = append(conns, connID)
	}
	return conns
}

// Occupancy returns the number of live connections in a room.
func (x *RoomIndex) Occupancy(roomName string) int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.byRoom[roomName])
}
