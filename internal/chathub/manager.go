package chathub

import (
	"log"
	"time"

	"roomchat/backend/internal/config"
	"roomchat/backend/internal/models"
	"roomchat/backend/internal/storage"
)

// ManagerService is the session coordinator. It runs a single event loop
// that drives every connection through login, join, message, leave and
// disconnect, keeping the live subscription index, the presence registry and
// the persisted state consistent. One goroutine owns all transitions, so
// history delivery and live broadcasts for a join can never interleave, and
// message appends to a room are handled strictly in arrival order.
type ManagerService struct {
	Clients map[string]Client // connID -> client

	// Channels
	IncomingCh   chan models.ClientEvent
	RegisterCh   chan Client
	UnregisterCh chan Client

	Storage  storage.Storage
	Presence *PresenceRegistry
	Rooms    *RoomIndex

	// Clock is the single time source for message timestamps and last-seen.
	// Injectable so tests can pin it. Defaults to UTC wall clock.
	Clock func() time.Time

	HistoryLimit int
}

// NewManagerService builds a coordinator around the given store.
func NewManagerService(s storage.Storage) *ManagerService {
	return &ManagerService{
		Clients:      make(map[string]Client),
		IncomingCh:   make(chan models.ClientEvent),
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		Storage:      s,
		Presence:     NewPresenceRegistry(),
		Rooms:        NewRoomIndex(),
		Clock:        func() time.Time { return time.Now().UTC() },
		HistoryLimit: config.HistoryLimit,
	}
}

// Run is the coordinator's main loop. It must be started in its own
// goroutine and runs until the process exits.
func (m *ManagerService) Run() {
	log.Println("Coordinator started.")

	for {
		select {
		case client := <-m.RegisterCh:
			m.Clients[client.GetConnID()] = client
			log.Printf("Connection %s registered. Live connections: %d", client.GetConnID(), len(m.Clients))

		case client := <-m.UnregisterCh:
			m.handleDisconnect(client.GetConnID())

		case ev := <-m.IncomingCh:
			m.handleEvent(ev)
		}
	}
}

func (m *ManagerService) handleEvent(ev models.ClientEvent) {
	switch ev.Event {
	case models.EventLogin:
		m.handleLogin(ev)
	case models.EventJoinRoom:
		m.handleJoinRoom(ev)
	case models.EventSendMessage:
		m.handleSendMessage(ev)
	case models.EventLeaveRoom:
		m.handleLeaveRoom(ev)
	default:
		m.sendError(ev.ConnID, "unknown event: "+ev.Event)
	}
}

// handleLogin upserts the user row, flips it online, binds the presence
// registry and answers with the caller's persisted room list.
func (m *ManagerService) handleLogin(ev models.ClientEvent) {
	if ev.Username == "" {
		m.sendError(ev.ConnID, "username is required")
		return
	}

	if _, err := m.Storage.EnsureUser(ev.Username); err != nil {
		m.sendTo(ev.ConnID, models.EventLoginResponse, models.LoginResponse{Success: false})
		return
	}
	if err := m.Storage.SetUserStatus(ev.Username, models.StatusOnline, time.Time{}); err != nil {
		m.sendTo(ev.ConnID, models.EventLoginResponse, models.LoginResponse{Success: false})
		return
	}

	m.Presence.Bind(ev.ConnID, ev.Username)

	rooms, err := m.Storage.ListUserRooms(ev.Username)
	if err != nil {
		m.sendTo(ev.ConnID, models.EventLoginResponse, models.LoginResponse{Success: false})
		return
	}

	m.sendTo(ev.ConnID, models.EventLoginResponse, models.LoginResponse{
		Success: true,
		Rooms:   roomRefs(rooms),
	})
	log.Printf("User %s logged in on connection %s", ev.Username, ev.ConnID)
}

// handleJoinRoom runs the two-phase join: the room row is committed before
// the membership write so the membership never references a room without a
// durable identity. The caller gets its room list, the recent history and
// the full participant list; only then is the connection subscribed to the
// room channel, which keeps the join boundary free of lost or duplicated
// messages. Re-joining an already joined room re-runs the whole delivery.
func (m *ManagerService) handleJoinRoom(ev models.ClientEvent) {
	username, ok := m.requireLogin(ev)
	if !ok {
		return
	}
	if ev.Room == "" {
		m.sendError(ev.ConnID, "room is required")
		return
	}

	if _, err := m.Storage.EnsureRoom(ev.Room); err != nil {
		m.sendError(ev.ConnID, "failed to join room")
		return
	}
	if err := m.Storage.AddMembership(ev.Room, username); err != nil {
		m.sendError(ev.ConnID, "failed to join room")
		return
	}
	if err := m.Storage.SetUserStatus(username, models.StatusOnline, time.Time{}); err != nil {
		m.sendError(ev.ConnID, "failed to join room")
		return
	}

	rooms, err := m.Storage.ListUserRooms(username)
	if err != nil {
		m.sendError(ev.ConnID, "failed to join room")
		return
	}
	history, err := m.Storage.RecentHistory(ev.Room, m.HistoryLimit)
	if err != nil {
		m.sendError(ev.ConnID, "failed to join room")
		return
	}
	members, err := m.Storage.ListRoomMembers(ev.Room)
	if err != nil {
		m.sendError(ev.ConnID, "failed to join room")
		return
	}

	m.sendTo(ev.ConnID, models.EventUpdateRoomList, models.RoomList{Rooms: roomRefs(rooms)})
	m.sendTo(ev.ConnID, models.EventLoadHistory, historyEntries(history))
	m.sendTo(ev.ConnID, models.EventRoomInfo, models.RoomInfo{Participants: participants(members)})

	// Subscribe only after the history frame is queued.
	m.Rooms.Subscribe(ev.Room, ev.ConnID)
	if err := m.Storage.TrackSubscription(ev.Room, ev.ConnID); err != nil {
		log.Printf("WARNING: Failed to track subscription for connection %s in room %s: %v", ev.ConnID, ev.Room, err)
	}

	m.broadcastToRoom(ev.Room, models.EventUserStatusChange, models.StatusChange{
		Username: username,
		Status:   models.StatusOnline,
		LastSeen: "",
	}, ev.ConnID)

	log.Printf("User %s joined room %s on connection %s", username, ev.Room, ev.ConnID)
}

// handleSendMessage appends the message and fans it out to the whole room,
// sender included. A failed append broadcasts nothing.
func (m *ManagerService) handleSendMessage(ev models.ClientEvent) {
	username, ok := m.requireLogin(ev)
	if !ok {
		return
	}
	if ev.Room == "" || ev.Message == "" {
		m.sendError(ev.ConnID, "room and message are required")
		return
	}
	if !m.Rooms.IsSubscribed(ev.Room, ev.ConnID) {
		m.sendError(ev.ConnID, "not subscribed to room "+ev.Room)
		return
	}

	msg := &models.Message{
		RoomName:  ev.Room,
		Sender:    username,
		Text:      ev.Message,
		Timestamp: m.Clock(),
	}
	if err := m.Storage.SaveMessage(msg); err != nil {
		m.sendError(ev.ConnID, "failed to send message")
		return
	}

	m.broadcastToRoom(ev.Room, models.EventReceiveMessage, models.ReceiveMessage{
		Sender: msg.Sender,
		Text:   msg.Text,
		Time:   models.FormatMessageTime(msg.Timestamp),
	}, "")
}

// handleLeaveRoom detaches the live subscription only. The membership row
// and the persisted status stay untouched; the user may still be online in
// another room, and only a transport disconnect flips them offline.
func (m *ManagerService) handleLeaveRoom(ev models.ClientEvent) {
	username, ok := m.requireLogin(ev)
	if !ok {
		return
	}
	if !m.Rooms.IsSubscribed(ev.Room, ev.ConnID) {
		// Leaving a room the connection never subscribed to is benign.
		return
	}

	m.Rooms.Unsubscribe(ev.Room, ev.ConnID)
	if err := m.Storage.DropSubscription(ev.Room, ev.ConnID); err != nil {
		log.Printf("WARNING: Failed to drop subscription for connection %s in room %s: %v", ev.ConnID, ev.Room, err)
	}

	m.broadcastToRoom(ev.Room, models.EventUserLeftRoom, models.UserLeft{Username: username}, ev.ConnID)
	log.Printf("User %s left room %s on connection %s", username, ev.Room, ev.ConnID)
}

// handleDisconnect is triggered by the transport with no payload; the
// username is recovered purely from the presence registry. A disconnect for
// a connection that never logged in is a no-op beyond transport cleanup.
func (m *ManagerService) handleDisconnect(connID string) {
	m.teardown(connID)

	username, ok := m.Presence.Lookup(connID)
	if !ok {
		return
	}
	m.Presence.Unbind(connID)

	now := m.Clock()
	if err := m.Storage.SetUserStatus(username, models.StatusOffline, now); err != nil {
		log.Printf("ERROR: Failed to persist offline status for user %s: %v", username, err)
	}

	rooms, err := m.Storage.ListUserRooms(username)
	if err != nil {
		log.Printf("ERROR: Failed to list rooms for disconnect fan-out of user %s: %v", username, err)
		return
	}

	change := models.StatusChange{
		Username: username,
		Status:   models.StatusOffline,
		LastSeen: models.FormatLastSeen(now),
	}
	for _, room := range rooms {
		m.broadcastToRoom(room.Name, models.EventUserStatusChange, change, connID)
	}
	log.Printf("User %s disconnected (connection %s)", username, connID)
}

// requireLogin resolves the caller's identity from the presence registry. A
// payload username that contradicts the binding is treated as malformed.
func (m *ManagerService) requireLogin(ev models.ClientEvent) (string, bool) {
	username, ok := m.Presence.Lookup(ev.ConnID)
	if !ok {
		m.sendError(ev.ConnID, "not logged in")
		return "", false
	}
	if ev.Username != "" && ev.Username != username {
		m.sendError(ev.ConnID, "username does not match connection")
		return "", false
	}
	return username, true
}

// teardown removes the transport client and every live subscription it held.
// Safe to call more than once for the same connection.
func (m *ManagerService) teardown(connID string) {
	if client, ok := m.Clients[connID]; ok {
		delete(m.Clients, connID)
		client.Close()
	}
	for _, roomName := range m.Rooms.DropConn(connID) {
		if err := m.Storage.DropSubscription(roomName, connID); err != nil {
			log.Printf("WARNING: Failed to drop subscription for connection %s in room %s: %v", connID, roomName, err)
		}
	}
}

func roomRefs(rooms []models.Room) []models.RoomRef {
	refs := make([]models.RoomRef, 0, len(rooms))
	for _, room := range rooms {
		refs = append(refs, models.RoomRef{Name: room.Name})
	}
	return refs
}

func historyEntries(msgs []models.Message) []models.HistoryEntry {
	entries := make([]models.HistoryEntry, 0, len(msgs))
	for _, msg := range msgs {
		entries = append(entries, models.HistoryEntry{
			Sender: msg.Sender,
			Text:   msg.Text,
			Time:   models.FormatMessageTime(msg.Timestamp),
		})
	}
	return entries
}

func participants(users []models.User) []models.Participant {
	list := make([]models.Participant, 0, len(users))
	for _, user := range users {
		lastSeen := ""
		if user.Status == models.StatusOffline {
			lastSeen = models.FormatLastSeen(user.LastSeen)
		}
		list = append(list, models.Participant{
			Username: user.Username,
			Status:   user.Status,
			LastSeen: lastSeen,
		})
	}
	return list
}
