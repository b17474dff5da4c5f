package models

import "time"

// Inbound event names, matching the browser client.
const (
	EventLogin       = "login"
	EventJoinRoom    = "join_room"
	EventSendMessage = "send_message"
	EventLeaveRoom   = "leave_room"
)

// Outbound event names.
const (
	EventLoginResponse    = "login_response"
	EventUpdateRoomList   = "update_room_list"
	EventLoadHistory      = "load_history"
	EventRoomInfo         = "room_info"
	EventUserStatusChange = "user_status_change"
	EventReceiveMessage   = "receive_message"
	EventUserLeftRoom     = "user_left_room"
	EventError            = "error_response"
)

// ClientEvent is one inbound frame from a live connection. ConnID is filled
// in by the transport client, never by the payload.
type ClientEvent struct {
	ConnID   string `json:"-"`
	Event    string `json:"event"`
	Username string `json:"username,omitempty"`
	Room     string `json:"room,omitempty"`
	Message  string `json:"message,omitempty"`
}

// ServerEvent is one outbound frame to a live connection.
type ServerEvent struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// RoomRef is a room entry in login_response and update_room_list payloads.
type RoomRef struct {
	Name string `json:"name"`
}

// LoginResponse is the payload of login_response.
type LoginResponse struct {
	Success bool      `json:"success"`
	Rooms   []RoomRef `json:"rooms"`
}

// RoomList is the payload of update_room_list.
type RoomList struct {
	Rooms []RoomRef `json:"rooms"`
}

// HistoryEntry is one message in a load_history payload.
type HistoryEntry struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
	Time   string `json:"time"`
}

// Participant is one entry in a room_info payload. LastSeen is empty while
// the participant is online.
type Participant struct {
	Username string `json:"username"`
	Status   string `json:"status"`
	LastSeen string `json:"last_seen"`
}

// RoomInfo is the payload of room_info: the full persisted member list,
// offline users included.
type RoomInfo struct {
	Participants []Participant `json:"participants"`
}

// StatusChange is the payload of user_status_change.
type StatusChange struct {
	Username string `json:"username"`
	Status   string `json:"status"`
	LastSeen string `json:"last_seen"`
}

// ReceiveMessage is the payload of receive_message.
type ReceiveMessage struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
	Time   string `json:"time"`
}

// UserLeft is the payload of user_left_room.
type UserLeft struct {
	Username string `json:"username"`
}

// ErrorResponse is sent to the originating connection only.
type ErrorResponse struct {
	Error string `json:"error"`
}

// FormatMessageTime renders a message timestamp the way the client shows it.
func FormatMessageTime(t time.Time) string {
	return t.Format("15:04")
}

// FormatLastSeen renders a last-seen timestamp, or "" for the zero value
// (user has never disconnected or is online).
func FormatLastSeen(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02.01 15:04")
}
