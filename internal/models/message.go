package models

import "time"

// Message is one append-only chat history entry. The auto-increment ID is the
// message identity and fixes the per-room order; there is no edit or delete
// path.
type Message struct {
	ID uint `gorm:"primaryKey" json:"id"`

	RoomName string `gorm:"type:text;not null;index:idx_room_msg" json:"room"`
	Sender   string `gorm:"type:text;not null;index:idx_room_msg" json:"sender"`
	Text     string `gorm:"type:text;not null" json:"text"`
	// Timestamp is assigned by the coordinator's clock at append time, not by
	// the database, so tests can pin it.
	Timestamp time.Time `gorm:"not null" json:"timestamp"`
}
