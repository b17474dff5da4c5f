package models

import "time"

// Room is a named broadcast channel. Rooms are created lazily on first join
// and are never deleted.
type Room struct {
	Name      string    `gorm:"primaryKey" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Membership records that a user has joined a room at least once. The
// relation only ever grows: leaving a room detaches the live connection but
// keeps the row, so the participant list and the login room list survive
// reconnects. The composite primary key makes concurrent first-joins
// converge on a single row.
type Membership struct {
	RoomName string `gorm:"primaryKey" json:"room"`
	Username string `gorm:"primaryKey" json:"username"`
}
