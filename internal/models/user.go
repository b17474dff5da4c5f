package models

import "time"

// Presence states stored in the users table.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// User represents a chat participant. The username is the stable identity;
// no separate numeric ID is load-bearing anywhere in the system.
type User struct {
	// Username is the unique, user-chosen identity.
	Username string `gorm:"primaryKey" json:"username"`
	// Status is either "online" or "offline". It is derived state: the
	// coordinator decides it, the database row records it.
	Status string `gorm:"type:text;not null;default:'offline'" json:"status"`
	// LastSeen is only meaningful while Status is "offline".
	LastSeen time.Time `json:"last_seen"`
}
