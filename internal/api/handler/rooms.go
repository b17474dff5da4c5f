package handler

import (
	"net/http"

	"roomchat/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// ListRooms returns every room with its live occupancy. Occupancy is live
// subscription state, not the persisted membership relation: the Redis
// subscription set is authoritative for the read path, with the
// coordinator's in-memory index as fallback when the mirror is unreachable.
func (h *Handler) ListRooms(c *gin.Context) {
	rooms, err := h.Storage.ListRooms()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list rooms"})
		return
	}

	type roomEntry struct {
		Name      string `json:"name"`
		Occupancy int64  `json:"occupancy"`
	}
	out := make([]roomEntry, 0, len(rooms))
	for _, room := range rooms {
		occupancy, err := h.Storage.RoomOccupancy(room.Name)
		if err != nil {
			occupancy = int64(h.Hub.Rooms.Occupancy(room.Name))
		}
		out = append(out, roomEntry{
			Name:      room.Name,
			Occupancy: occupancy,
		})
	}

	c.JSON(http.StatusOK, gin.H{"rooms": out})
}

// GetUserPresence returns the current presence of one user: Redis mirror
// first, database row as fallback.
func (h *Handler) GetUserPresence(c *gin.Context) {
	username := c.Param("username")

	user, err := h.Storage.GetPresence(username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read presence"})
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown user"})
		return
	}

	lastSeen := ""
	if user.Status == models.StatusOffline {
		lastSeen = models.FormatLastSeen(user.LastSeen)
	}
	c.JSON(http.StatusOK, gin.H{
		"username":  user.Username,
		"status":    user.Status,
		"last_seen": lastSeen,
	})
}
