package storage

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"roomchat/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrRedisUnavailable is returned by mirror read paths when no Redis client
// is configured (the admin CLI runs without one).
var ErrRedisUnavailable = errors.New("redis unavailable")

// Storage is the persistence contract the coordinator depends on. PostgreSQL
// is the system of record; Redis mirrors ephemeral presence and live
// subscription state for cheap reads.
type Storage interface {
	EnsureUser(username string) (*models.User, error)
	SetUserStatus(username, status string, lastSeen time.Time) error
	ListUserRooms(username string) ([]models.Room, error)

	EnsureRoom(name string) (*models.Room, error)
	AddMembership(roomName, username string) error
	ListRoomMembers(roomName string) ([]models.User, error)
	ListRooms() ([]models.Room, error)

	SaveMessage(msg *models.Message) error
	RecentHistory(roomName string, limit int) ([]models.Message, error)

	TrackSubscription(roomName, connID string) error
	DropSubscription(roomName, connID string) error
	RoomOccupancy(roomName string) (int64, error)
	GetPresence(username string) (*models.User, error)
}

type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}

// EnsureUser creates the user row on first login and returns the current row
// afterwards. The status of a freshly created user is "offline" until the
// coordinator flips it. Concurrent first-logins converge on one row via the
// primary key conflict clause, same as rooms and memberships.
func (s *Service) EnsureUser(username string) (*models.User, error) {
	user := models.User{Username: username, Status: models.StatusOffline}
	if err := s.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&user).Error; err != nil {
		log.Printf("ERROR: Failed to ensure user %s: %v", username, err)
		return nil, err
	}
	if err := s.DB.Where("username = ?", username).First(&user).Error; err != nil {
		log.Printf("ERROR: Failed to read back user %s: %v", username, err)
		return nil, err
	}
	return &user, nil
}

// SetUserStatus writes the presence transition to PostgreSQL and mirrors it
// into Redis. The Redis mirror is best effort: a failed mirror write is
// logged, not surfaced, because the database row stays authoritative.
func (s *Service) SetUserStatus(username, status string, lastSeen time.Time) error {
	err := s.DB.Model(&models.User{}).
		Where("username = ?", username).
		Updates(map[string]interface{}{
			"status":    status,
			"last_seen": lastSeen,
		}).Error
	if err != nil {
		log.Printf("ERROR: Failed to update status for user %s: %v", username, err)
		return err
	}

	s.mirrorPresence(username, status, lastSeen)
	return nil
}

func (s *Service) mirrorPresence(username, status string, lastSeen time.Time) {
	if s.Redis == nil {
		return
	}

	payload, err := json.Marshal(models.User{Username: username, Status: status, LastSeen: lastSeen})
	if err != nil {
		return
	}
	if err := s.Redis.Set(s.Ctx, presenceKey(username), payload, 0).Err(); err != nil {
		log.Printf("WARNING: Failed to mirror presence for user %s to Redis: %v", username, err)
	}
}

// ListUserRooms returns every room the user holds a membership row for,
// ordered by name. This is the "rooms I belong to" list rebuilt on login.
func (s *Service) ListUserRooms(username string) ([]models.Room, error) {
	var rooms []models.Room
	err := s.DB.Model(&models.Room{}).
		Joins("JOIN memberships ON memberships.room_name = rooms.name").
		Where("memberships.username = ?", username).
		Order("rooms.name asc").
		Find(&rooms).Error
	if err != nil {
		log.Printf("ERROR: Failed to list rooms for user %s: %v", username, err)
		return nil, err
	}
	return rooms, nil
}

// EnsureRoom is the race-safe get-or-create for rooms. The insert commits
// before any membership write so a membership row never references a room
// without a durable identity. Concurrent first-joins converge on one row via
// the primary key conflict clause.
func (s *Service) EnsureRoom(name string) (*models.Room, error) {
	room := models.Room{Name: name}
	if err := s.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&room).Error; err != nil {
		log.Printf("ERROR: Failed to ensure room %s: %v", name, err)
		return nil, err
	}
	return &room, nil
}

// AddMembership inserts the membership row if it does not exist yet. Re-joins
// and duplicate-insert races both resolve to the single existing row.
func (s *Service) AddMembership(roomName, username string) error {
	m := models.Membership{RoomName: roomName, Username: username}
	if err := s.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&m).Error; err != nil {
		log.Printf("ERROR: Failed to add member %s to room %s: %v", username, roomName, err)
		return err
	}
	return nil
}

// ListRoomMembers returns every user that has ever joined the room, with
// current persisted status and last-seen, ordered by username.
func (s *Service) ListRoomMembers(roomName string) ([]models.User, error) {
	var users []models.User
	err := s.DB.Model(&models.User{}).
		Joins("JOIN memberships ON memberships.username = users.username").
		Where("memberships.room_name = ?", roomName).
		Order("users.username asc").
		Find(&users).Error
	if err != nil {
		log.Printf("ERROR: Failed to list members of room %s: %v", roomName, err)
		return nil, err
	}
	return users, nil
}

// ListRooms returns every room ever created, ordered by name.
func (s *Service) ListRooms() ([]models.Room, error) {
	var rooms []models.Room
	if err := s.DB.Order("name asc").Find(&rooms).Error; err != nil {
		log.Printf("ERROR: Failed to list rooms: %v", err)
		return nil, err
	}
	return rooms, nil
}

// SaveMessage appends a message to the room history. The ID assigned by the
// database fixes the append order.
func (s *Service) SaveMessage(msg *models.Message) error {
	if err := s.DB.Create(msg).Error; err != nil {
		log.Printf("ERROR: Failed to save message for room %s: %v", msg.RoomName, err)
		return err
	}
	return nil
}

// RecentHistory returns the most recent limit messages of a room in ascending
// append order, oldest first.
func (s *Service) RecentHistory(roomName string, limit int) ([]models.Message, error) {
	var msgs []models.Message
	err := s.DB.Where("room_name = ?", roomName).
		Order("id desc").
		Limit(limit).
		Find(&msgs).Error
	if err != nil {
		log.Printf("ERROR: Failed to load history for room %s: %v", roomName, err)
		return nil, err
	}
	return oldestFirst(msgs), nil
}

// oldestFirst flips a descending tail query result into ascending append
// order, in place.
func oldestFirst(msgs []models.Message) []models.Message {
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs
}

// TrackSubscription records a live room subscription in Redis.
func (s *Service) TrackSubscription(roomName, connID string) error {
	if s.Redis == nil {
		return nil
	}
	return s.Redis.SAdd(s.Ctx, subsKey(roomName), connID).Err()
}

// DropSubscription removes a live room subscription from Redis.
func (s *Service) DropSubscription(roomName, connID string) error {
	if s.Redis == nil {
		return nil
	}
	return s.Redis.SRem(s.Ctx, subsKey(roomName), connID).Err()
}

// RoomOccupancy returns the number of live connections subscribed to a room,
// read from the Redis subscription set. Callers fall back to the in-memory
// index when the mirror is unreachable.
func (s *Service) RoomOccupancy(roomName string) (int64, error) {
	if s.Redis == nil {
		return 0, ErrRedisUnavailable
	}
	return s.Redis.SCard(s.Ctx, subsKey(roomName)).Result()
}

// GetPresence looks up a user's presence, Redis first, PostgreSQL as
// fallback when the mirror has no entry.
func (s *Service) GetPresence(username string) (*models.User, error) {
	if s.Redis != nil {
		payload, err := s.Redis.Get(s.Ctx, presenceKey(username)).Result()
		if err == nil {
			var user models.User
			if err := json.Unmarshal([]byte(payload), &user); err == nil {
				return &user, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			log.Printf("WARNING: Redis presence lookup failed for user %s: %v", username, err)
		}
	}

	var user models.User
	err := s.DB.Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		log.Printf("ERROR: Failed to read presence for user %s: %v", username, err)
		return nil, err
	}
	return &user, nil
}

func presenceKey(username string) string { return "presence:" + username }
func subsKey(roomName string) string     { return "room_subs:" + roomName }
