package storage_test

import (
	"fmt"
	"testing"
	"time"

	"roomchat/backend/internal/models"
	"roomchat/backend/internal/storage"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Room{},
		&models.Membership{},
		&models.Message{},
	))
	return db
}

func newTestService(t *testing.T) *storage.Service {
	t.Helper()
	return storage.NewStorageService(openTestDB(t), nil)
}

func TestEnsureUser_CreatesOffline(t *testing.T) {
	svc := newTestService(t)

	user, err := svc.EnsureUser("alice")

	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, models.StatusOffline, user.Status)
}

func TestEnsureUser_SecondCallReturnsCurrentRow(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.EnsureUser("alice")
	require.NoError(t, err)

	seen := time.Date(2024, 3, 7, 15, 42, 0, 0, time.UTC)
	require.NoError(t, svc.SetUserStatus("alice", models.StatusOnline, seen))

	// A re-login must not recreate the row or clobber its status.
	user, err := svc.EnsureUser("alice")
	require.NoError(t, err)
	assert.Equal(t, models.StatusOnline, user.Status)

	var count int64
	require.NoError(t, svc.DB.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestEnsureRoom_Idempotent(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.EnsureRoom("general")
	require.NoError(t, err)
	_, err = svc.EnsureRoom("general")
	require.NoError(t, err)

	var count int64
	require.NoError(t, svc.DB.Model(&models.Room{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestAddMembership_RejoinIsNoop(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.EnsureUser("alice")
	require.NoError(t, err)
	_, err = svc.EnsureRoom("general")
	require.NoError(t, err)

	require.NoError(t, svc.AddMembership("general", "alice"))
	require.NoError(t, svc.AddMembership("general", "alice"))

	var count int64
	require.NoError(t, svc.DB.Model(&models.Membership{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestListUserRooms_OrderedByName(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.EnsureUser("alice")
	require.NoError(t, err)
	for _, name := range []string{"zoo", "general", "devops"} {
		_, err := svc.EnsureRoom(name)
		require.NoError(t, err)
		require.NoError(t, svc.AddMembership(name, "alice"))
	}

	rooms, err := svc.ListUserRooms("alice")

	require.NoError(t, err)
	require.Len(t, rooms, 3)
	assert.Equal(t, "devops", rooms[0].Name)
	assert.Equal(t, "general", rooms[1].Name)
	assert.Equal(t, "zoo", rooms[2].Name)
}

func TestRecentHistory_Empty(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.EnsureRoom("general")
	require.NoError(t, err)

	msgs, err := svc.RecentHistory("general", 50)

	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestRecentHistory_FewerThanLimit(t *testing.T) {
	svc := newTestService(t)
	seedMessages(t, svc, "general", 3)

	msgs, err := svc.RecentHistory("general", 50)

	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "msg 1", msgs[0].Text)
	assert.Equal(t, "msg 3", msgs[2].Text)
}

func TestRecentHistory_TailOfLongLog(t *testing.T) {
	svc := newTestService(t)
	seedMessages(t, svc, "general", 12)

	msgs, err := svc.RecentHistory("general", 5)

	require.NoError(t, err)
	require.Len(t, msgs, 5)
	// The window is the newest five, still oldest first.
	assert.Equal(t, "msg 8", msgs[0].Text)
	assert.Equal(t, "msg 12", msgs[4].Text)
	for i := 1; i < len(msgs); i++ {
		assert.Less(t, msgs[i-1].ID, msgs[i].ID)
	}
}

func TestRecentHistory_ScopedToRoom(t *testing.T) {
	svc := newTestService(t)
	seedMessages(t, svc, "general", 2)
	seedMessages(t, svc, "devops", 1)

	msgs, err := svc.RecentHistory("devops", 50)

	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "devops", msgs[0].RoomName)
}

func TestGetPresence_FallsBackToDB(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.EnsureUser("alice")
	require.NoError(t, err)
	seen := time.Date(2024, 3, 7, 15, 42, 0, 0, time.UTC)
	require.NoError(t, svc.SetUserStatus("alice", models.StatusOnline, seen))

	user, err := svc.GetPresence("alice")

	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, models.StatusOnline, user.Status)
	assert.True(t, user.LastSeen.Equal(seen))
}

func TestGetPresence_UnknownUser(t *testing.T) {
	svc := newTestService(t)

	user, err := svc.GetPresence("ghost")

	require.NoError(t, err)
	assert.Nil(t, user)
}

func seedMessages(t *testing.T, svc *storage.Service, room string, n int) {
	t.Helper()
	if _, err := svc.EnsureRoom(room); err != nil {
		t.Fatalf("ensure room: %v", err)
	}
	base := time.Date(2024, 3, 7, 15, 0, 0, 0, time.UTC)
	for i := 1; i <= n; i++ {
		msg := &models.Message{
			RoomName:  room,
			Sender:    "alice",
			Text:      fmt.Sprintf("msg %d", i),
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		}
		if err := svc.SaveMessage(msg); err != nil {
			t.Fatalf("save message %d: %v", i, err)
		}
	}
}
