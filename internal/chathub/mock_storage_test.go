package chathub_test

import (
	"time"

	"roomchat/backend/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockStorage is a mock implementation of the storage.Storage interface.
// It uses testify/mock to allow flexible expectation setting in tests.
type MockStorage struct {
	mock.Mock
}

// User operations
func (m *MockStorage) EnsureUser(username string) (*models.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStorage) SetUserStatus(username, status string, lastSeen time.Time) error {
	args := m.Called(username, status, lastSeen)
	return args.Error(0)
}

func (m *MockStorage) ListUserRooms(username string) ([]models.Room, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Room), args.Error(1)
}

func (m *MockStorage) GetPresence(username string) (*models.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// Room operations
func (m *MockStorage) EnsureRoom(name string) (*models.Room, error) {
	args := m.Called(name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Room), args.Error(1)
}

func (m *MockStorage) AddMembership(roomName, username string) error {
	args := m.Called(roomName, username)
	return args.Error(0)
}

func (m *MockStorage) ListRoomMembers(roomName string) ([]models.User, error) {
	args := m.Called(roomName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockStorage) ListRooms() ([]models.Room, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Room), args.Error(1)
}

// Message operations
func (m *MockStorage) SaveMessage(msg *models.Message) error {
	args := m.Called(msg)
	return args.Error(0)
}

func (m *MockStorage) RecentHistory(roomName string, limit int) ([]models.Message, error) {
	args := m.Called(roomName, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Message), args.Error(1)
}

// Subscription mirror operations
func (m *MockStorage) TrackSubscription(roomName, connID string) error {
	args := m.Called(roomName, connID)
	return args.Error(0)
}

func (m *MockStorage) DropSubscription(roomName, connID string) error {
	args := m.Called(roomName, connID)
	return args.Error(0)
}

func (m *MockStorage) RoomOccupancy(roomName string) (int64, error) {
	args := m.Called(roomName)
	return args.Get(0).(int64), args.Error(1)
}
