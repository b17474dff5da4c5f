package chathub_test

import "roomchat/backend/internal/models"

// MockClient is a test double for the chathub.Client interface. Outbound
// events land in RecvChannel so tests can assert on delivery.
type MockClient struct {
	connID      string
	RecvChannel chan models.ServerEvent
	closed      bool
}

func newMockClient(connID string) *MockClient {
	return &MockClient{
		connID:      connID,
		RecvChannel: make(chan models.ServerEvent, 32), // Buffered to prevent blocking in tests
	}
}

func (c *MockClient) GetConnID() string {
	return c.connID
}

func (c *MockClient) GetSendChannel() chan<- models.ServerEvent {
	return c.RecvChannel
}

func (c *MockClient) Run() {
	// Not needed for testing
}

func (c *MockClient) Close() {
	c.closed = true
}

// drain returns every event queued for the client so far.
func (c *MockClient) drain() []models.ServerEvent {
	var events []models.ServerEvent
	for {
		select {
		case ev := <-c.RecvChannel:
			events = append(events, ev)
		default:
			return events
		}
	}
}
