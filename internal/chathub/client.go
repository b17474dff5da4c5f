package chathub

import "roomchat/backend/internal/models"

// Client is the interface for one live connection. It abstracts the
// underlying transport so the hub can manage WebSocket clients and test
// doubles uniformly.
type Client interface {
	// GetConnID returns the connection identity assigned at upgrade time.
	// This is the key the presence registry binds the username to.
	GetConnID() string

	// GetSendChannel returns the channel the hub writes outbound events to.
	// It is a send-only channel from the hub's perspective.
	GetSendChannel() chan<- models.ServerEvent

	// Run starts the client's read and write pumps.
	Run()
	// Close shuts down the client's outbound channel and, with it, the
	// underlying connection.
	Close()
}
