package chathub

import "batepapo/backend/internal/models"

// Client is the interface for a live feed connection.
// It abstracts the underlying transport so the hub can be tested without sockets.
type Client interface {
	// GetName returns the participant name the connection reads the feed as.
	GetName() string

	// GetSendChannel returns the channel to which the hub sends messages
	// visible to this participant.
	GetSendChannel() chan<- models.Message

	// Run starts the client's read and write pumps.
	Run()
	// Close shuts down the outgoing side; the hub calls it exactly once.
	Close()
}
