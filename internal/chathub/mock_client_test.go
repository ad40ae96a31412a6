package chathub_test

import (
	"batepapo/backend/internal/models"
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

type MockClient struct {
	name        string
	closed      atomic.Bool
	RecvChannel chan models.Message
}

func newMockClient(name string) *MockClient {
	return &MockClient{
		name:        name,
		RecvChannel: make(chan models.Message, 10),
	}
}

func (c *MockClient) GetName() string {
	return c.name
}

func (c *MockClient) GetSendChannel() chan<- models.Message {
	return c.RecvChannel
}

func (c *MockClient) Run() {
	// Not needed for testing
}

func (c *MockClient) Close() {
	c.closed.Store(true)
}

func (c *MockClient) IsClosed() bool {
	return c.closed.Load()
}

// fakeBroker loops published messages back through the subscription.
type fakeBroker struct {
	mu         sync.Mutex
	ch         chan models.Message
	published  []models.Message
	publishErr error
}

func newFakeBroker() *fakeBroker {
	return &fakeBroker{ch: make(chan models.Message, 10)}
}

func (b *fakeBroker) PublishMessage(_ context.Context, msg models.Message) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.publishErr != nil {
		return b.publishErr
	}
	b.published = append(b.published, msg)
	b.ch <- msg
	return nil
}

func (b *fakeBroker) SubscribeMessages(context.Context) (<-chan models.Message, func() error, error) {
	return b.ch, func() error { return nil }, nil
}

func (b *fakeBroker) Published() []models.Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.Message(nil), b.published...)
}

var errBrokerDown = errors.New("broker down")
