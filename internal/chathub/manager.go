// Package chathub pushes new room messages to connected live feed clients.
// With a Redis broker every replica receives every message through the
// subscription; without one, delivery stays in-process.
package chathub

import (
	"batepapo/backend/internal/chatroom"
	"batepapo/backend/internal/metrics"
	"batepapo/backend/internal/models"
	"context"

	"github.com/rs/zerolog"
)

const deliverBuffer = 256

// Broker is the cross-replica message bus.
type Broker interface {
	PublishMessage(ctx context.Context, msg models.Message) error
	SubscribeMessages(ctx context.Context) (<-chan models.Message, func() error, error)
}

// ManagerService owns the set of live clients. All map access happens on
// the Run goroutine.
type ManagerService struct {
	Clients map[Client]struct{}

	RegisterCh   chan Client
	UnregisterCh chan Client

	deliverCh chan models.Message
	done      chan struct{}
	broker    Broker
	leaveText string
	log       zerolog.Logger
}

// NewManagerService builds a hub. broker may be nil. leaveText identifies
// the status messages that announce an eviction.
func NewManagerService(broker Broker, leaveText string, log zerolog.Logger) *ManagerService {
	return &ManagerService{
		Clients:      make(map[Client]struct{}),
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		deliverCh:    make(chan models.Message, deliverBuffer),
		done:         make(chan struct{}),
		broker:       broker,
		leaveText:    leaveText,
		log:          log.With().Str("component", "chathub").Logger(),
	}
}

// Done is closed once Run has returned.
func (m *ManagerService) Done() <-chan struct{} {
	return m.done
}

// Register hands c to the hub. It returns false if the hub is stopped.
func (m *ManagerService) Register(c Client) bool {
	select {
	case m.RegisterCh <- c:
		return true
	case <-m.done:
		return false
	}
}

// Unregister removes c from the hub if it is still registered.
func (m *ManagerService) Unregister(c Client) {
	select {
	case m.UnregisterCh <- c:
	case <-m.done:
	}
}

// Notify implements chatroom.Notifier. It never blocks the caller.
func (m *ManagerService) Notify(ctx context.Context, msg models.Message) {
	if m.broker != nil {
		err := m.broker.PublishMessage(ctx, msg)
		if err == nil {
			return
		}
		m.log.Warn().Err(err).Uint("message_id", msg.ID).Msg("publish failed, delivering locally")
	}

	select {
	case m.deliverCh <- msg:
	default:
		m.log.Warn().Uint("message_id", msg.ID).Msg("live feed backlog full, message not pushed")
	}
}

// Run is the hub's dispatch loop. It returns when ctx is cancelled.
func (m *ManagerService) Run(ctx context.Context) {
	defer close(m.done)

	var incoming <-chan models.Message
	if m.broker != nil {
		ch, closeSub, err := m.broker.SubscribeMessages(ctx)
		if err != nil {
			m.log.Error().Err(err).Msg("broker subscription failed, live feed limited to this replica")
		} else {
			incoming = ch
			defer func() { _ = closeSub() }()
		}
	}

	m.log.Info().Bool("broker", incoming != nil).Msg("live feed hub started")

	for {
		select {
		case <-ctx.Done():
			for c := range m.Clients {
				m.remove(c)
			}
			m.log.Info().Msg("live feed hub stopped")
			return

		case c := <-m.RegisterCh:
			m.Clients[c] = struct{}{}
			metrics.LiveClients.Inc()

		case c := <-m.UnregisterCh:
			m.remove(c)

		case msg := <-m.deliverCh:
			m.fanOut(msg)

		case msg, ok := <-incoming:
			if !ok {
				m.log.Warn().Msg("broker subscription closed")
				incoming = nil
				continue
			}
			m.fanOut(msg)
		}
	}
}

func (m *ManagerService) remove(c Client) {
	if _, ok := m.Clients[c]; !ok {
		return
	}
	delete(m.Clients, c)
	c.Close()
	metrics.LiveClients.Dec()
}

// fanOut delivers msg to every client allowed to see it. Slow clients are
// dropped, and a participant's own leave message ends its connections.
func (m *ManagerService) fanOut(msg models.Message) {
	for c := range m.Clients {
		name := c.GetName()
		if !chatroom.Visible(msg, name) {
			continue
		}

		select {
		case c.GetSendChannel() <- msg:
		default:
			m.log.Warn().Str("participant", name).Msg("live client too slow, disconnecting")
			m.remove(c)
			continue
		}

		if m.isLeaveOf(msg, name) {
			m.remove(c)
		}
	}
}

func (m *ManagerService) isLeaveOf(msg models.Message, name string) bool {
	return msg.Type == models.TypeStatus && msg.From == name && msg.Text == m.leaveText
}
