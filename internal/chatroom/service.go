// Package chatroom implements the room itself: the participant registry,
// message sending, the viewer-filtered feed and the presence supervisor that
// evicts participants who stop sending heartbeats.
//
// The package keeps no state between calls. Every operation reads the store
// again, so request handlers and the supervisor can interleave freely.
package chatroom

import (
	"batepapo/backend/internal/config"
	"batepapo/backend/internal/localization"
	"batepapo/backend/internal/metrics"
	"batepapo/backend/internal/models"
	"batepapo/backend/internal/storage"
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Notifier is told about every message right after it is stored.
type Notifier interface {
	Notify(ctx context.Context, msg models.Message)
}

// Service is the request-facing side of the room.
type Service struct {
	Storage storage.Storage

	texts    localization.StatusTexts
	log      zerolog.Logger
	now      func() time.Time
	notifier Notifier
}

type Option func(*Service)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithNotifier attaches the live feed.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

func NewService(s storage.Storage, texts localization.StatusTexts, log zerolog.Logger, opts ...Option) *Service {
	svc := &Service{
		Storage: s,
		texts:   texts,
		log:     log.With().Str("component", "chatroom").Logger(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// appendMessage stores a new message stamped with at and hands it to the notifier.
func (s *Service) appendMessage(ctx context.Context, at time.Time, from, to, text, msgType string) (*models.Message, error) {
	msg := &models.Message{
		From: from,
		To:   to,
		Text: text,
		Type: msgType,
		Time: at.Format(config.TimeLayout),
	}
	if err := s.Storage.InsertMessage(ctx, msg); err != nil {
		return nil, err
	}

	metrics.MessagesSent.WithLabelValues(msgType).Inc()
	if s.notifier != nil {
		s.notifier.Notify(context.WithoutCancel(ctx), *msg)
	}
	return msg, nil
}

// findActive loads a participant and maps absence to models.ErrNotFound.
func (s *Service) findActive(ctx context.Context, name string) (*models.Participant, error) {
	if name == "" {
		return nil, models.ErrNotFound
	}
	p, err := s.Storage.FindParticipantByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, models.ErrNotFound
	}
	return p, nil
}
