package storage

import (
	"batepapo/backend/internal/models"
	"context"
	"encoding/json"
	"errors"
	"time"
)

const (
	messagesChannel = "chat:messages"
	sweepLockKey    = "chat:sweep:lock"
)

// ErrNoBroker is returned by the pub/sub methods when Redis is not configured.
var ErrNoBroker = errors.New("redis broker not configured")

// HasBroker reports whether a Redis client is attached.
func (s *Service) HasBroker() bool {
	return s.Redis != nil
}

// PingBroker checks the Redis connection.
func (s *Service) PingBroker(ctx context.Context) error {
	if s.Redis == nil {
		return ErrNoBroker
	}
	return s.Redis.Ping(ctx).Err()
}

// PublishMessage publishes a stored message on the room channel.
func (s *Service) PublishMessage(ctx context.Context, msg models.Message) error {
	if s.Redis == nil {
		return ErrNoBroker
	}

	msgBytes, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	return s.Redis.Publish(ctx, messagesChannel, string(msgBytes)).Err()
}

// SubscribeMessages subscribes to the room channel. The returned channel is
// closed once the subscription is closed with the returned func or ctx ends.
func (s *Service) SubscribeMessages(ctx context.Context) (<-chan models.Message, func() error, error) {
	if s.Redis == nil {
		return nil, nil, ErrNoBroker
	}

	pubsub := s.Redis.Subscribe(ctx, messagesChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, err
	}

	out := make(chan models.Message, 64)
	go func() {
		defer close(out)
		for raw := range pubsub.Channel() {
			var msg models.Message
			if err := json.Unmarshal([]byte(raw.Payload), &msg); err != nil {
				s.Log.Error().Err(err).Str("channel", raw.Channel).Msg("dropping undecodable message")
				continue
			}
			select {
			case out <- msg:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, pubsub.Close, nil
}

// AcquireSweepLock claims the eviction sweep for ttl. Without Redis every
// caller wins, which is right for a single replica.
func (s *Service) AcquireSweepLock(ctx context.Context, owner string, ttl time.Duration) (bool, error) {
	if s.Redis == nil {
		return true, nil
	}
	ok, err := s.Redis.SetNX(ctx, sweepLockKey, owner, ttl).Result()
	if err != nil {
		return false, unavailable("acquire sweep lock", err)
	}
	return ok, nil
}
