package chatroom

import (
	"batepapo/backend/internal/config"
	"batepapo/backend/internal/metrics"
	"batepapo/backend/internal/models"
	"context"
	"fmt"
	"strings"
)

// Join registers name as an active participant and announces it to the room.
// The participant insert and the join status message succeed or fail
// together: a failed announcement deletes the participant again.
func (s *Service) Join(ctx context.Context, name string) (*models.Participant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", models.ErrValidation)
	}

	existing, err := s.Storage.FindParticipantByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("join %q: %w", name, err)
	}
	if existing != nil {
		return nil, fmt.Errorf("join %q: %w", name, models.ErrConflict)
	}

	now := s.now()
	p := &models.Participant{Name: name, LastStatus: now.UnixMilli()}
	if err := s.Storage.InsertParticipant(ctx, p); err != nil {
		return nil, fmt.Errorf("join %q: %w", name, err)
	}

	if _, err := s.appendMessage(ctx, now, name, config.BroadcastTarget, s.texts.Entered, models.TypeStatus); err != nil {
		s.log.Error().Err(err).Str("participant", name).Msg("join announcement failed, removing participant")
		if delErr := s.Storage.DeleteParticipantByID(context.WithoutCancel(ctx), p.ID); delErr != nil {
			s.log.Error().
				Err(delErr).
				Str("participant", name).
				Str("participant_id", p.ID).
				Msg("inconsistent room state: participant is active without a join message")
		}
		return nil, fmt.Errorf("join %q: %w", name, err)
	}

	metrics.ParticipantsJoined.Inc()
	s.log.Debug().Str("participant", name).Msg("participant joined")
	return p, nil
}

// Heartbeat refreshes the participant's last activity. It emits nothing.
func (s *Service) Heartbeat(ctx context.Context, name string) error {
	if _, err := s.findActive(ctx, name); err != nil {
		return fmt.Errorf("heartbeat %q: %w", name, err)
	}

	updated, err := s.Storage.UpdateParticipantLastStatus(ctx, name, s.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("heartbeat %q: %w", name, err)
	}
	if !updated {
		// Evicted between the lookup and the update.
		return fmt.Errorf("heartbeat %q: %w", name, models.ErrNotFound)
	}
	return nil
}

// ListActive returns every active participant.
func (s *Service) ListActive(ctx context.Context) ([]models.Participant, error) {
	participants, err := s.Storage.ListParticipants(ctx)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	return participants, nil
}

// Lookup returns the active participant called name, or models.ErrNotFound.
func (s *Service) Lookup(ctx context.Context, name string) (*models.Participant, error) {
	p, err := s.findActive(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("lookup %q: %w", name, err)
	}
	return p, nil
}
