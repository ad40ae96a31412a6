package chatroom

import (
	"batepapo/backend/internal/models"
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// SendRequest is the caller-supplied part of a chat message.
type SendRequest struct {
	To   string `json:"to" validate:"required"`
	Text string `json:"text" validate:"required"`
	Type string `json:"type" validate:"required,oneof=message private_message"`
}

// Send appends a message from sender. To and Text are trimmed, and blank
// values are rejected. Sending does not count as a heartbeat.
func (s *Service) Send(ctx context.Context, sender string, req SendRequest) (*models.Message, error) {
	req.To = strings.TrimSpace(req.To)
	req.Text = strings.TrimSpace(req.Text)
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}

	if _, err := s.findActive(ctx, sender); err != nil {
		return nil, fmt.Errorf("send from %q: %w", sender, err)
	}

	msg, err := s.appendMessage(ctx, s.now(), sender, req.To, req.Text, req.Type)
	if err != nil {
		return nil, fmt.Errorf("send from %q: %w", sender, err)
	}
	return msg, nil
}
