package chatroom

import (
	"batepapo/backend/internal/config"
	"batepapo/backend/internal/models"
	"context"
	"fmt"
	"slices"

	"github.com/samber/lo"
)

// Visible reports whether viewer may read msg: broadcasts, messages
// addressed to or sent by the viewer, and every "message"-typed record
// whatever its recipient. Only private messages honor addressing.
func Visible(msg models.Message, viewer string) bool {
	return msg.To == config.BroadcastTarget ||
		msg.To == viewer ||
		msg.Type == models.TypeMessage ||
		msg.From == viewer
}

// TakeLastWhere returns the last n items for which keep holds, in their
// original order. n <= 0 returns every matching item.
func TakeLastWhere[T any](items []T, n int, keep func(T) bool) []T {
	if n <= 0 {
		return lo.Filter(items, func(item T, _ int) bool { return keep(item) })
	}

	picked := make([]T, 0, n)
	for i := len(items) - 1; i >= 0 && len(picked) < n; i-- {
		if keep(items[i]) {
			picked = append(picked, items[i])
		}
	}
	slices.Reverse(picked)
	return picked
}

// GetFeed returns the messages viewer may see, oldest first. A positive
// limit keeps only the most recent limit messages.
func (s *Service) GetFeed(ctx context.Context, viewer string, limit int) ([]models.Message, error) {
	if _, err := s.findActive(ctx, viewer); err != nil {
		return nil, fmt.Errorf("feed for %q: %w", viewer, err)
	}

	history, err := s.Storage.FindAllMessages(ctx)
	if err != nil {
		return nil, fmt.Errorf("feed for %q: %w", viewer, err)
	}

	return TakeLastWhere(history, limit, func(msg models.Message) bool {
		return Visible(msg, viewer)
	}), nil
}
