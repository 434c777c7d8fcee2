package ws

import (
	"context"
	"encoding/json"
	"time"

	"github.com/faithadeola/TrustRail/internal/domain/notification"
)

type NotificationFeed interface {
	ListSince(ctx context.Context, lastID int64, limit int32) ([]notification.Entity, error)
}

// Notifier polls for freshly created notifications and pushes them to the
// owning business's live channel.
type Notifier struct {
	feed         NotificationFeed
	hub          *Hub
	pollInterval time.Duration
	lastID       int64
}

func NewNotifier(feed NotificationFeed, hub *Hub, pollInterval time.Duration) *Notifier {
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	return &Notifier{feed: feed, hub: hub, pollInterval: pollInterval}
}

func (n *Notifier) Run(ctx context.Context) error {
	ticker := time.NewTicker(n.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := n.tick(ctx); err != nil {
				return err
			}
		}
	}
}

func (n *Notifier) tick(ctx context.Context) error {
	items, err := n.feed.ListSince(ctx, n.lastID, 100)
	if err != nil {
		return err
	}
	for _, item := range items {
		if item.ID > n.lastID {
			n.lastID = item.ID
		}
		payload, _ := json.Marshal(map[string]any{
			"event": "notification_created",
			"data": map[string]any{
				"id":          item.ID,
				"business_id": item.BusinessID,
				"type":        item.Type,
				"title":       item.Title,
				"message":     item.Message,
				"created_at":  item.CreatedAt.UTC().Format(time.RFC3339),
			},
		})
		n.hub.Publish(NotificationChannel(item.BusinessID), payload)
	}
	return nil
}

func NotificationChannel(businessID string) string {
	return "business:notifications:" + businessID
}
