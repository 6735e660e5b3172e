package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"viewswap/pkg/logger"
	"viewswap/pkg/queue"

	"github.com/redis/go-redis/v9"
)

const (
	inboxKeyPrefix = "inbox:"
	inboxMaxLength = 50
	inboxTTL       = 7 * 24 * time.Hour
)

// InboxStore keeps a short per-user history of delivered notifications in
// Redis. The consumer writes it, the admin API reads it.
type InboxStore struct {
	redisClient *redis.Client
	logger      *logger.Logger
}

func NewInboxStore(redisClient *redis.Client, logger *logger.Logger) *InboxStore {
	return &InboxStore{redisClient: redisClient, logger: logger}
}

// Record is best effort; a Redis outage must not block delivery acks.
func (s *InboxStore) Record(ctx context.Context, n queue.Notification) {
	if s == nil || s.redisClient == nil {
		return
	}

	payload, err := json.Marshal(n)
	if err != nil {
		s.logger.Error("Failed to marshal notification for inbox: %v", err)
		return
	}

	key := inboxKey(n.ChatID)
	pipe := s.redisClient.Pipeline()
	pipe.LPush(ctx, key, payload)
	pipe.LTrim(ctx, key, 0, inboxMaxLength-1)
	pipe.Expire(ctx, key, inboxTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.Error("Failed to record notification in inbox %s: %v", key, err)
	}
}

// Recent returns the most recent notifications delivered to a chat, newest
// first.
func (s *InboxStore) Recent(ctx context.Context, chatID int64, limit int) ([]queue.Notification, error) {
	if s == nil || s.redisClient == nil {
		return nil, nil
	}

	key := inboxKey(chatID)
	raw, err := s.redisClient.LRange(ctx, key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read inbox %s: %w", key, err)
	}

	notifications := make([]queue.Notification, 0, len(raw))
	for _, item := range raw {
		var n queue.Notification
		if err := json.Unmarshal([]byte(item), &n); err != nil {
			s.logger.Warn("Skipping malformed inbox entry in %s: %v", key, err)
			continue
		}
		notifications = append(notifications, n)
	}
	return notifications, nil
}

func inboxKey(chatID int64) string {
	return fmt.Sprintf("%s%d", inboxKeyPrefix, chatID)
}
