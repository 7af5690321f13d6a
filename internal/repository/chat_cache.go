package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gramsetu/loan-advisor/internal/model"
	"github.com/redis/go-redis/v9"
)

const (
	chatHistoryKeyPrefix = "chat:history:"
	chatHistoryTTL       = 10 * time.Minute
)

// ChatCache keeps recent conversation history in redis so a chat turn does
// not hit the database for context. It degrades to a no-op when redis is not
// configured.
type ChatCache struct {
	client *redis.Client
}

func NewChatCache(client *redis.Client) *ChatCache {
	return &ChatCache{client: client}
}

func (c *ChatCache) enabled() bool {
	return c != nil && c.client != nil
}

// GetHistory returns the cached history for a session, or (nil, false) on
// miss or when the cache is disabled.
func (c *ChatCache) GetHistory(ctx context.Context, sessionID string) ([]model.ChatMessage, bool) {
	if !c.enabled() {
		return nil, false
	}
	raw, err := c.client.Get(ctx, chatHistoryKeyPrefix+sessionID).Result()
	if err != nil {
		return nil, false
	}
	var messages []model.ChatMessage
	if err := json.Unmarshal([]byte(raw), &messages); err != nil {
		return nil, false
	}
	return messages, true
}

func (c *ChatCache) SetHistory(ctx context.Context, sessionID string, messages []model.ChatMessage) {
	if !c.enabled() {
		return
	}
	raw, err := json.Marshal(messages)
	if err != nil {
		return
	}
	c.client.Set(ctx, chatHistoryKeyPrefix+sessionID, raw, chatHistoryTTL)
}

// Invalidate drops the cached history after new messages are stored.
func (c *ChatCache) Invalidate(ctx context.Context, sessionID string) {
	if !c.enabled() {
		return
	}
	c.client.Del(ctx, chatHistoryKeyPrefix+sessionID)
}
