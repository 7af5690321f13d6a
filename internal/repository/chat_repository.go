package repository

import (
	"context"

	"github.com/gramsetu/loan-advisor/internal/model"
	"gorm.io/gorm"
)

type ChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{db}
}

// FindSession fetches a session only if it belongs to the given user.
func (r *ChatRepository) FindSession(ctx context.Context, sessionID, userID string) (*model.ChatSession, error) {
	var session model.ChatSession
	err := r.db.WithContext(ctx).
		First(&session, "id = ? AND user_id = ?", sessionID, userID).Error
	return &session, err
}

func (r *ChatRepository) CreateSession(ctx context.Context, session *model.ChatSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *ChatRepository) SaveMessage(ctx context.Context, message *model.ChatMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}

// RecentMessages returns the last `limit` messages of a session in
// chronological order.
func (r *ChatRepository) RecentMessages(ctx context.Context, sessionID string, limit int) ([]model.ChatMessage, error) {
	if limit < 1 {
		limit = 10
	}
	var messages []model.ChatMessage
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	// reverse into chronological order
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
