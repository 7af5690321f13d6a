package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChatSession struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      string    `gorm:"type:varchar(64);index" json:"user_id"`
	Language    string    `gorm:"type:varchar(5)" json:"language"`
	SessionType string    `gorm:"type:varchar(20)" json:"session_type"` // e.g. "general", "eligibility"
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (s *ChatSession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

type ChatMessage struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID   uuid.UUID `gorm:"type:uuid;index" json:"session_id"`
	Role        string    `gorm:"type:varchar(10)" json:"role"` // "user" or "assistant"
	Content     string    `gorm:"type:text" json:"content"`
	Language    string    `gorm:"type:varchar(5)" json:"language"`
	MessageType string    `gorm:"type:varchar(10)" json:"message_type"` // "text" or "voice"
	CreatedAt   time.Time `json:"created_at"`
}

func (m *ChatMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
