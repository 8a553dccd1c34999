package types

import (
	"time"

	"github.com/google/uuid"
)

// ConversationSession records one completed vendor conversation. The
// ConversationID comes from the vendor and doubles as the idempotency key.
type ConversationSession struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID `gorm:"type:uuid;not null;index:idx_user_conversation,unique" json:"user_id"`
	User             *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	ConversationID   string    `gorm:"not null;index:idx_user_conversation,unique;column:conversation_id" json:"conversation_id"`
	Transcript       string    `gorm:"type:text;column:transcript" json:"transcript"`
	OverallAccuracy  float64   `gorm:"not null;default:0;column:overall_accuracy" json:"overall_accuracy"`
	WordsSpoken      int       `gorm:"not null;default:0;column:words_spoken" json:"words_spoken"`
	DurationSeconds  float64   `gorm:"not null;default:0;column:duration_seconds" json:"duration_seconds"`
	ExperienceGained int       `gorm:"not null;default:0;column:experience_gained" json:"experience_gained"`
	Summary          string    `gorm:"type:text;column:summary" json:"summary"`
	CreatedAt        time.Time `gorm:"not null;index" json:"created_at"`
}

func (ConversationSession) TableName() string { return "conversation_session" }
