package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	SessionSourceLive     = "live"
	SessionSourcePractice = "practice"
)

// SpeechSession is the immutable record of one scored speech event. SessionID
// is the idempotency key; the unique (user_id, session_id) index is what
// collapses duplicate deliveries to a single effect.
type SpeechSession struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID `gorm:"type:uuid;not null;index:idx_user_speech_session,unique" json:"user_id"`
	User             *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	SessionID        string    `gorm:"not null;index:idx_user_speech_session,unique;column:session_id" json:"session_id"`
	Source           string    `gorm:"not null;default:'live';column:source" json:"source"`
	Phoneme          string    `gorm:"column:phoneme" json:"phoneme,omitempty"`
	DurationSeconds  float64   `gorm:"not null;default:0;column:duration_seconds" json:"duration_seconds"`
	WordsSpoken      int       `gorm:"not null;default:0;column:words_spoken" json:"words_spoken"`
	ClarityScore     float64   `gorm:"not null;default:0;column:clarity_score" json:"clarity_score"`
	FluencyScore     float64   `gorm:"not null;default:0;column:fluency_score" json:"fluency_score"`
	ConfidenceScore  float64   `gorm:"not null;default:0;column:confidence_score" json:"confidence_score"`
	OverallScore     float64   `gorm:"not null;default:0;column:overall_score" json:"overall_score"`
	ExperienceGained int       `gorm:"not null;default:0;column:experience_gained" json:"experience_gained"`
	CreatedAt        time.Time `gorm:"not null;index" json:"created_at"`
}

func (SpeechSession) TableName() string { return "speech_session" }
