package types

import (
	"time"

	"github.com/google/uuid"
)

// UserProfile tracks a user's speech therapy progression. Level is a cached
// projection of ExperiencePoints through the level curve and is never set
// independently of it.
type UserProfile struct {
	ID                       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID                   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	User                     *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Level                    int       `gorm:"not null;default:1" json:"level"`
	ExperiencePoints         int       `gorm:"not null;default:0" json:"experience_points"`
	TotalSpeakingTimeSeconds int64     `gorm:"not null;default:0;column:total_speaking_time_seconds" json:"total_speaking_time_seconds"`
	ImprovementScore         float64   `gorm:"not null;default:0" json:"improvement_score"`
	HasCompletedOnboarding   bool      `gorm:"not null;default:false" json:"has_completed_onboarding"`
	HasActiveAvatar          bool      `gorm:"not null;default:false" json:"has_active_avatar"`
	CreatedAt                time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt                time.Time `gorm:"not null" json:"updated_at"`
}

func (UserProfile) TableName() string { return "user_profile" }
