package types

import (
	"time"

	"github.com/google/uuid"
)

// UserAchievement marks an achievement as earned. The unique index enforces
// the at-most-once grant.
type UserAchievement struct {
	ID            uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID    `gorm:"type:uuid;not null;index:idx_user_achievement,unique" json:"user_id"`
	User          *User        `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	AchievementID uuid.UUID    `gorm:"type:uuid;not null;index:idx_user_achievement,unique;column:achievement_id" json:"achievement_id"`
	Achievement   *Achievement `gorm:"constraint:OnDelete:CASCADE;foreignKey:AchievementID;references:ID" json:"achievement,omitempty"`
	EarnedAt      time.Time    `gorm:"not null;column:earned_at" json:"earned_at"`
}

func (UserAchievement) TableName() string { return "user_achievement" }
