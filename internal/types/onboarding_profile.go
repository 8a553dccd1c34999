package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// OnboardingProfile holds the one-time intake answers used to tailor the
// therapy experience.
type OnboardingProfile struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	User             *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	AgeRange         string         `gorm:"not null;default:'5-6';column:age_range" json:"age_range"`
	PrimaryLanguage  string         `gorm:"not null;default:'English';column:primary_language" json:"primary_language"`
	Goals            datatypes.JSON `gorm:"column:goals" json:"goals,omitempty"`
	Interests        datatypes.JSON `gorm:"column:interests" json:"interests,omitempty"`
	DailyGoalMinutes int            `gorm:"not null;default:10;column:daily_goal_minutes" json:"daily_goal_minutes"`
	VoicePreference  string         `gorm:"not null;default:'kid';column:voice_preference" json:"voice_preference"`
	CreatedAt        time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"not null" json:"updated_at"`
}

func (OnboardingProfile) TableName() string { return "onboarding_profile" }
