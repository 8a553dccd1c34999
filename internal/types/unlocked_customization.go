package types

import (
	"time"

	"github.com/google/uuid"
)

// UnlockedCustomization records one (type, value) pair available to a user.
// The unique index makes grants idempotent.
type UnlockedCustomization struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID             uuid.UUID `gorm:"type:uuid;not null;index:idx_user_customization,unique" json:"user_id"`
	User               *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	CustomizationType  string    `gorm:"not null;index:idx_user_customization,unique;column:customization_type" json:"customization_type"`
	CustomizationValue string    `gorm:"not null;index:idx_user_customization,unique;column:customization_value" json:"customization_value"`
	LevelRequired      int       `gorm:"not null;default:1;column:level_required" json:"level_required"`
	UnlockedAt         time.Time `gorm:"not null;column:unlocked_at" json:"unlocked_at"`
}

func (UnlockedCustomization) TableName() string { return "unlocked_customization" }
