package types

import (
	"time"

	"github.com/google/uuid"
)

// CharacterCustomization is the user's current cosmetic selection. The
// starter selection (IsInitialized) happens once against a restricted set;
// later edits are free-form within unlocked values.
type CharacterCustomization struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	User          *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	BodyColor     string    `gorm:"not null;default:'brown';column:body_color" json:"body_color"`
	EyeColor      string    `gorm:"not null;default:'brown';column:eye_color" json:"eye_color"`
	Accessory     string    `gorm:"not null;default:'none';column:accessory" json:"accessory"`
	IsInitialized bool      `gorm:"not null;default:false;column:is_initialized" json:"is_initialized"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time `gorm:"not null" json:"updated_at"`
}

func (CharacterCustomization) TableName() string { return "character_customization" }
