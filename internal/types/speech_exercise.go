package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type SpeechExercise struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Title            string         `gorm:"not null" json:"title"`
	Description      string         `gorm:"type:text" json:"description"`
	ExerciseType     string         `gorm:"not null;column:exercise_type" json:"exercise_type"`
	Difficulty       string         `gorm:"not null;default:'easy'" json:"difficulty"`
	LevelRequired    int            `gorm:"not null;default:1;column:level_required" json:"level_required"`
	PromptText       string         `gorm:"type:text;column:prompt_text" json:"prompt_text"`
	TargetWords      datatypes.JSON `gorm:"column:target_words" json:"target_words,omitempty"`
	ExpectedSeconds  int            `gorm:"not null;default:60;column:expected_seconds" json:"expected_seconds"`
	ExperienceReward int            `gorm:"not null;default:0;column:experience_reward" json:"experience_reward"`
	IsActive         bool           `gorm:"not null;default:true;column:is_active" json:"is_active"`
	CreatedAt        time.Time      `gorm:"not null" json:"created_at"`
}

func (SpeechExercise) TableName() string { return "speech_exercise" }
