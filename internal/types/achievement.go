package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	AchievementTypeSpeakingTime       = "speaking_time"
	AchievementTypeWordsSpoken        = "words_spoken"
	AchievementTypeClarityImprovement = "clarity_improvement"
	AchievementTypeFluencyImprovement = "fluency_improvement"
	AchievementTypeConsistency        = "consistency"
	AchievementTypeLevelMilestone     = "level_milestone"
)

// Achievement is an admin-defined condition with an XP reward and an optional
// cosmetic reward of the form {"type": "body_color", "value": "blue"}.
type Achievement struct {
	ID                  uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name                string         `gorm:"not null;uniqueIndex" json:"name"`
	Description         string         `gorm:"type:text" json:"description"`
	AchievementType     string         `gorm:"not null;column:achievement_type" json:"achievement_type"`
	TargetValue         float64        `gorm:"not null;column:target_value" json:"target_value"`
	Icon                string         `gorm:"not null;default:'trophy'" json:"icon"`
	ExperienceReward    int            `gorm:"not null;default:0;column:experience_reward" json:"experience_reward"`
	CustomizationReward datatypes.JSON `gorm:"column:customization_reward" json:"customization_reward,omitempty"`
	CreatedAt           time.Time      `gorm:"not null" json:"created_at"`
}

func (Achievement) TableName() string { return "achievement" }
