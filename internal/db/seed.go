package db

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/speechpal-backend/internal/types"
)

// SeedAchievements installs the default achievement catalog when the table is
// empty. Admin-edited rows are left alone on subsequent boots.
func SeedAchievements(gormDB *gorm.DB) error {
	var count int64
	if err := gormDB.Model(&types.Achievement{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	defaults := []*types.Achievement{
		{Name: "First Words", Description: "Speak for a total of one minute", AchievementType: types.AchievementTypeSpeakingTime, TargetValue: 60, Icon: "microphone", ExperienceReward: 25},
		{Name: "Chatterbox", Description: "Speak for a total of thirty minutes", AchievementType: types.AchievementTypeSpeakingTime, TargetValue: 1800, Icon: "megaphone", ExperienceReward: 100},
		{Name: "Word Collector", Description: "Say 100 words across all sessions", AchievementType: types.AchievementTypeWordsSpoken, TargetValue: 100, Icon: "book", ExperienceReward: 50},
		{Name: "Storyteller", Description: "Say 1000 words across all sessions", AchievementType: types.AchievementTypeWordsSpoken, TargetValue: 1000, Icon: "scroll", ExperienceReward: 150,
			CustomizationReward: datatypes.JSON([]byte(`{"type":"accessory","value":"glasses"}`))},
		{Name: "Crystal Clear", Description: "Score 90 or higher on clarity in one session", AchievementType: types.AchievementTypeClarityImprovement, TargetValue: 90, Icon: "star", ExperienceReward: 75},
		{Name: "Smooth Talker", Description: "Score 90 or higher on fluency in one session", AchievementType: types.AchievementTypeFluencyImprovement, TargetValue: 90, Icon: "wave", ExperienceReward: 75},
		{Name: "Regular Visitor", Description: "Complete 5 sessions within a week", AchievementType: types.AchievementTypeConsistency, TargetValue: 5, Icon: "calendar", ExperienceReward: 60},
		{Name: "Rising Star", Description: "Reach level 5", AchievementType: types.AchievementTypeLevelMilestone, TargetValue: 5, Icon: "rocket", ExperienceReward: 100,
			CustomizationReward: datatypes.JSON([]byte(`{"type":"body_color","value":"spotted"}`))},
		{Name: "Superstar", Description: "Reach level 10", AchievementType: types.AchievementTypeLevelMilestone, TargetValue: 10, Icon: "crown", ExperienceReward: 200},
	}
	for _, a := range defaults {
		a.ID = uuid.New()
	}
	return gormDB.Create(&defaults).Error
}
