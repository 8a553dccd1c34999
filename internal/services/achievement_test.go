package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/yungbote/speechpal-backend/internal/types"
)

func TestWordCountAchievementGrantsOnce(t *testing.T) {
	h := newLedgerHarness(t)
	userID := h.createUser(t)
	h.createAchievement(t, &types.Achievement{
		Name:             "Word Collector",
		AchievementType:  types.AchievementTypeWordsSpoken,
		TargetValue:      100,
		ExperienceReward: 50,
	})

	// 95 words: not there yet.
	res, err := h.progress.ApplyEvent(context.Background(), &ProgressEvent{
		UserID: userID, IdempotencyKey: "w1", Source: EventSourceLive,
		ExperienceGained: 10, WordsSpoken: 95, OverallScore: 70,
	})
	require.NoError(t, err)
	require.Empty(t, res.EarnedAchievements)

	// Crosses 100: exactly one grant, reward XP in the same commit.
	res, err = h.progress.ApplyEvent(context.Background(), &ProgressEvent{
		UserID: userID, IdempotencyKey: "w2", Source: EventSourceLive,
		ExperienceGained: 10, WordsSpoken: 15, OverallScore: 70,
	})
	require.NoError(t, err)
	require.Len(t, res.EarnedAchievements, 1)
	require.Equal(t, "Word Collector", res.EarnedAchievements[0].Name)
	require.Equal(t, 70, res.TotalXP, "10 + 10 event XP plus the 50 reward")

	// Further words do not re-grant.
	res, err = h.progress.ApplyEvent(context.Background(), &ProgressEvent{
		UserID: userID, IdempotencyKey: "w3", Source: EventSourceLive,
		ExperienceGained: 10, WordsSpoken: 200, OverallScore: 70,
	})
	require.NoError(t, err)
	require.Empty(t, res.EarnedAchievements)

	var count int64
	require.NoError(t, h.db.Table("user_achievement").Where("user_id = ?", userID).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestAchievementRewardXPCanLevelAgain(t *testing.T) {
	h := newLedgerHarness(t)
	userID := h.createUser(t)
	h.createAchievement(t, &types.Achievement{
		Name:                "Rising Star",
		AchievementType:     types.AchievementTypeLevelMilestone,
		TargetValue:         2,
		ExperienceReward:    50,
		CustomizationReward: datatypes.JSON([]byte(`{"type":"body_color","value":"spotted"}`)),
	})

	// 150 event XP reaches level 2, which satisfies the milestone; the 50
	// reward XP pushes the total to 200 and level 3 inside the same commit.
	res, err := h.progress.ApplyEvent(context.Background(), &ProgressEvent{
		UserID: userID, IdempotencyKey: "m1", Source: EventSourcePractice,
		ExperienceGained: 150, OverallScore: 80,
	})
	require.NoError(t, err)
	require.Len(t, res.EarnedAchievements, 1)
	require.Equal(t, 200, res.TotalXP)
	require.Equal(t, 3, res.NewLevel)
	require.True(t, res.LevelUp)

	granted, err := h.unlockedRepo.GetByUserID(context.Background(), nil, userID)
	require.NoError(t, err)
	values := map[string]bool{}
	for _, g := range granted {
		values[g.CustomizationType+"/"+g.CustomizationValue] = true
	}
	require.True(t, values["body_color/spotted"], "cosmetic reward granted despite level 5 threshold")
	require.True(t, values["body_color/white"], "level 3 tier granted by the reward XP")
	require.True(t, values["eye_color/green"])

	profile, err := h.profileRepo.GetByUserID(context.Background(), nil, userID)
	require.NoError(t, err)
	require.Equal(t, 3, profile.Level)
	require.Equal(t, 200, profile.ExperiencePoints)
}

func TestScoreAchievementsUseEventScores(t *testing.T) {
	h := newLedgerHarness(t)
	userID := h.createUser(t)
	h.createAchievement(t, &types.Achievement{
		Name:             "Crystal Clear",
		AchievementType:  types.AchievementTypeClarityImprovement,
		TargetValue:      90,
		ExperienceReward: 75,
	})
	h.createAchievement(t, &types.Achievement{
		Name:             "Smooth Talker",
		AchievementType:  types.AchievementTypeFluencyImprovement,
		TargetValue:      90,
		ExperienceReward: 75,
	})

	res, err := h.progress.ApplyEvent(context.Background(), &ProgressEvent{
		UserID: userID, IdempotencyKey: "clear-1", Source: EventSourceLive,
		ExperienceGained: 10,
		ClarityScore:     92,
		FluencyScore:     71,
		OverallScore:     81,
	})
	require.NoError(t, err)
	require.Len(t, res.EarnedAchievements, 1)
	require.Equal(t, "Crystal Clear", res.EarnedAchievements[0].Name)
}

func TestConsistencyAchievementCountsBothTables(t *testing.T) {
	h := newLedgerHarness(t)
	userID := h.createUser(t)
	h.createAchievement(t, &types.Achievement{
		Name:            "Regular Visitor",
		AchievementType: types.AchievementTypeConsistency,
		TargetValue:     3,
	})

	_, err := h.progress.ApplyEvent(context.Background(), &ProgressEvent{
		UserID: userID, IdempotencyKey: "c1", Source: EventSourceLive,
		ExperienceGained: 5, OverallScore: 70,
	})
	require.NoError(t, err)
	_, err = h.progress.ApplyEvent(context.Background(), &ProgressEvent{
		UserID: userID, IdempotencyKey: "conv-1", Source: EventSourceConversation,
		ExperienceGained: 5, OverallScore: 70,
	})
	require.NoError(t, err)

	res, err := h.progress.ApplyEvent(context.Background(), &ProgressEvent{
		UserID: userID, IdempotencyKey: "c2", Source: EventSourcePractice,
		ExperienceGained: 5, OverallScore: 70,
	})
	require.NoError(t, err)
	require.Len(t, res.EarnedAchievements, 1)
	require.Equal(t, "Regular Visitor", res.EarnedAchievements[0].Name)
}

func TestSpeakingTimeAchievement(t *testing.T) {
	h := newLedgerHarness(t)
	userID := h.createUser(t)
	h.createAchievement(t, &types.Achievement{
		Name:             "First Words",
		AchievementType:  types.AchievementTypeSpeakingTime,
		TargetValue:      60,
		ExperienceReward: 25,
	})

	res, err := h.progress.ApplyEvent(context.Background(), &ProgressEvent{
		UserID: userID, IdempotencyKey: "t1", Source: EventSourceLive,
		ExperienceGained: 5, Duration: 40 * time.Second, OverallScore: 70,
	})
	require.NoError(t, err)
	require.Empty(t, res.EarnedAchievements)

	res, err = h.progress.ApplyEvent(context.Background(), &ProgressEvent{
		UserID: userID, IdempotencyKey: "t2", Source: EventSourceLive,
		ExperienceGained: 5, Duration: 25 * time.Second, OverallScore: 70,
	})
	require.NoError(t, err)
	require.Len(t, res.EarnedAchievements, 1)
	require.Equal(t, "First Words", res.EarnedAchievements[0].Name)
}
