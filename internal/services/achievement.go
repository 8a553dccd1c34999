package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/speechpal-backend/internal/logger"
	"github.com/yungbote/speechpal-backend/internal/repos"
	"github.com/yungbote/speechpal-backend/internal/types"
)

// EarnedAchievement is the consequence-summary view of a freshly earned
// achievement.
type EarnedAchievement struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	Icon             string    `json:"icon"`
	ExperienceReward int       `json:"experience_reward"`
}

type customizationReward struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// AchievementEvaluator checks the full catalog against a user's post-update
// stats and applies every newly satisfied achievement: the earned record, the
// XP reward (added to the in-memory profile so the surrounding transaction
// commits it), and any cosmetic reward.
type AchievementEvaluator interface {
	EvaluateInTx(ctx context.Context, tx *gorm.DB, profile *types.UserProfile, ev *ProgressEvent) ([]EarnedAchievement, error)
	ListEarned(ctx context.Context, userID uuid.UUID) ([]*types.UserAchievement, error)
}

type achievementEvaluator struct {
	log                 *logger.Logger
	achievementRepo     repos.AchievementRepo
	userAchievementRepo repos.UserAchievementRepo
	unlockedRepo        repos.UnlockedCustomizationRepo
	speechSessionRepo   repos.SpeechSessionRepo
	conversationRepo    repos.ConversationSessionRepo
}

func NewAchievementEvaluator(
	log *logger.Logger,
	achievementRepo repos.AchievementRepo,
	userAchievementRepo repos.UserAchievementRepo,
	unlockedRepo repos.UnlockedCustomizationRepo,
	speechSessionRepo repos.SpeechSessionRepo,
	conversationRepo repos.ConversationSessionRepo,
) AchievementEvaluator {
	return &achievementEvaluator{
		log:                 log.With("service", "AchievementEvaluator"),
		achievementRepo:     achievementRepo,
		userAchievementRepo: userAchievementRepo,
		unlockedRepo:        unlockedRepo,
		speechSessionRepo:   speechSessionRepo,
		conversationRepo:    conversationRepo,
	}
}

func (e *achievementEvaluator) ListEarned(ctx context.Context, userID uuid.UUID) ([]*types.UserAchievement, error) {
	return e.userAchievementRepo.GetByUserID(ctx, nil, userID)
}

func (e *achievementEvaluator) EvaluateInTx(ctx context.Context, tx *gorm.DB, profile *types.UserProfile, ev *ProgressEvent) ([]EarnedAchievement, error) {
	catalog, err := e.achievementRepo.GetAll(ctx, tx)
	if err != nil {
		return nil, err
	}
	if len(catalog) == 0 {
		return nil, nil
	}
	alreadyEarned, err := e.userAchievementRepo.GetEarnedAchievementIDs(ctx, tx, profile.UserID)
	if err != nil {
		return nil, err
	}

	var earned []EarnedAchievement
	for _, achievement := range catalog {
		if alreadyEarned[achievement.ID] {
			continue
		}
		satisfied, err := e.conditionMet(ctx, tx, achievement, profile, ev)
		if err != nil {
			return nil, err
		}
		if !satisfied {
			continue
		}
		created, err := e.userAchievementRepo.GrantIfAbsent(ctx, tx, profile.UserID, achievement.ID)
		if err != nil {
			return nil, err
		}
		if !created {
			continue
		}
		profile.ExperiencePoints += achievement.ExperienceReward
		if len(achievement.CustomizationReward) > 0 {
			var reward customizationReward
			if err := json.Unmarshal(achievement.CustomizationReward, &reward); err != nil {
				e.log.Warn("Achievement carries malformed customization reward",
					"achievement", achievement.Name, "error", err)
			} else if reward.Type != "" && reward.Value != "" {
				if _, err := e.unlockedRepo.GrantIfAbsent(ctx, tx, profile.UserID, reward.Type, reward.Value, profile.Level); err != nil {
					return nil, err
				}
			}
		}
		earned = append(earned, EarnedAchievement{
			ID:               achievement.ID,
			Name:             achievement.Name,
			Description:      achievement.Description,
			Icon:             achievement.Icon,
			ExperienceReward: achievement.ExperienceReward,
		})
	}
	return earned, nil
}

func (e *achievementEvaluator) conditionMet(ctx context.Context, tx *gorm.DB, achievement *types.Achievement, profile *types.UserProfile, ev *ProgressEvent) (bool, error) {
	switch achievement.AchievementType {
	case types.AchievementTypeSpeakingTime:
		return float64(profile.TotalSpeakingTimeSeconds) >= achievement.TargetValue, nil

	case types.AchievementTypeWordsSpoken:
		speechWords, err := e.speechSessionRepo.SumWordsByUserID(ctx, tx, profile.UserID)
		if err != nil {
			return false, err
		}
		conversationWords, err := e.conversationRepo.SumWordsByUserID(ctx, tx, profile.UserID)
		if err != nil {
			return false, err
		}
		return float64(speechWords+conversationWords) >= achievement.TargetValue, nil

	case types.AchievementTypeLevelMilestone:
		return float64(profile.Level) >= achievement.TargetValue, nil

	case types.AchievementTypeClarityImprovement:
		return ev.ClarityScore >= achievement.TargetValue, nil

	case types.AchievementTypeFluencyImprovement:
		return ev.FluencyScore >= achievement.TargetValue, nil

	case types.AchievementTypeConsistency:
		since := time.Now().Add(-7 * 24 * time.Hour)
		speechCount, err := e.speechSessionRepo.CountSince(ctx, tx, profile.UserID, since)
		if err != nil {
			return false, err
		}
		conversationCount, err := e.conversationRepo.CountSince(ctx, tx, profile.UserID, since)
		if err != nil {
			return false, err
		}
		return float64(speechCount+conversationCount) >= achievement.TargetValue, nil

	default:
		e.log.Warn("Unknown achievement type", "achievement", achievement.Name, "type", achievement.AchievementType)
		return false, nil
	}
}
