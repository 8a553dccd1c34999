package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/speechpal-backend/internal/logger"
	"github.com/yungbote/speechpal-backend/internal/progression"
	"github.com/yungbote/speechpal-backend/internal/repos"
	"github.com/yungbote/speechpal-backend/internal/types"
)

// ProgressSummary is the aggregate progress view backing the dashboard.
type ProgressSummary struct {
	Level                    int                          `json:"level"`
	ExperiencePoints         int                          `json:"experience_points"`
	XPToNextLevel            int                          `json:"xp_to_next_level"`
	NextLevelThreshold       int                          `json:"next_level_threshold"`
	ImprovementScore         float64                      `json:"improvement_score"`
	TotalSpeakingTimeSeconds int64                        `json:"total_speaking_time_seconds"`
	TotalWordsSpoken         int64                        `json:"total_words_spoken"`
	RecentSessions           []*types.SpeechSession       `json:"recent_sessions"`
	RecentConversations      []*types.ConversationSession `json:"recent_conversations"`
	NextUnlocks              []progression.Unlock         `json:"next_unlocks"`
}

// ProfileUpdate carries the client-writable profile flags. Level and XP are
// ledger-owned and cannot be set from outside; both flags are set-once, so a
// false value is ignored rather than clearing them.
type ProfileUpdate struct {
	HasCompletedOnboarding *bool `json:"has_completed_onboarding"`
	HasActiveAvatar        *bool `json:"has_active_avatar"`
}

type UserService interface {
	GetMe(ctx context.Context, userID uuid.UUID) (*types.User, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*types.UserProfile, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, update *ProfileUpdate) (*types.UserProfile, error)
	GetProgressSummary(ctx context.Context, userID uuid.UUID) (*ProgressSummary, error)
}

type userService struct {
	db                *gorm.DB
	log               *logger.Logger
	catalog           *progression.Catalog
	userRepo          repos.UserRepo
	profileRepo       repos.UserProfileRepo
	speechSessionRepo repos.SpeechSessionRepo
	conversationRepo  repos.ConversationSessionRepo
}

func NewUserService(
	db *gorm.DB,
	log *logger.Logger,
	catalog *progression.Catalog,
	userRepo repos.UserRepo,
	profileRepo repos.UserProfileRepo,
	speechSessionRepo repos.SpeechSessionRepo,
	conversationRepo repos.ConversationSessionRepo,
) UserService {
	return &userService{
		db:                db,
		log:               log.With("service", "UserService"),
		catalog:           catalog,
		userRepo:          userRepo,
		profileRepo:       profileRepo,
		speechSessionRepo: speechSessionRepo,
		conversationRepo:  conversationRepo,
	}
}

func (us *userService) GetMe(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	user, err := us.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("Failed to load user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, userID)
	}
	return user, nil
}

func (us *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*types.UserProfile, error) {
	return us.profileRepo.GetOrCreateByUserID(ctx, nil, userID)
}

func (us *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, update *ProfileUpdate) (*types.UserProfile, error) {
	if update == nil {
		return nil, fmt.Errorf("%w: empty update", ErrInvalidPayload)
	}
	var profile *types.UserProfile
	err := us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, pErr := us.profileRepo.GetOrCreateByUserID(ctx, tx, userID)
		if pErr != nil {
			return pErr
		}
		if update.HasCompletedOnboarding != nil && *update.HasCompletedOnboarding {
			p.HasCompletedOnboarding = true
		}
		if update.HasActiveAvatar != nil && *update.HasActiveAvatar {
			p.HasActiveAvatar = true
		}
		if sErr := us.profileRepo.Save(ctx, tx, p); sErr != nil {
			return sErr
		}
		profile = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func (us *userService) GetProgressSummary(ctx context.Context, userID uuid.UUID) (*ProgressSummary, error) {
	profile, err := us.profileRepo.GetOrCreateByUserID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("Failed to load profile: %w", err)
	}

	speechWords, err := us.speechSessionRepo.SumWordsByUserID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("Failed to sum speech words: %w", err)
	}
	conversationWords, err := us.conversationRepo.SumWordsByUserID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("Failed to sum conversation words: %w", err)
	}
	recentSessions, err := us.speechSessionRepo.GetRecentByUserID(ctx, nil, userID, 10)
	if err != nil {
		return nil, fmt.Errorf("Failed to load recent sessions: %w", err)
	}
	recentConversations, err := us.conversationRepo.GetRecentByUserID(ctx, nil, userID, 10)
	if err != nil {
		return nil, fmt.Errorf("Failed to load recent conversations: %w", err)
	}

	return &ProgressSummary{
		Level:                    profile.Level,
		ExperiencePoints:         profile.ExperiencePoints,
		XPToNextLevel:            progression.XPToNextLevel(profile.ExperiencePoints),
		NextLevelThreshold:       progression.ThresholdForLevel(profile.Level + 1),
		ImprovementScore:         profile.ImprovementScore,
		TotalSpeakingTimeSeconds: profile.TotalSpeakingTimeSeconds,
		TotalWordsSpoken:         speechWords + conversationWords,
		RecentSessions:           recentSessions,
		RecentConversations:      recentConversations,
		NextUnlocks:              us.catalog.UnlocksAtLevel(profile.Level + 1),
	}, nil
}
