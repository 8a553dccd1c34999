package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/speechpal-backend/internal/logger"
	"github.com/yungbote/speechpal-backend/internal/repos"
	"github.com/yungbote/speechpal-backend/internal/types"
)

// OnboardingInput is the intake questionnaire payload.
type OnboardingInput struct {
	AgeRange         string   `json:"age_range" validate:"required,oneof=3-4 5-6 7-8 9-10 11+"`
	PrimaryLanguage  string   `json:"primary_language" validate:"required"`
	Goals            []string `json:"goals"`
	Interests        []string `json:"interests"`
	DailyGoalMinutes int      `json:"daily_goal_minutes" validate:"gte=5,lte=60"`
	VoicePreference  string   `json:"voice_preference" validate:"omitempty,oneof=kid adult_female adult_male"`
}

type OnboardingService interface {
	GetOnboarding(ctx context.Context, userID uuid.UUID) (*types.OnboardingProfile, error)
	CompleteOnboarding(ctx context.Context, userID uuid.UUID, input *OnboardingInput) (*types.OnboardingProfile, error)
}

type onboardingService struct {
	db             *gorm.DB
	log            *logger.Logger
	validate       *validator.Validate
	onboardingRepo repos.OnboardingProfileRepo
	profileRepo    repos.UserProfileRepo
}

func NewOnboardingService(
	db *gorm.DB,
	log *logger.Logger,
	onboardingRepo repos.OnboardingProfileRepo,
	profileRepo repos.UserProfileRepo,
) OnboardingService {
	return &onboardingService{
		db:             db,
		log:            log.With("service", "OnboardingService"),
		validate:       validator.New(validator.WithRequiredStructEnabled()),
		onboardingRepo: onboardingRepo,
		profileRepo:    profileRepo,
	}
}

func (os *onboardingService) GetOnboarding(ctx context.Context, userID uuid.UUID) (*types.OnboardingProfile, error) {
	return os.onboardingRepo.GetOrCreateByUserID(ctx, nil, userID)
}

func (os *onboardingService) CompleteOnboarding(ctx context.Context, userID uuid.UUID, input *OnboardingInput) (*types.OnboardingProfile, error) {
	if input == nil {
		return nil, fmt.Errorf("%w: empty onboarding payload", ErrInvalidPayload)
	}
	if err := os.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	goals, err := json.Marshal(input.Goals)
	if err != nil {
		return nil, fmt.Errorf("%w: goals not serializable", ErrInvalidPayload)
	}
	interests, err := json.Marshal(input.Interests)
	if err != nil {
		return nil, fmt.Errorf("%w: interests not serializable", ErrInvalidPayload)
	}

	var onboarding *types.OnboardingProfile
	txErr := os.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		o, oErr := os.onboardingRepo.GetOrCreateByUserID(ctx, tx, userID)
		if oErr != nil {
			return oErr
		}
		o.AgeRange = input.AgeRange
		o.PrimaryLanguage = input.PrimaryLanguage
		o.Goals = goals
		o.Interests = interests
		o.DailyGoalMinutes = input.DailyGoalMinutes
		if input.VoicePreference != "" {
			o.VoicePreference = input.VoicePreference
		}
		if sErr := os.onboardingRepo.Save(ctx, tx, o); sErr != nil {
			return sErr
		}

		profile, pErr := os.profileRepo.GetOrCreateByUserID(ctx, tx, userID)
		if pErr != nil {
			return pErr
		}
		if !profile.HasCompletedOnboarding {
			profile.HasCompletedOnboarding = true
			if sErr := os.profileRepo.Save(ctx, tx, profile); sErr != nil {
				return sErr
			}
		}
		onboarding = o
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return onboarding, nil
}
