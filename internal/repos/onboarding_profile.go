package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/speechpal-backend/internal/logger"
	"github.com/yungbote/speechpal-backend/internal/types"
)

type OnboardingProfileRepo interface {
	GetOrCreateByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.OnboardingProfile, error)
	Save(ctx context.Context, tx *gorm.DB, profile *types.OnboardingProfile) error
}

type onboardingProfileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewOnboardingProfileRepo(db *gorm.DB, baseLog *logger.Logger) OnboardingProfileRepo {
	return &onboardingProfileRepo{db: db, log: baseLog.With("repo", "OnboardingProfileRepo")}
}

func (r *onboardingProfileRepo) GetOrCreateByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.OnboardingProfile, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	profile := types.OnboardingProfile{UserID: userID}
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Attrs(types.OnboardingProfile{
			ID:               uuid.New(),
			UserID:           userID,
			AgeRange:         "5-6",
			PrimaryLanguage:  "English",
			DailyGoalMinutes: 10,
			VoicePreference:  "kid",
		}).
		FirstOrCreate(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *onboardingProfileRepo) Save(ctx context.Context, tx *gorm.DB, profile *types.OnboardingProfile) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Save(profile).Error
}
