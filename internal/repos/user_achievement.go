package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/speechpal-backend/internal/logger"
	"github.com/yungbote/speechpal-backend/internal/types"
)

type UserAchievementRepo interface {
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.UserAchievement, error)
	GetEarnedAchievementIDs(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (map[uuid.UUID]bool, error)
	// GrantIfAbsent records the earned achievement and reports whether a new
	// row was written; a repeat grant is a no-op.
	GrantIfAbsent(ctx context.Context, tx *gorm.DB, userID, achievementID uuid.UUID) (bool, error)
}

type userAchievementRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserAchievementRepo(db *gorm.DB, baseLog *logger.Logger) UserAchievementRepo {
	return &userAchievementRepo{db: db, log: baseLog.With("repo", "UserAchievementRepo")}
}

func (r *userAchievementRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.UserAchievement, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.UserAchievement
	if err := transaction.WithContext(ctx).
		Preload("Achievement").
		Where("user_id = ?", userID).
		Order("earned_at desc").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *userAchievementRepo) GetEarnedAchievementIDs(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (map[uuid.UUID]bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var ids []uuid.UUID
	if err := transaction.WithContext(ctx).Model(&types.UserAchievement{}).
		Where("user_id = ?", userID).
		Pluck("achievement_id", &ids).Error; err != nil {
		return nil, err
	}
	earned := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		earned[id] = true
	}
	return earned, nil
}

func (r *userAchievementRepo) GrantIfAbsent(ctx context.Context, tx *gorm.DB, userID, achievementID uuid.UUID) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	row := types.UserAchievement{}
	result := transaction.WithContext(ctx).
		Where("user_id = ? AND achievement_id = ?", userID, achievementID).
		Attrs(types.UserAchievement{
			ID:            uuid.New(),
			UserID:        userID,
			AchievementID: achievementID,
			EarnedAt:      time.Now(),
		}).
		FirstOrCreate(&row)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
