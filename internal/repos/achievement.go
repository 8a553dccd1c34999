package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/yungbote/speechpal-backend/internal/logger"
	"github.com/yungbote/speechpal-backend/internal/types"
)

type AchievementRepo interface {
	GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Achievement, error)
}

type achievementRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAchievementRepo(db *gorm.DB, baseLog *logger.Logger) AchievementRepo {
	return &achievementRepo{db: db, log: baseLog.With("repo", "AchievementRepo")}
}

func (r *achievementRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Achievement, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Achievement
	if err := transaction.WithContext(ctx).Order("created_at asc").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
