package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/yungbote/speechpal-backend/internal/logger"
	"github.com/yungbote/speechpal-backend/internal/types"
)

type SpeechExerciseRepo interface {
	GetActiveForLevel(ctx context.Context, tx *gorm.DB, level, limit int) ([]*types.SpeechExercise, error)
}

type speechExerciseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSpeechExerciseRepo(db *gorm.DB, baseLog *logger.Logger) SpeechExerciseRepo {
	return &speechExerciseRepo{db: db, log: baseLog.With("repo", "SpeechExerciseRepo")}
}

func (r *speechExerciseRepo) GetActiveForLevel(ctx context.Context, tx *gorm.DB, level, limit int) ([]*types.SpeechExercise, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.SpeechExercise
	query := transaction.WithContext(ctx).
		Where("level_required <= ? AND is_active = ?", level, true).
		Order("difficulty asc, level_required asc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
