package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/speechpal-backend/internal/logger"
	"github.com/yungbote/speechpal-backend/internal/types"
)

type SpeechSessionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, session *types.SpeechSession) error
	ExistsByUserAndSessionID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, sessionID string) (bool, error)
	GetRecentByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.SpeechSession, error)
	SumWordsByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error)
	CountSince(ctx context.Context, tx *gorm.DB, userID uuid.UUID, since time.Time) (int64, error)
	ScoreAggregateSince(ctx context.Context, tx *gorm.DB, userID uuid.UUID, since time.Time) (count int64, scoreSum float64, err error)
}

type speechSessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSpeechSessionRepo(db *gorm.DB, baseLog *logger.Logger) SpeechSessionRepo {
	return &speechSessionRepo{db: db, log: baseLog.With("repo", "SpeechSessionRepo")}
}

func (r *speechSessionRepo) Create(ctx context.Context, tx *gorm.DB, session *types.SpeechSession) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	return transaction.WithContext(ctx).Create(session).Error
}

func (r *speechSessionRepo) ExistsByUserAndSessionID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, sessionID string) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(ctx).Model(&types.SpeechSession{}).
		Where("user_id = ? AND session_id = ?", userID, sessionID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *speechSessionRepo) GetRecentByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.SpeechSession, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.SpeechSession
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *speechSessionRepo) SumWordsByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var total int64
	if err := transaction.WithContext(ctx).Model(&types.SpeechSession{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(words_spoken), 0)").
		Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *speechSessionRepo) CountSince(ctx context.Context, tx *gorm.DB, userID uuid.UUID, since time.Time) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(ctx).Model(&types.SpeechSession{}).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *speechSessionRepo) ScoreAggregateSince(ctx context.Context, tx *gorm.DB, userID uuid.UUID, since time.Time) (int64, float64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var agg struct {
		Count    int64
		ScoreSum float64
	}
	if err := transaction.WithContext(ctx).Model(&types.SpeechSession{}).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Select("COUNT(*) AS count, COALESCE(SUM(overall_score), 0) AS score_sum").
		Scan(&agg).Error; err != nil {
		return 0, 0, err
	}
	return agg.Count, agg.ScoreSum, nil
}
