package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/speechpal-backend/internal/logger"
	"github.com/yungbote/speechpal-backend/internal/types"
)

type ConversationSessionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, session *types.ConversationSession) error
	ExistsByUserAndConversationID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, conversationID string) (bool, error)
	GetRecentByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.ConversationSession, error)
	SumWordsByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error)
	CountSince(ctx context.Context, tx *gorm.DB, userID uuid.UUID, since time.Time) (int64, error)
	ScoreAggregateSince(ctx context.Context, tx *gorm.DB, userID uuid.UUID, since time.Time) (count int64, scoreSum float64, err error)
}

type conversationSessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewConversationSessionRepo(db *gorm.DB, baseLog *logger.Logger) ConversationSessionRepo {
	return &conversationSessionRepo{db: db, log: baseLog.With("repo", "ConversationSessionRepo")}
}

func (r *conversationSessionRepo) Create(ctx context.Context, tx *gorm.DB, session *types.ConversationSession) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	return transaction.WithContext(ctx).Create(session).Error
}

func (r *conversationSessionRepo) ExistsByUserAndConversationID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, conversationID string) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(ctx).Model(&types.ConversationSession{}).
		Where("user_id = ? AND conversation_id = ?", userID, conversationID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *conversationSessionRepo) GetRecentByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.ConversationSession, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.ConversationSession
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *conversationSessionRepo) SumWordsByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var total int64
	if err := transaction.WithContext(ctx).Model(&types.ConversationSession{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(words_spoken), 0)").
		Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *conversationSessionRepo) CountSince(ctx context.Context, tx *gorm.DB, userID uuid.UUID, since time.Time) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(ctx).Model(&types.ConversationSession{}).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *conversationSessionRepo) ScoreAggregateSince(ctx context.Context, tx *gorm.DB, userID uuid.UUID, since time.Time) (int64, float64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var agg struct {
		Count    int64
		ScoreSum float64
	}
	if err := transaction.WithContext(ctx).Model(&types.ConversationSession{}).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Select("COUNT(*) AS count, COALESCE(SUM(overall_accuracy), 0) AS score_sum").
		Scan(&agg).Error; err != nil {
		return 0, 0, err
	}
	return agg.Count, agg.ScoreSum, nil
}
