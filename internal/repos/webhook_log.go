package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/speechpal-backend/internal/logger"
	"github.com/yungbote/speechpal-backend/internal/types"
)

type WebhookStats struct {
	TotalCalls          int64   `json:"total_calls"`
	SuccessfulCalls     int64   `json:"successful_calls"`
	ErrorCalls          int64   `json:"error_calls"`
	AvgProcessingTimeMs float64 `json:"avg_processing_time_ms"`
	RecentCalls24h      int64   `json:"recent_calls_24h"`
}

type WebhookLogRepo interface {
	Create(ctx context.Context, tx *gorm.DB, log *types.WebhookLog) error
	Save(ctx context.Context, tx *gorm.DB, log *types.WebhookLog) error
	Stats(ctx context.Context, tx *gorm.DB) (*WebhookStats, error)
}

type webhookLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewWebhookLogRepo(db *gorm.DB, baseLog *logger.Logger) WebhookLogRepo {
	return &webhookLogRepo{db: db, log: baseLog.With("repo", "WebhookLogRepo")}
}

func (r *webhookLogRepo) Create(ctx context.Context, tx *gorm.DB, row *types.WebhookLog) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return transaction.WithContext(ctx).Create(row).Error
}

func (r *webhookLogRepo) Save(ctx context.Context, tx *gorm.DB, row *types.WebhookLog) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Save(row).Error
}

func (r *webhookLogRepo) Stats(ctx context.Context, tx *gorm.DB) (*WebhookStats, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	stats := &WebhookStats{}
	model := func() *gorm.DB {
		return transaction.WithContext(ctx).Model(&types.WebhookLog{})
	}
	if err := model().Count(&stats.TotalCalls).Error; err != nil {
		return nil, err
	}
	if err := model().Where("status = ?", types.WebhookStatusSuccess).Count(&stats.SuccessfulCalls).Error; err != nil {
		return nil, err
	}
	if err := model().Where("status = ?", types.WebhookStatusError).Count(&stats.ErrorCalls).Error; err != nil {
		return nil, err
	}
	if err := model().Select("COALESCE(AVG(processing_time_ms), 0)").Scan(&stats.AvgProcessingTimeMs).Error; err != nil {
		return nil, err
	}
	since := time.Now().Add(-24 * time.Hour)
	if err := model().Where("created_at >= ?", since).Count(&stats.RecentCalls24h).Error; err != nil {
		return nil, err
	}
	return stats, nil
}
