package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/speechpal-backend/internal/logger"
	"github.com/yungbote/speechpal-backend/internal/types"
)

type UnlockedCustomizationRepo interface {
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.UnlockedCustomization, error)
	// GrantIfAbsent records the pair with get-or-create semantics and reports
	// whether a new row was written.
	GrantIfAbsent(ctx context.Context, tx *gorm.DB, userID uuid.UUID, customizationType, customizationValue string, levelRequired int) (bool, error)
}

type unlockedCustomizationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUnlockedCustomizationRepo(db *gorm.DB, baseLog *logger.Logger) UnlockedCustomizationRepo {
	return &unlockedCustomizationRepo{db: db, log: baseLog.With("repo", "UnlockedCustomizationRepo")}
}

func (r *unlockedCustomizationRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.UnlockedCustomization, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.UnlockedCustomization
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("unlocked_at asc").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *unlockedCustomizationRepo) GrantIfAbsent(ctx context.Context, tx *gorm.DB, userID uuid.UUID, customizationType, customizationValue string, levelRequired int) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	row := types.UnlockedCustomization{}
	result := transaction.WithContext(ctx).
		Where("user_id = ? AND customization_type = ? AND customization_value = ?", userID, customizationType, customizationValue).
		Attrs(types.UnlockedCustomization{
			ID:                 uuid.New(),
			UserID:             userID,
			CustomizationType:  customizationType,
			CustomizationValue: customizationValue,
			LevelRequired:      levelRequired,
			UnlockedAt:         time.Now(),
		}).
		FirstOrCreate(&row)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
