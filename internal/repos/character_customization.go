package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/speechpal-backend/internal/logger"
	"github.com/yungbote/speechpal-backend/internal/types"
)

type CharacterCustomizationRepo interface {
	GetOrCreateByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.CharacterCustomization, error)
	Save(ctx context.Context, tx *gorm.DB, character *types.CharacterCustomization) error
}

type characterCustomizationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCharacterCustomizationRepo(db *gorm.DB, baseLog *logger.Logger) CharacterCustomizationRepo {
	return &characterCustomizationRepo{db: db, log: baseLog.With("repo", "CharacterCustomizationRepo")}
}

func (r *characterCustomizationRepo) GetOrCreateByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.CharacterCustomization, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	character := types.CharacterCustomization{UserID: userID}
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Attrs(types.CharacterCustomization{
			ID:        uuid.New(),
			UserID:    userID,
			BodyColor: "brown",
			EyeColor:  "brown",
			Accessory: "none",
		}).
		FirstOrCreate(&character).Error; err != nil {
		return nil, err
	}
	return &character, nil
}

func (r *characterCustomizationRepo) Save(ctx context.Context, tx *gorm.DB, character *types.CharacterCustomization) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Save(character).Error
}
