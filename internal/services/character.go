package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/speechpal-backend/internal/logger"
	"github.com/yungbote/speechpal-backend/internal/progression"
	"github.com/yungbote/speechpal-backend/internal/repos"
	"github.com/yungbote/speechpal-backend/internal/types"
)

// CharacterUpdate carries a partial edit; nil fields are left untouched.
type CharacterUpdate struct {
	BodyColor *string `json:"body_color"`
	EyeColor  *string `json:"eye_color"`
	Accessory *string `json:"accessory"`
}

// StarterSelection is the one-time initial pick, restricted to starter values.
type StarterSelection struct {
	BodyColor string `json:"body_color"`
	EyeColor  string `json:"eye_color"`
	Accessory string `json:"accessory"`
}

type CharacterService interface {
	GetCharacter(ctx context.Context, userID uuid.UUID) (*types.CharacterCustomization, error)
	UpdateCharacter(ctx context.Context, userID uuid.UUID, update *CharacterUpdate) (*types.CharacterCustomization, error)
	InitializeStarter(ctx context.Context, userID uuid.UUID, selection *StarterSelection) (*types.CharacterCustomization, error)
	GetOptions(ctx context.Context, userID uuid.UUID) (map[string][]progression.Option, error)
	GetUnlocked(ctx context.Context, userID uuid.UUID) ([]*types.UnlockedCustomization, error)
}

type characterService struct {
	db            *gorm.DB
	log           *logger.Logger
	catalog       *progression.Catalog
	characterRepo repos.CharacterCustomizationRepo
	profileRepo   repos.UserProfileRepo
	unlockedRepo  repos.UnlockedCustomizationRepo
}

func NewCharacterService(
	db *gorm.DB,
	log *logger.Logger,
	catalog *progression.Catalog,
	characterRepo repos.CharacterCustomizationRepo,
	profileRepo repos.UserProfileRepo,
	unlockedRepo repos.UnlockedCustomizationRepo,
) CharacterService {
	return &characterService{
		db:            db,
		log:           log.With("service", "CharacterService"),
		catalog:       catalog,
		characterRepo: characterRepo,
		profileRepo:   profileRepo,
		unlockedRepo:  unlockedRepo,
	}
}

func (cs *characterService) GetCharacter(ctx context.Context, userID uuid.UUID) (*types.CharacterCustomization, error) {
	return cs.characterRepo.GetOrCreateByUserID(ctx, nil, userID)
}

func (cs *characterService) GetUnlocked(ctx context.Context, userID uuid.UUID) ([]*types.UnlockedCustomization, error) {
	return cs.unlockedRepo.GetByUserID(ctx, nil, userID)
}

func (cs *characterService) UpdateCharacter(ctx context.Context, userID uuid.UUID, update *CharacterUpdate) (*types.CharacterCustomization, error) {
	if update == nil {
		return nil, fmt.Errorf("%w: empty update", ErrInvalidPayload)
	}

	var character *types.CharacterCustomization
	err := cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		profile, pErr := cs.profileRepo.GetOrCreateByUserID(ctx, tx, userID)
		if pErr != nil {
			return pErr
		}
		granted, gErr := cs.grantedByType(ctx, tx, userID)
		if gErr != nil {
			return gErr
		}
		c, cErr := cs.characterRepo.GetOrCreateByUserID(ctx, tx, userID)
		if cErr != nil {
			return cErr
		}

		apply := func(customizationType string, value *string, field *string) error {
			if value == nil {
				return nil
			}
			if !cs.catalog.Contains(customizationType, *value) {
				return fmt.Errorf("%w: unknown %s %q", ErrInvalidPayload, customizationType, *value)
			}
			unlocked := cs.catalog.LevelRequired(customizationType, *value) <= profile.Level ||
				granted[customizationType][*value]
			if !unlocked {
				return fmt.Errorf("%w: %s %q requires level %d", ErrCustomizationLocked,
					customizationType, *value, cs.catalog.LevelRequired(customizationType, *value))
			}
			*field = *value
			return nil
		}

		if err := apply(progression.CustomizationTypeBodyColor, update.BodyColor, &c.BodyColor); err != nil {
			return err
		}
		if err := apply(progression.CustomizationTypeEyeColor, update.EyeColor, &c.EyeColor); err != nil {
			return err
		}
		if err := apply(progression.CustomizationTypeAccessory, update.Accessory, &c.Accessory); err != nil {
			return err
		}

		if sErr := cs.characterRepo.Save(ctx, tx, c); sErr != nil {
			return sErr
		}
		character = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return character, nil
}

func (cs *characterService) InitializeStarter(ctx context.Context, userID uuid.UUID, selection *StarterSelection) (*types.CharacterCustomization, error) {
	if selection == nil {
		return nil, fmt.Errorf("%w: empty selection", ErrInvalidPayload)
	}
	picks := []struct {
		customizationType string
		value             string
	}{
		{progression.CustomizationTypeBodyColor, selection.BodyColor},
		{progression.CustomizationTypeEyeColor, selection.EyeColor},
		{progression.CustomizationTypeAccessory, selection.Accessory},
	}
	for _, p := range picks {
		if !cs.catalog.IsStarter(p.customizationType, p.value) {
			return nil, fmt.Errorf("%w: %s %q is not a starter option", ErrInvalidStarter, p.customizationType, p.value)
		}
	}

	var character *types.CharacterCustomization
	err := cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, cErr := cs.characterRepo.GetOrCreateByUserID(ctx, tx, userID)
		if cErr != nil {
			return cErr
		}
		if c.IsInitialized {
			// Idempotent: re-running the starter flow keeps the first pick.
			character = c
			return nil
		}
		c.BodyColor = selection.BodyColor
		c.EyeColor = selection.EyeColor
		c.Accessory = selection.Accessory
		c.IsInitialized = true
		if sErr := cs.characterRepo.Save(ctx, tx, c); sErr != nil {
			return sErr
		}

		profile, pErr := cs.profileRepo.GetOrCreateByUserID(ctx, tx, userID)
		if pErr != nil {
			return pErr
		}
		profile.HasActiveAvatar = true
		if sErr := cs.profileRepo.Save(ctx, tx, profile); sErr != nil {
			return sErr
		}
		character = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return character, nil
}

func (cs *characterService) GetOptions(ctx context.Context, userID uuid.UUID) (map[string][]progression.Option, error) {
	profile, pErr := cs.profileRepo.GetOrCreateByUserID(ctx, nil, userID)
	if pErr != nil {
		return nil, pErr
	}
	granted, gErr := cs.grantedByType(ctx, nil, userID)
	if gErr != nil {
		return nil, gErr
	}
	options := make(map[string][]progression.Option, len(cs.catalog.Types()))
	for _, customizationType := range cs.catalog.Types() {
		options[customizationType] = cs.catalog.Options(customizationType, profile.Level, granted[customizationType])
	}
	return options, nil
}

func (cs *characterService) grantedByType(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (map[string]map[string]bool, error) {
	rows, err := cs.unlockedRepo.GetByUserID(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	granted := make(map[string]map[string]bool)
	for _, row := range rows {
		if granted[row.CustomizationType] == nil {
			granted[row.CustomizationType] = make(map[string]bool)
		}
		granted[row.CustomizationType][row.CustomizationValue] = true
	}
	return granted, nil
}
