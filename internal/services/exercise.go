package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/speechpal-backend/internal/logger"
	"github.com/yungbote/speechpal-backend/internal/repos"
	"github.com/yungbote/speechpal-backend/internal/types"
)

type ExerciseService interface {
	ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]*types.SpeechExercise, error)
}

type exerciseService struct {
	db           *gorm.DB
	log          *logger.Logger
	exerciseRepo repos.SpeechExerciseRepo
	profileRepo  repos.UserProfileRepo
}

func NewExerciseService(
	db *gorm.DB,
	log *logger.Logger,
	exerciseRepo repos.SpeechExerciseRepo,
	profileRepo repos.UserProfileRepo,
) ExerciseService {
	return &exerciseService{
		db:           db,
		log:          log.With("service", "ExerciseService"),
		exerciseRepo: exerciseRepo,
		profileRepo:  profileRepo,
	}
}

// ListForUser returns the active exercises gated to the user's current level.
func (es *exerciseService) ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]*types.SpeechExercise, error) {
	profile, err := es.profileRepo.GetOrCreateByUserID(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	return es.exerciseRepo.GetActiveForLevel(ctx, nil, profile.Level, limit)
}
