package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/yungbote/speechpal-backend/internal/logger"
	"github.com/yungbote/speechpal-backend/internal/types"
	"github.com/yungbote/speechpal-backend/internal/utils"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
	postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
	postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
	postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
	postgresName := utils.GetEnv("POSTGRES_NAME", "speechpal", log)

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

	serviceLog.Info("Connecting to Postgres...")
	gormDB, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		serviceLog.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("Failed to connect to Postgres: %w", err)
	}

	return &PostgresService{db: gormDB, log: serviceLog}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	if err := AutoMigrate(s.db); err != nil {
		s.log.Error("Auto migration failed for postgres tables", "error", err)
		return err
	}
	return nil
}

// AutoMigrate is shared with the sqlite-backed test harness.
func AutoMigrate(gormDB *gorm.DB) error {
	return gormDB.AutoMigrate(
		&types.User{},
		&types.UserToken{},
		&types.UserProfile{},
		&types.CharacterCustomization{},
		&types.UnlockedCustomization{},
		&types.SpeechSession{},
		&types.ConversationSession{},
		&types.Achievement{},
		&types.UserAchievement{},
		&types.SpeechExercise{},
		&types.OnboardingProfile{},
		&types.WebhookLog{},
	)
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}
