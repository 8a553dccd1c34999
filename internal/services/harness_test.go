package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/yungbote/speechpal-backend/internal/db"
	"github.com/yungbote/speechpal-backend/internal/logger"
	"github.com/yungbote/speechpal-backend/internal/progression"
	"github.com/yungbote/speechpal-backend/internal/repos"
	"github.com/yungbote/speechpal-backend/internal/types"
)

var testDBSeq atomic.Int64

// newTestDB opens a uniquely named shared in-memory sqlite database and runs
// the production migrations against it. Single connection so concurrent
// transactions queue instead of hitting sqlite write contention.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_test_%d?mode=memory&cache=shared", testDBSeq.Add(1))
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(gormDB); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return gormDB
}

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

// ledgerHarness wires the full progress stack against one test database.
type ledgerHarness struct {
	db *gorm.DB

	userRepo            repos.UserRepo
	profileRepo         repos.UserProfileRepo
	speechSessionRepo   repos.SpeechSessionRepo
	conversationRepo    repos.ConversationSessionRepo
	unlockedRepo        repos.UnlockedCustomizationRepo
	achievementRepo     repos.AchievementRepo
	userAchievementRepo repos.UserAchievementRepo

	evaluator AchievementEvaluator
	progress  ProgressService
}

func newLedgerHarness(t *testing.T) *ledgerHarness {
	t.Helper()
	gormDB := newTestDB(t)
	log := newTestLogger(t)

	h := &ledgerHarness{
		db:                  gormDB,
		userRepo:            repos.NewUserRepo(gormDB, log),
		profileRepo:         repos.NewUserProfileRepo(gormDB, log),
		speechSessionRepo:   repos.NewSpeechSessionRepo(gormDB, log),
		conversationRepo:    repos.NewConversationSessionRepo(gormDB, log),
		unlockedRepo:        repos.NewUnlockedCustomizationRepo(gormDB, log),
		achievementRepo:     repos.NewAchievementRepo(gormDB, log),
		userAchievementRepo: repos.NewUserAchievementRepo(gormDB, log),
	}
	h.evaluator = NewAchievementEvaluator(log, h.achievementRepo, h.userAchievementRepo, h.unlockedRepo, h.speechSessionRepo, h.conversationRepo)
	h.progress = NewProgressService(gormDB, log, progression.DefaultCatalog(), h.profileRepo, h.speechSessionRepo, h.conversationRepo, h.unlockedRepo, h.evaluator, nil)
	return h
}

func (h *ledgerHarness) createUser(t *testing.T) uuid.UUID {
	t.Helper()
	user := &types.User{
		ID:        uuid.New(),
		Email:     fmt.Sprintf("kid-%s@example.com", uuid.NewString()[:8]),
		Password:  "hashed",
		FirstName: "Kid",
	}
	if err := h.userRepo.Create(context.Background(), nil, user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user.ID
}

func (h *ledgerHarness) createAchievement(t *testing.T, a *types.Achievement) *types.Achievement {
	t.Helper()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Icon == "" {
		a.Icon = "trophy"
	}
	if err := h.db.Create(a).Error; err != nil {
		t.Fatalf("create achievement: %v", err)
	}
	return a
}
