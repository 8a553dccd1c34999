package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/yungbote/speechpal-backend/internal/db"
	"github.com/yungbote/speechpal-backend/internal/handlers"
	"github.com/yungbote/speechpal-backend/internal/logger"
	"github.com/yungbote/speechpal-backend/internal/middleware"
	"github.com/yungbote/speechpal-backend/internal/progression"
	"github.com/yungbote/speechpal-backend/internal/repos"
	"github.com/yungbote/speechpal-backend/internal/server"
	"github.com/yungbote/speechpal-backend/internal/services"
	"github.com/yungbote/speechpal-backend/internal/sse"
	"github.com/yungbote/speechpal-backend/internal/utils"
	"github.com/yungbote/speechpal-backend/internal/ws"
)

func main() {
	_ = godotenv.Load()

	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	refreshTokenTTL := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)
	serverPort := utils.GetEnv("SERVER_PORT", "8080", log)
	redisAddr := utils.GetEnv("REDIS_ADDR", "", log)
	allowOrigins := utils.GetEnv("CORS_ALLOW_ORIGINS", "", log)

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Fatal("Postgres init failed", "error", err)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Fatal("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()
	if err = db.SeedAchievements(thePG); err != nil {
		log.Warn("Achievement seeding failed", "error", err)
	}

	// Repos
	log.Info("Setting up Repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	userTokenRepo := repos.NewUserTokenRepo(thePG, log)
	profileRepo := repos.NewUserProfileRepo(thePG, log)
	characterRepo := repos.NewCharacterCustomizationRepo(thePG, log)
	unlockedRepo := repos.NewUnlockedCustomizationRepo(thePG, log)
	speechSessionRepo := repos.NewSpeechSessionRepo(thePG, log)
	conversationRepo := repos.NewConversationSessionRepo(thePG, log)
	achievementRepo := repos.NewAchievementRepo(thePG, log)
	userAchievementRepo := repos.NewUserAchievementRepo(thePG, log)
	exerciseRepo := repos.NewSpeechExerciseRepo(thePG, log)
	onboardingRepo := repos.NewOnboardingProfileRepo(thePG, log)
	webhookLogRepo := repos.NewWebhookLogRepo(thePG, log)

	// SSE
	log.Info("Setting up SSE hub now...")
	sseHub := sse.NewSSEHub(log)

	// Services
	log.Info("Setting up Services from main...")
	catalog := progression.DefaultCatalog()

	var notifier services.ProgressNotifier
	if redisAddr != "" {
		notifier, err = services.NewRedisProgressNotifier(context.Background(), log, sseHub, redisAddr, "progress")
		if err != nil {
			log.Warn("Redis notifier init failed, using local hub only", "error", err)
			notifier = services.NewProgressNotifier(log, sseHub)
		}
	} else {
		notifier = services.NewProgressNotifier(log, sseHub)
	}

	achievementEvaluator := services.NewAchievementEvaluator(log, achievementRepo, userAchievementRepo, unlockedRepo, speechSessionRepo, conversationRepo)
	progressService := services.NewProgressService(thePG, log, catalog, profileRepo, speechSessionRepo, conversationRepo, unlockedRepo, achievementEvaluator, notifier)
	analyzer := services.NewHeuristicAnalyzer(log)
	sessionService := services.NewSessionService(thePG, log, analyzer, progressService, speechSessionRepo, conversationRepo)
	authService := services.NewAuthService(thePG, log, userRepo, userTokenRepo, profileRepo, jwtSecretKey, time.Duration(accessTokenTTL)*time.Second, time.Duration(refreshTokenTTL)*time.Second)
	userService := services.NewUserService(thePG, log, catalog, userRepo, profileRepo, speechSessionRepo, conversationRepo)
	characterService := services.NewCharacterService(thePG, log, catalog, characterRepo, profileRepo, unlockedRepo)
	onboardingService := services.NewOnboardingService(thePG, log, onboardingRepo, profileRepo)
	exerciseService := services.NewExerciseService(thePG, log, exerciseRepo, profileRepo)
	webhookAudit := services.NewWebhookAudit(log, webhookLogRepo)
	webhookService := services.NewWebhookService(log, userRepo, progressService)

	// Handlers
	log.Info("Setting up Handlers from main...")
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	characterHandler := handlers.NewCharacterHandler(characterService)
	sessionHandler := handlers.NewSessionHandler(sessionService)
	achievementHandler := handlers.NewAchievementHandler(achievementEvaluator)
	exerciseHandler := handlers.NewExerciseHandler(exerciseService)
	onboardingHandler := handlers.NewOnboardingHandler(onboardingService)
	webhookHandler := handlers.NewWebhookHandler(webhookService, webhookAudit)
	sseHandler := handlers.NewSSEHandler(sseHub)
	wsHandler := handlers.NewWSHandler(ws.NewSpeechSocket(log, analyzer, progressService))

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	router := server.NewRouter(server.RouterConfig{
		AuthHandler:        authHandler,
		AuthMiddleware:     authMiddleware,
		UserHandler:        userHandler,
		CharacterHandler:   characterHandler,
		SessionHandler:     sessionHandler,
		AchievementHandler: achievementHandler,
		ExerciseHandler:    exerciseHandler,
		OnboardingHandler:  onboardingHandler,
		WebhookHandler:     webhookHandler,
		SSEHandler:         sseHandler,
		WSHandler:          wsHandler,
		AllowOrigins:       splitOrigins(allowOrigins),
	})

	log.Info("Starting server", "port", serverPort)
	if err := router.Run(":" + serverPort); err != nil {
		log.Fatal("Server exited", "error", err)
	}
}

func splitOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(o); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
