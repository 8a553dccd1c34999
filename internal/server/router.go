package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yungbote/speechpal-backend/internal/handlers"
	"github.com/yungbote/speechpal-backend/internal/middleware"
)

type RouterConfig struct {
	AuthHandler        *handlers.AuthHandler
	AuthMiddleware     *middleware.AuthMiddleware
	UserHandler        *handlers.UserHandler
	CharacterHandler   *handlers.CharacterHandler
	SessionHandler     *handlers.SessionHandler
	AchievementHandler *handlers.AchievementHandler
	ExerciseHandler    *handlers.ExerciseHandler
	OnboardingHandler  *handlers.OnboardingHandler
	WebhookHandler     *handlers.WebhookHandler
	SSEHandler         *handlers.SSEHandler
	WSHandler          *handlers.WSHandler
	AllowOrigins       []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	allowOrigins := cfg.AllowOrigins
	if len(allowOrigins) == 0 {
		allowOrigins = []string{"http://localhost:3000", "http://localhost:5174"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)

	auth := router.Group("/api/auth")
	{
		auth.POST("/register", cfg.AuthHandler.Register)
		auth.POST("/login", cfg.AuthHandler.Login)
		auth.POST("/refresh", cfg.AuthHandler.Refresh)
	}

	// Vendor callbacks authenticate by payload user id, not by session.
	webhooks := router.Group("/api/webhooks/elevenlabs")
	{
		webhooks.POST("/award-xp", cfg.WebhookHandler.AwardXP)
		webhooks.POST("/conversation-end", cfg.WebhookHandler.ConversationEnd)
	}

	// ===============
	// || Protected ||
	// ===============
	protected := router.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())

	// Auth
	protected.POST("/api/auth/logout", cfg.AuthHandler.Logout)

	// User
	protected.GET("/api/user", cfg.UserHandler.GetMe)

	// Therapy
	therapy := protected.Group("/api/therapy")
	{
		therapy.GET("/profile", cfg.UserHandler.GetProfile)
		therapy.PATCH("/profile", cfg.UserHandler.UpdateProfile)
		therapy.GET("/progress", cfg.UserHandler.GetProgressSummary)

		therapy.GET("/character", cfg.CharacterHandler.GetCharacter)
		therapy.PATCH("/character", cfg.CharacterHandler.UpdateCharacter)
		therapy.POST("/character/initialize", cfg.CharacterHandler.InitializeStarter)
		therapy.GET("/character/options", cfg.CharacterHandler.GetOptions)
		therapy.GET("/character/unlocked", cfg.CharacterHandler.GetUnlocked)

		therapy.POST("/analyze", cfg.SessionHandler.Analyze)
		therapy.GET("/sessions", cfg.SessionHandler.ListSessions)
		therapy.GET("/conversations", cfg.SessionHandler.ListConversations)

		therapy.GET("/achievements", cfg.AchievementHandler.ListEarned)
		therapy.GET("/exercises", cfg.ExerciseHandler.List)

		therapy.GET("/onboarding", cfg.OnboardingHandler.Get)
		therapy.POST("/onboarding", cfg.OnboardingHandler.Complete)
	}

	// Ops
	protected.GET("/api/webhooks/stats", cfg.WebhookHandler.Stats)

	// Streams
	protected.GET("/sse/stream", cfg.SSEHandler.Stream)
	protected.GET("/ws/speech", cfg.WSHandler.Speech)

	return router
}
