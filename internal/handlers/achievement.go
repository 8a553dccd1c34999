package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/speechpal-backend/internal/requestdata"
	"github.com/yungbote/speechpal-backend/internal/services"
)

type AchievementHandler struct {
	achievements services.AchievementEvaluator
}

func NewAchievementHandler(achievements services.AchievementEvaluator) *AchievementHandler {
	return &AchievementHandler{achievements: achievements}
}

func (ah *AchievementHandler) ListEarned(c *gin.Context) {
	userID := requestdata.UserID(c.Request.Context())
	earned, err := ah.achievements.ListEarned(c.Request.Context(), userID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"achievements": earned})
}
