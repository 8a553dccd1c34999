package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/speechpal-backend/internal/requestdata"
	"github.com/yungbote/speechpal-backend/internal/services"
)

type OnboardingHandler struct {
	onboardingService services.OnboardingService
}

func NewOnboardingHandler(onboardingService services.OnboardingService) *OnboardingHandler {
	return &OnboardingHandler{onboardingService: onboardingService}
}

func (oh *OnboardingHandler) Get(c *gin.Context) {
	userID := requestdata.UserID(c.Request.Context())
	onboarding, err := oh.onboardingService.GetOnboarding(c.Request.Context(), userID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, onboarding)
}

func (oh *OnboardingHandler) Complete(c *gin.Context) {
	userID := requestdata.UserID(c.Request.Context())
	var req services.OnboardingInput
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	onboarding, err := oh.onboardingService.CompleteOnboarding(c.Request.Context(), userID, &req)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, onboarding)
}
