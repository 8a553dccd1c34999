package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/speechpal-backend/internal/progression"
	"github.com/yungbote/speechpal-backend/internal/requestdata"
	"github.com/yungbote/speechpal-backend/internal/services"
	"github.com/yungbote/speechpal-backend/internal/types"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (uh *UserHandler) GetMe(c *gin.Context) {
	userID := requestdata.UserID(c.Request.Context())
	user, err := uh.userService.GetMe(c.Request.Context(), userID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, user)
}

type profileResponse struct {
	*types.UserProfile
	XPToNextLevel int `json:"xp_to_next_level"`
}

func (uh *UserHandler) GetProfile(c *gin.Context) {
	userID := requestdata.UserID(c.Request.Context())
	profile, err := uh.userService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, profileResponse{
		UserProfile:   profile,
		XPToNextLevel: progression.XPToNextLevel(profile.ExperiencePoints),
	})
}

func (uh *UserHandler) UpdateProfile(c *gin.Context) {
	userID := requestdata.UserID(c.Request.Context())
	var req services.ProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	profile, err := uh.userService.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, profileResponse{
		UserProfile:   profile,
		XPToNextLevel: progression.XPToNextLevel(profile.ExperiencePoints),
	})
}

func (uh *UserHandler) GetProgressSummary(c *gin.Context) {
	userID := requestdata.UserID(c.Request.Context())
	summary, err := uh.userService.GetProgressSummary(c.Request.Context(), userID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, summary)
}
