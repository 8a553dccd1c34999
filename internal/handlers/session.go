package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/speechpal-backend/internal/requestdata"
	"github.com/yungbote/speechpal-backend/internal/services"
)

type SessionHandler struct {
	sessionService services.SessionService
}

func NewSessionHandler(sessionService services.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

func (sh *SessionHandler) Analyze(c *gin.Context) {
	userID := requestdata.UserID(c.Request.Context())
	var req services.AnalyzeInput
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	result, err := sh.sessionService.Analyze(c.Request.Context(), userID, &req)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, result)
}

func (sh *SessionHandler) ListSessions(c *gin.Context) {
	userID := requestdata.UserID(c.Request.Context())
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	sessions, err := sh.sessionService.ListRecentSessions(c.Request.Context(), userID, limit)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"sessions": sessions})
}

func (sh *SessionHandler) ListConversations(c *gin.Context) {
	userID := requestdata.UserID(c.Request.Context())
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	conversations, err := sh.sessionService.ListRecentConversations(c.Request.Context(), userID, limit)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"conversations": conversations})
}
