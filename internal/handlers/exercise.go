package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/speechpal-backend/internal/requestdata"
	"github.com/yungbote/speechpal-backend/internal/services"
)

type ExerciseHandler struct {
	exerciseService services.ExerciseService
}

func NewExerciseHandler(exerciseService services.ExerciseService) *ExerciseHandler {
	return &ExerciseHandler{exerciseService: exerciseService}
}

func (eh *ExerciseHandler) List(c *gin.Context) {
	userID := requestdata.UserID(c.Request.Context())
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	exercises, err := eh.exerciseService.ListForUser(c.Request.Context(), userID, limit)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"exercises": exercises})
}
