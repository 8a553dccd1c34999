package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/speechpal-backend/internal/requestdata"
	"github.com/yungbote/speechpal-backend/internal/services"
)

type CharacterHandler struct {
	characterService services.CharacterService
}

func NewCharacterHandler(characterService services.CharacterService) *CharacterHandler {
	return &CharacterHandler{characterService: characterService}
}

func (ch *CharacterHandler) GetCharacter(c *gin.Context) {
	userID := requestdata.UserID(c.Request.Context())
	character, err := ch.characterService.GetCharacter(c.Request.Context(), userID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, character)
}

func (ch *CharacterHandler) UpdateCharacter(c *gin.Context) {
	userID := requestdata.UserID(c.Request.Context())
	var req services.CharacterUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	character, err := ch.characterService.UpdateCharacter(c.Request.Context(), userID, &req)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, character)
}

func (ch *CharacterHandler) InitializeStarter(c *gin.Context) {
	userID := requestdata.UserID(c.Request.Context())
	var req services.StarterSelection
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	character, err := ch.characterService.InitializeStarter(c.Request.Context(), userID, &req)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, character)
}

func (ch *CharacterHandler) GetOptions(c *gin.Context) {
	userID := requestdata.UserID(c.Request.Context())
	options, err := ch.characterService.GetOptions(c.Request.Context(), userID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, options)
}

func (ch *CharacterHandler) GetUnlocked(c *gin.Context) {
	userID := requestdata.UserID(c.Request.Context())
	unlocked, err := ch.characterService.GetUnlocked(c.Request.Context(), userID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"unlocked": unlocked})
}
