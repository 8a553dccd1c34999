package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/speechpal-backend/internal/services"
	"github.com/yungbote/speechpal-backend/internal/types"
)

const maxWebhookBody = 1 << 20

// WebhookHandler is the inbound edge for vendor callbacks. Every call gets
// an audit row regardless of outcome; the deferred Fail turns into a no-op
// once Succeed has run.
type WebhookHandler struct {
	webhookService services.WebhookService
	audit          services.WebhookAudit
}

func NewWebhookHandler(webhookService services.WebhookService, audit services.WebhookAudit) *WebhookHandler {
	return &WebhookHandler{webhookService: webhookService, audit: audit}
}

func (wh *WebhookHandler) AwardXP(c *gin.Context) {
	body, readErr := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))

	var payload services.AwardXPPayload
	var parseErr error
	if readErr == nil {
		parseErr = json.Unmarshal(body, &payload)
	}

	// The audit row exists before any outcome is decided, even for a body
	// that could not be read.
	call := wh.audit.Begin(c.Request.Context(), &services.WebhookCallMeta{
		WebhookType:       types.WebhookTypeAwardXP,
		UserIDFromRequest: payload.UserID,
		RequestBody:       body,
		IPAddress:         c.ClientIP(),
		UserAgent:         c.Request.UserAgent(),
	})
	defer func() {
		call.Fail(c.Request.Context(), "request aborted before completion")
	}()

	if readErr != nil {
		call.Fail(c.Request.Context(), readErr.Error())
		RespondError(c, http.StatusBadRequest, "invalid_body", readErr)
		return
	}
	if parseErr != nil {
		call.Fail(c.Request.Context(), parseErr.Error())
		RespondError(c, http.StatusBadRequest, "invalid_body", parseErr)
		return
	}

	resp, err := wh.webhookService.ProcessAwardXP(c.Request.Context(), &payload)
	if err != nil {
		call.Fail(c.Request.Context(), err.Error())
		RespondServiceError(c, err)
		return
	}
	call.Succeed(c.Request.Context(), resp)
	RespondOK(c, resp)
}

func (wh *WebhookHandler) ConversationEnd(c *gin.Context) {
	body, readErr := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))

	var payload services.ConversationEndPayload
	var parseErr error
	if readErr == nil {
		parseErr = json.Unmarshal(body, &payload)
	}

	call := wh.audit.Begin(c.Request.Context(), &services.WebhookCallMeta{
		WebhookType:       types.WebhookTypeConversationEnd,
		UserIDFromRequest: payload.UserID,
		RequestBody:       body,
		IPAddress:         c.ClientIP(),
		UserAgent:         c.Request.UserAgent(),
	})
	defer func() {
		call.Fail(c.Request.Context(), "request aborted before completion")
	}()

	if readErr != nil {
		call.Fail(c.Request.Context(), readErr.Error())
		RespondError(c, http.StatusBadRequest, "invalid_body", readErr)
		return
	}
	if parseErr != nil {
		call.Fail(c.Request.Context(), parseErr.Error())
		RespondError(c, http.StatusBadRequest, "invalid_body", parseErr)
		return
	}

	resp, err := wh.webhookService.ProcessConversationEnd(c.Request.Context(), &payload)
	if err != nil {
		call.Fail(c.Request.Context(), err.Error())
		RespondServiceError(c, err)
		return
	}
	call.Succeed(c.Request.Context(), resp)
	RespondOK(c, resp)
}

func (wh *WebhookHandler) Stats(c *gin.Context) {
	stats, err := wh.audit.Stats(c.Request.Context())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, stats)
}
