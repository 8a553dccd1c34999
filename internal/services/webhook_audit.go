package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/speechpal-backend/internal/logger"
	"github.com/yungbote/speechpal-backend/internal/repos"
	"github.com/yungbote/speechpal-backend/internal/types"
)

// WebhookCallMeta describes the inbound request as seen at the edge, before
// any parsing or validation has happened.
type WebhookCallMeta struct {
	WebhookType       string
	UserIDFromRequest string
	RequestBody       []byte
	IPAddress         string
	UserAgent         string
}

// WebhookAudit records every inbound webhook call, including the ones that
// fail. Audit failures are logged and swallowed so that a broken audit table
// can never take the webhook path down with it.
type WebhookAudit interface {
	Begin(ctx context.Context, meta *WebhookCallMeta) *WebhookCall
	Stats(ctx context.Context) (*repos.WebhookStats, error)
}

// WebhookCall is one in-flight audited call. Exactly one of Succeed or Fail
// must be invoked before the handler returns; callers defer Fail and flip a
// flag on success so panics still land a terminal row.
type WebhookCall struct {
	audit *webhookAudit
	row   *types.WebhookLog
	start time.Time
	done  bool
}

type webhookAudit struct {
	log  *logger.Logger
	repo repos.WebhookLogRepo
}

func NewWebhookAudit(log *logger.Logger, repo repos.WebhookLogRepo) WebhookAudit {
	return &webhookAudit{
		log:  log.With("service", "WebhookAudit"),
		repo: repo,
	}
}

func (wa *webhookAudit) Begin(ctx context.Context, meta *WebhookCallMeta) *WebhookCall {
	row := &types.WebhookLog{
		ID:                uuid.New(),
		WebhookType:       meta.WebhookType,
		UserIDFromRequest: meta.UserIDFromRequest,
		Status:            types.WebhookStatusPending,
		RequestData:       sanitizeRequestBody(meta.RequestBody),
		IPAddress:         meta.IPAddress,
		UserAgent:         meta.UserAgent,
	}
	if err := wa.repo.Create(ctx, nil, row); err != nil {
		wa.log.Error("Failed to create webhook audit row", "webhook_type", meta.WebhookType, "error", err)
	}
	return &WebhookCall{audit: wa, row: row, start: time.Now()}
}

func (wa *webhookAudit) Stats(ctx context.Context) (*repos.WebhookStats, error) {
	return wa.repo.Stats(ctx, nil)
}

// Succeed marks the call processed and attaches the response payload.
func (c *WebhookCall) Succeed(ctx context.Context, response any) {
	if c == nil || c.done {
		return
	}
	c.done = true
	c.row.Status = types.WebhookStatusSuccess
	if response != nil {
		if data, err := json.Marshal(response); err == nil {
			c.row.ResponseData = data
		}
	}
	c.finish(ctx)
}

// Fail marks the call errored. Calling Fail after Succeed is a no-op, which
// is what makes the deferred-Fail pattern safe.
func (c *WebhookCall) Fail(ctx context.Context, errMsg string) {
	if c == nil || c.done {
		return
	}
	c.done = true
	c.row.Status = types.WebhookStatusError
	c.row.ErrorMessage = errMsg
	c.finish(ctx)
}

func (c *WebhookCall) finish(ctx context.Context) {
	elapsed := time.Since(c.start).Milliseconds()
	now := time.Now()
	c.row.ProcessingTimeMs = &elapsed
	c.row.ProcessedAt = &now
	if err := c.audit.repo.Save(ctx, nil, c.row); err != nil {
		c.audit.log.Error("Failed to finalize webhook audit row",
			"webhook_type", c.row.WebhookType,
			"status", c.row.Status,
			"error", err)
	}
}

// sanitizeRequestBody keeps the audit row JSON-valid even when the vendor
// sends garbage: unparseable bodies are stored as a quoted string.
func sanitizeRequestBody(body []byte) datatypes.JSON {
	if len(body) == 0 {
		return nil
	}
	if json.Valid(body) {
		return body
	}
	quoted, err := json.Marshal(string(body))
	if err != nil {
		return nil
	}
	return quoted
}
