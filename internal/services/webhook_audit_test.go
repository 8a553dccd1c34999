package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yungbote/speechpal-backend/internal/repos"
	"github.com/yungbote/speechpal-backend/internal/types"
)

func TestAuditRecordsSuccess(t *testing.T) {
	gormDB := newTestDB(t)
	log := newTestLogger(t)
	audit := NewWebhookAudit(log, repos.NewWebhookLogRepo(gormDB, log))

	call := audit.Begin(context.Background(), &WebhookCallMeta{
		WebhookType:       types.WebhookTypeAwardXP,
		UserIDFromRequest: "user-1",
		RequestBody:       []byte(`{"user_id":"user-1","session_id":"s1","score":90}`),
		IPAddress:         "10.0.0.1",
		UserAgent:         "vendor/1.0",
	})

	var pending types.WebhookLog
	require.NoError(t, gormDB.First(&pending).Error)
	require.Equal(t, types.WebhookStatusPending, pending.Status)
	require.Equal(t, "user-1", pending.UserIDFromRequest)

	call.Succeed(context.Background(), map[string]any{"success": true, "xp_earned": 23})

	var row types.WebhookLog
	require.NoError(t, gormDB.First(&row).Error)
	require.Equal(t, types.WebhookStatusSuccess, row.Status)
	require.NotNil(t, row.ProcessedAt)
	require.NotNil(t, row.ProcessingTimeMs)
	require.NotEmpty(t, row.ResponseData)
}

func TestAuditFailAfterSucceedIsNoOp(t *testing.T) {
	gormDB := newTestDB(t)
	log := newTestLogger(t)
	audit := NewWebhookAudit(log, repos.NewWebhookLogRepo(gormDB, log))

	call := audit.Begin(context.Background(), &WebhookCallMeta{
		WebhookType: types.WebhookTypeAwardXP,
		RequestBody: []byte(`{}`),
	})
	call.Succeed(context.Background(), map[string]any{"success": true})
	call.Fail(context.Background(), "deferred failure path")

	var row types.WebhookLog
	require.NoError(t, gormDB.First(&row).Error)
	require.Equal(t, types.WebhookStatusSuccess, row.Status)
	require.Empty(t, row.ErrorMessage)
}

func TestAuditRecordsErrorAndGarbageBody(t *testing.T) {
	gormDB := newTestDB(t)
	log := newTestLogger(t)
	audit := NewWebhookAudit(log, repos.NewWebhookLogRepo(gormDB, log))

	call := audit.Begin(context.Background(), &WebhookCallMeta{
		WebhookType: types.WebhookTypeConversationEnd,
		RequestBody: []byte("this is not json"),
	})
	call.Fail(context.Background(), "user not found")

	var row types.WebhookLog
	require.NoError(t, gormDB.First(&row).Error)
	require.Equal(t, types.WebhookStatusError, row.Status)
	require.Equal(t, "user not found", row.ErrorMessage)
	require.NotEmpty(t, row.RequestData, "garbage body stored as quoted string")
}

func TestAuditStats(t *testing.T) {
	gormDB := newTestDB(t)
	log := newTestLogger(t)
	audit := NewWebhookAudit(log, repos.NewWebhookLogRepo(gormDB, log))

	ok := audit.Begin(context.Background(), &WebhookCallMeta{WebhookType: types.WebhookTypeAwardXP})
	ok.Succeed(context.Background(), map[string]any{"success": true})
	bad := audit.Begin(context.Background(), &WebhookCallMeta{WebhookType: types.WebhookTypeAwardXP})
	bad.Fail(context.Background(), "boom")

	stats, err := audit.Stats(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(2), stats.TotalCalls)
	require.Equal(t, int64(1), stats.SuccessfulCalls)
	require.Equal(t, int64(1), stats.ErrorCalls)
}
