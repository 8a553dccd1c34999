package services

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newWebhookHarness(t *testing.T) (*ledgerHarness, WebhookService) {
	t.Helper()
	h := newLedgerHarness(t)
	return h, NewWebhookService(newTestLogger(t), h.userRepo, h.progress)
}

func TestProcessAwardXPComputesPracticeXP(t *testing.T) {
	h, svc := newWebhookHarness(t)
	userID := h.createUser(t)

	resp, err := svc.ProcessAwardXP(context.Background(), &AwardXPPayload{
		UserID:     userID.String(),
		SessionID:  "practice-1",
		Score:      90,
		Difficulty: "hard",
	})
	require.NoError(t, err)
	require.True(t, resp.Success)
	require.Equal(t, 23, resp.XPEarned, "int(15*0.9) + 10 accuracy bonus")
	require.Equal(t, 23, resp.UserXP)
	require.Equal(t, 1, resp.UserLevel)
	require.False(t, resp.LevelUp)
	require.False(t, resp.Duplicate)
}

func TestProcessAwardXPDefaultsToMediumDifficulty(t *testing.T) {
	h, svc := newWebhookHarness(t)
	userID := h.createUser(t)

	resp, err := svc.ProcessAwardXP(context.Background(), &AwardXPPayload{
		UserID:    userID.String(),
		SessionID: "practice-2",
		Score:     70,
	})
	require.NoError(t, err)
	require.Equal(t, 12, resp.XPEarned, "int(10*0.7) + 5 accuracy bonus")
}

func TestProcessAwardXPDuplicateSession(t *testing.T) {
	h, svc := newWebhookHarness(t)
	userID := h.createUser(t)

	payload := &AwardXPPayload{UserID: userID.String(), SessionID: "practice-3", Score: 85, Difficulty: "easy"}
	first, err := svc.ProcessAwardXP(context.Background(), payload)
	require.NoError(t, err)
	require.False(t, first.Duplicate)

	second, err := svc.ProcessAwardXP(context.Background(), payload)
	require.NoError(t, err)
	require.True(t, second.Duplicate)
	require.Equal(t, 0, second.XPEarned)
	require.Equal(t, first.UserXP, second.UserXP)
	require.NotEmpty(t, second.Message)
}

func TestProcessAwardXPUnknownUser(t *testing.T) {
	_, svc := newWebhookHarness(t)

	_, err := svc.ProcessAwardXP(context.Background(), &AwardXPPayload{
		UserID:    uuid.NewString(),
		SessionID: "practice-4",
		Score:     50,
	})
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestProcessAwardXPValidation(t *testing.T) {
	h, svc := newWebhookHarness(t)
	userID := h.createUser(t)

	cases := []struct {
		name    string
		payload *AwardXPPayload
	}{
		{name: "missing_session", payload: &AwardXPPayload{UserID: userID.String(), Score: 50}},
		{name: "malformed_user", payload: &AwardXPPayload{UserID: "not-a-uuid", SessionID: "s", Score: 50}},
		{name: "score_out_of_range", payload: &AwardXPPayload{UserID: userID.String(), SessionID: "s", Score: 150}},
		{name: "bad_difficulty", payload: &AwardXPPayload{UserID: userID.String(), SessionID: "s", Score: 50, Difficulty: "impossible"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.ProcessAwardXP(context.Background(), tc.payload)
			require.ErrorIs(t, err, ErrInvalidPayload)
		})
	}
}

func TestProcessAwardXPRecordsPhoneme(t *testing.T) {
	h, svc := newWebhookHarness(t)
	userID := h.createUser(t)

	_, err := svc.ProcessAwardXP(context.Background(), &AwardXPPayload{
		UserID:     userID.String(),
		SessionID:  "practice-r",
		Phoneme:    "r",
		Score:      80,
		Difficulty: "medium",
	})
	require.NoError(t, err)

	sessions, err := h.speechSessionRepo.GetRecentByUserID(context.Background(), nil, userID, 1)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.Equal(t, "r", sessions[0].Phoneme)
}

func TestProcessConversationEnd(t *testing.T) {
	h, svc := newWebhookHarness(t)
	userID := h.createUser(t)

	resp, err := svc.ProcessConversationEnd(context.Background(), &ConversationEndPayload{
		UserID:     userID.String(),
		SessionID:  "conv-100",
		Transcript: "today we talked about space",
		Analysis: ConversationAnalysis{
			OverallAccuracy: 80,
			WordsSpoken:     30,
			DurationMinutes: 2,
		},
	})
	require.NoError(t, err)
	// 20 base + round(80*0.5) + min(30*2, 50) + min(round(2*5), 30)
	require.Equal(t, 120, resp.XPEarned)
	require.Contains(t, resp.Summary, "earned 120 XP")
	require.True(t, resp.LevelUp)

	dup, err := svc.ProcessConversationEnd(context.Background(), &ConversationEndPayload{
		UserID:    userID.String(),
		SessionID: "conv-100",
		Analysis:  ConversationAnalysis{OverallAccuracy: 80},
	})
	require.NoError(t, err)
	require.True(t, dup.Duplicate)
	require.Equal(t, resp.UserXP, dup.UserXP)
}

func TestProcessConversationEndAcceptsVendorBody(t *testing.T) {
	h, svc := newWebhookHarness(t)
	userID := h.createUser(t)

	raw := fmt.Sprintf(`{
		"user_id": %q,
		"session_id": "conv-wire",
		"transcript": "we compared planets",
		"analysis": {"overall_accuracy": 90, "words_spoken": 20, "duration_minutes": 3},
		"dynamic_variables": {"topic": "planets"}
	}`, userID)

	var payload ConversationEndPayload
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))
	require.Equal(t, 90.0, payload.Analysis.OverallAccuracy)
	require.Equal(t, 20, payload.Analysis.WordsSpoken)
	require.Equal(t, 3.0, payload.Analysis.DurationMinutes)
	require.Equal(t, "planets", payload.DynamicVariables["topic"])

	resp, err := svc.ProcessConversationEnd(context.Background(), &payload)
	require.NoError(t, err)
	// 20 + round(90*0.5) + min(20*2, 50) + min(round(3*5), 30)
	require.Equal(t, 120, resp.XPEarned)

	conversations, err := h.conversationRepo.GetRecentByUserID(context.Background(), nil, userID, 1)
	require.NoError(t, err)
	require.Len(t, conversations, 1)
	require.Equal(t, "conv-wire", conversations[0].ConversationID)
	require.InDelta(t, 180.0, conversations[0].DurationSeconds, 0.001)
}

func TestProcessConversationEndCapsBonuses(t *testing.T) {
	h, svc := newWebhookHarness(t)
	userID := h.createUser(t)

	resp, err := svc.ProcessConversationEnd(context.Background(), &ConversationEndPayload{
		UserID:    userID.String(),
		SessionID: "conv-long",
		Analysis: ConversationAnalysis{
			OverallAccuracy: 100,
			WordsSpoken:     500,
			DurationMinutes: 60,
		},
	})
	require.NoError(t, err)
	// 20 + 50 accuracy + capped 50 word bonus + capped 30 duration bonus.
	require.Equal(t, 150, resp.XPEarned)
}
