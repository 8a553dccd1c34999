package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/speechpal-backend/internal/progression"
)

func newUserHarness(t *testing.T) (*ledgerHarness, UserService) {
	t.Helper()
	h := newLedgerHarness(t)
	svc := NewUserService(
		h.db,
		newTestLogger(t),
		progression.DefaultCatalog(),
		h.userRepo,
		h.profileRepo,
		h.speechSessionRepo,
		h.conversationRepo,
	)
	return h, svc
}

func TestGetProgressSummaryAggregatesBothTables(t *testing.T) {
	h, svc := newUserHarness(t)
	userID := h.createUser(t)

	_, err := h.progress.ApplyEvent(context.Background(), &ProgressEvent{
		UserID: userID, IdempotencyKey: "practice-1", Source: EventSourcePractice,
		ExperienceGained: 100, Duration: 30 * time.Second, WordsSpoken: 40, OverallScore: 80,
	})
	require.NoError(t, err)
	_, err = h.progress.ApplyEvent(context.Background(), &ProgressEvent{
		UserID: userID, IdempotencyKey: "conv-1", Source: EventSourceConversation,
		ExperienceGained: 50, Duration: 60 * time.Second, WordsSpoken: 25, OverallScore: 90,
	})
	require.NoError(t, err)

	summary, err := svc.GetProgressSummary(context.Background(), userID)
	require.NoError(t, err)
	require.Equal(t, 2, summary.Level)
	require.Equal(t, 150, summary.ExperiencePoints)
	require.Equal(t, 50, summary.XPToNextLevel)
	require.Equal(t, 200, summary.NextLevelThreshold)
	require.Equal(t, int64(65), summary.TotalWordsSpoken)
	require.Equal(t, int64(90), summary.TotalSpeakingTimeSeconds)
	require.Len(t, summary.RecentSessions, 1)
	require.Len(t, summary.RecentConversations, 1)

	// Level 3 unlocks the white body and green eyes.
	require.Len(t, summary.NextUnlocks, 2)
	for _, u := range summary.NextUnlocks {
		require.Equal(t, 3, u.LevelRequired)
	}
}

func TestGetProgressSummaryFreshUser(t *testing.T) {
	h, svc := newUserHarness(t)
	userID := h.createUser(t)

	summary, err := svc.GetProgressSummary(context.Background(), userID)
	require.NoError(t, err)
	require.Equal(t, 1, summary.Level)
	require.Equal(t, 0, summary.ExperiencePoints)
	require.Equal(t, 100, summary.XPToNextLevel)
	require.Empty(t, summary.RecentSessions)
}

func TestUpdateProfileOnlyTouchesFlags(t *testing.T) {
	h, svc := newUserHarness(t)
	userID := h.createUser(t)

	_, err := h.progress.ApplyEvent(context.Background(), &ProgressEvent{
		UserID: userID, IdempotencyKey: "seed", Source: EventSourcePractice,
		ExperienceGained: 150, OverallScore: 75,
	})
	require.NoError(t, err)

	done := true
	profile, err := svc.UpdateProfile(context.Background(), userID, &ProfileUpdate{HasCompletedOnboarding: &done})
	require.NoError(t, err)
	require.True(t, profile.HasCompletedOnboarding)
	require.False(t, profile.HasActiveAvatar)

	// The ledger-owned columns survive a profile edit untouched.
	require.Equal(t, 150, profile.ExperiencePoints)
	require.Equal(t, 2, profile.Level)

	_, err = svc.UpdateProfile(context.Background(), userID, nil)
	require.ErrorIs(t, err, ErrInvalidPayload)
}

func TestGetMeUnknownUser(t *testing.T) {
	h, svc := newUserHarness(t)
	userID := h.createUser(t)

	user, err := svc.GetMe(context.Background(), userID)
	require.NoError(t, err)
	require.Equal(t, userID, user.ID)

	_, err = svc.GetMe(context.Background(), uuid.New())
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestUpdateProfileFlagsAreSetOnce(t *testing.T) {
	h, svc := newUserHarness(t)
	userID := h.createUser(t)

	on := true
	off := false
	profile, err := svc.UpdateProfile(context.Background(), userID, &ProfileUpdate{
		HasCompletedOnboarding: &on,
		HasActiveAvatar:        &on,
	})
	require.NoError(t, err)
	require.True(t, profile.HasCompletedOnboarding)
	require.True(t, profile.HasActiveAvatar)

	// Once raised, the flags cannot be lowered from outside.
	profile, err = svc.UpdateProfile(context.Background(), userID, &ProfileUpdate{
		HasCompletedOnboarding: &off,
		HasActiveAvatar:        &off,
	})
	require.NoError(t, err)
	require.True(t, profile.HasCompletedOnboarding)
	require.True(t, profile.HasActiveAvatar)
}
