package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/speechpal-backend/internal/progression"
)

func TestApplyEventFirstLevelUp(t *testing.T) {
	h := newLedgerHarness(t)
	userID := h.createUser(t)

	res, err := h.progress.ApplyEvent(context.Background(), &ProgressEvent{
		UserID:           userID,
		IdempotencyKey:   "session-1",
		Source:           EventSourcePractice,
		ExperienceGained: 150,
		Duration:         45 * time.Second,
		WordsSpoken:      12,
		OverallScore:     80,
	})
	require.NoError(t, err)
	require.False(t, res.Duplicate)
	require.Equal(t, 1, res.OldLevel)
	require.Equal(t, 2, res.NewLevel)
	require.True(t, res.LevelUp)
	require.Equal(t, 150, res.TotalXP)
	require.Equal(t, 150, res.ExperienceGained)

	values := map[string]string{}
	for _, u := range res.UnlockedItems {
		values[u.Type] = u.Value
		require.Equal(t, 2, u.LevelRequired)
	}
	require.Equal(t, map[string]string{
		progression.CustomizationTypeBodyColor: "black",
		progression.CustomizationTypeEyeColor:  "blue",
		progression.CustomizationTypeAccessory: "collar",
	}, values)

	profile, err := h.profileRepo.GetByUserID(context.Background(), nil, userID)
	require.NoError(t, err)
	require.Equal(t, 2, profile.Level)
	require.Equal(t, 150, profile.ExperiencePoints)
	require.Equal(t, int64(45), profile.TotalSpeakingTimeSeconds)

	granted, err := h.unlockedRepo.GetByUserID(context.Background(), nil, userID)
	require.NoError(t, err)
	require.Len(t, granted, 3)
}

func TestApplyEventDuplicateKeyIsNoOp(t *testing.T) {
	h := newLedgerHarness(t)
	userID := h.createUser(t)

	ev := &ProgressEvent{
		UserID:           userID,
		IdempotencyKey:   "session-dup",
		Source:           EventSourceLive,
		ExperienceGained: 60,
		WordsSpoken:      8,
		OverallScore:     70,
	}
	first, err := h.progress.ApplyEvent(context.Background(), ev)
	require.NoError(t, err)
	require.False(t, first.Duplicate)

	second, err := h.progress.ApplyEvent(context.Background(), ev)
	require.NoError(t, err)
	require.True(t, second.Duplicate)
	require.Equal(t, 0, second.ExperienceGained)
	require.Equal(t, first.TotalXP, second.TotalXP)
	require.Equal(t, first.NewLevel, second.NewLevel)
	require.False(t, second.LevelUp)
	require.Empty(t, second.UnlockedItems)
	require.Empty(t, second.EarnedAchievements)

	var count int64
	require.NoError(t, h.db.Table("speech_session").Where("user_id = ?", userID).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestApplyEventMultiLevelJumpGrantsEveryTier(t *testing.T) {
	h := newLedgerHarness(t)
	userID := h.createUser(t)

	res, err := h.progress.ApplyEvent(context.Background(), &ProgressEvent{
		UserID:           userID,
		IdempotencyKey:   "session-jump",
		Source:           EventSourcePractice,
		ExperienceGained: 800,
		OverallScore:     90,
	})
	require.NoError(t, err)
	require.Equal(t, 7, res.NewLevel, "800 XP sits between the 750 and 1000 thresholds")

	// Every catalog pair with a threshold in (1, 7] arrives at once: three
	// body colors, three eye colors, three accessories.
	require.Len(t, res.UnlockedItems, 9)
	for _, u := range res.UnlockedItems {
		require.Greater(t, u.LevelRequired, 1)
		require.LessOrEqual(t, u.LevelRequired, 7)
	}
}

func TestApplyEventConversationDedup(t *testing.T) {
	h := newLedgerHarness(t)
	userID := h.createUser(t)

	ev := &ProgressEvent{
		UserID:           userID,
		IdempotencyKey:   "conv-42",
		Source:           EventSourceConversation,
		ExperienceGained: 90,
		Duration:         2 * time.Minute,
		WordsSpoken:      40,
		OverallScore:     85,
		Transcript:       "we talked about dinosaurs",
		Summary:          "dinosaur chat",
	}
	first, err := h.progress.ApplyEvent(context.Background(), ev)
	require.NoError(t, err)
	require.False(t, first.Duplicate)

	second, err := h.progress.ApplyEvent(context.Background(), ev)
	require.NoError(t, err)
	require.True(t, second.Duplicate)

	var count int64
	require.NoError(t, h.db.Table("conversation_session").Where("user_id = ?", userID).Count(&count).Error)
	require.Equal(t, int64(1), count)

	conversations, err := h.conversationRepo.GetRecentByUserID(context.Background(), nil, userID, 10)
	require.NoError(t, err)
	require.Len(t, conversations, 1)
	require.Equal(t, "conv-42", conversations[0].ConversationID)
	require.Equal(t, "we talked about dinosaurs", conversations[0].Transcript)
}

func TestApplyEventRejectsInvalidInput(t *testing.T) {
	h := newLedgerHarness(t)
	userID := h.createUser(t)

	cases := []struct {
		name string
		ev   *ProgressEvent
	}{
		{name: "nil_event", ev: nil},
		{name: "missing_user", ev: &ProgressEvent{IdempotencyKey: "k"}},
		{name: "missing_key", ev: &ProgressEvent{UserID: userID}},
		{name: "negative_xp", ev: &ProgressEvent{UserID: userID, IdempotencyKey: "k", ExperienceGained: -1}},
		{name: "negative_duration", ev: &ProgressEvent{UserID: userID, IdempotencyKey: "k", Duration: -time.Second}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := h.progress.ApplyEvent(context.Background(), tc.ev)
			require.ErrorIs(t, err, ErrInvalidPayload)
		})
	}
}

func TestApplyEventImprovementScoreIsRecentMean(t *testing.T) {
	h := newLedgerHarness(t)
	userID := h.createUser(t)

	_, err := h.progress.ApplyEvent(context.Background(), &ProgressEvent{
		UserID: userID, IdempotencyKey: "s1", Source: EventSourceLive,
		ExperienceGained: 10, OverallScore: 80,
	})
	require.NoError(t, err)

	res, err := h.progress.ApplyEvent(context.Background(), &ProgressEvent{
		UserID: userID, IdempotencyKey: "c1", Source: EventSourceConversation,
		ExperienceGained: 10, OverallScore: 60,
	})
	require.NoError(t, err)
	require.InDelta(t, 70.0, res.ImprovementScore, 0.001, "mean across both session tables")
}

func TestApplyEventConcurrentSameUser(t *testing.T) {
	h := newLedgerHarness(t)
	userID := h.createUser(t)

	const workers = 10
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := h.progress.ApplyEvent(context.Background(), &ProgressEvent{
				UserID:           userID,
				IdempotencyKey:   fmt.Sprintf("parallel-%d", i),
				Source:           EventSourceLive,
				ExperienceGained: 10,
				OverallScore:     75,
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	profile, err := h.profileRepo.GetByUserID(context.Background(), nil, userID)
	require.NoError(t, err)
	require.Equal(t, workers*10, profile.ExperiencePoints, "every event counted exactly once")
	require.Equal(t, progression.LevelForXP(profile.ExperiencePoints), profile.Level)
}

func TestApplyEventLevelMatchesCurveAfterEveryEvent(t *testing.T) {
	h := newLedgerHarness(t)
	userID := h.createUser(t)

	awards := []int{30, 90, 250, 5, 400}
	total := 0
	for i, xp := range awards {
		total += xp
		res, err := h.progress.ApplyEvent(context.Background(), &ProgressEvent{
			UserID:           userID,
			IdempotencyKey:   fmt.Sprintf("curve-%d", i),
			Source:           EventSourcePractice,
			ExperienceGained: xp,
			OverallScore:     70,
		})
		require.NoError(t, err)
		require.Equal(t, total, res.TotalXP)
		require.Equal(t, progression.LevelForXP(total), res.NewLevel)
		require.GreaterOrEqual(t, res.NewLevel, res.OldLevel)
	}
}

// gateNotifier blocks its first ProgressUpdated call until released, to
// observe what the ledger allows while a push is still in flight.
type gateNotifier struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gateNotifier) ProgressUpdated(_ uuid.UUID, _ map[string]any) {
	g.once.Do(func() {
		close(g.entered)
		<-g.release
	})
}

func (g *gateNotifier) LevelUp(_ uuid.UUID, _ map[string]any)           {}
func (g *gateNotifier) AchievementEarned(_ uuid.UUID, _ map[string]any) {}

func TestApplyEventNotificationRunsOutsideUserLock(t *testing.T) {
	h := newLedgerHarness(t)
	userID := h.createUser(t)

	gate := &gateNotifier{entered: make(chan struct{}), release: make(chan struct{})}
	progress := NewProgressService(h.db, newTestLogger(t), progression.DefaultCatalog(),
		h.profileRepo, h.speechSessionRepo, h.conversationRepo, h.unlockedRepo, h.evaluator, gate)

	var wg sync.WaitGroup
	var firstErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, firstErr = progress.ApplyEvent(context.Background(), &ProgressEvent{
			UserID:           userID,
			IdempotencyKey:   "slow-notify",
			Source:           EventSourcePractice,
			ExperienceGained: 10,
			OverallScore:     70,
		})
	}()

	// The first event has committed; its push is parked on the gate.
	<-gate.entered

	// A second event for the same user must get through while that push is
	// still in flight.
	res, err := progress.ApplyEvent(context.Background(), &ProgressEvent{
		UserID:           userID,
		IdempotencyKey:   "follow-up",
		Source:           EventSourcePractice,
		ExperienceGained: 10,
		OverallScore:     70,
	})
	require.NoError(t, err)
	require.Equal(t, 20, res.TotalXP)

	close(gate.release)
	wg.Wait()
	require.NoError(t, firstErr)
}
