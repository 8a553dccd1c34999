package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/speechpal-backend/internal/logger"
	"github.com/yungbote/speechpal-backend/internal/progression"
	"github.com/yungbote/speechpal-backend/internal/repos"
	"github.com/yungbote/speechpal-backend/internal/types"
)

const (
	EventSourceLive         = "live"
	EventSourcePractice     = "practice"
	EventSourceConversation = "conversation"
)

// improvementWindow is the trailing window over which the rolling
// improvement score is recomputed from session rows.
const improvementWindow = 7 * 24 * time.Hour

// ProgressEvent is one scoring event to be applied to a user's profile. The
// idempotency key must already be set; events with no natural key derive one
// before reaching the ledger (see DeriveIdempotencyKey).
type ProgressEvent struct {
	UserID           uuid.UUID
	IdempotencyKey   string
	Source           string
	ExperienceGained int
	Duration         time.Duration
	WordsSpoken      int
	// Practice-only: the phoneme the vendor drilled in this session.
	Phoneme string
	ClarityScore     float64
	FluencyScore     float64
	ConfidenceScore  float64
	OverallScore     float64

	// Conversation-only fields.
	Transcript string
	Summary    string
}

// ProgressResult is the consequence summary of one applied event. When
// Duplicate is set no state changed and every other field reflects the
// profile as it already was.
type ProgressResult struct {
	Duplicate          bool                `json:"duplicate"`
	SessionID          uuid.UUID           `json:"session_id"`
	OldLevel           int                 `json:"old_level"`
	NewLevel           int                 `json:"new_level"`
	LevelUp            bool                `json:"level_up"`
	TotalXP            int                 `json:"total_xp"`
	ExperienceGained   int                 `json:"experience_gained"`
	ImprovementScore   float64             `json:"improvement_score"`
	UnlockedItems      []progression.Unlock `json:"unlocked_items"`
	EarnedAchievements []EarnedAchievement `json:"earned_achievements"`
}

// ProgressService is the transactional ledger: it applies exactly one scoring
// event to exactly one user's profile as an atomic unit and computes every
// downstream consequence (level, unlocks, achievements, notification).
type ProgressService interface {
	ApplyEvent(ctx context.Context, ev *ProgressEvent) (*ProgressResult, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*types.UserProfile, error)
}

type progressService struct {
	db                *gorm.DB
	log               *logger.Logger
	catalog           *progression.Catalog
	profileRepo       repos.UserProfileRepo
	speechSessionRepo repos.SpeechSessionRepo
	conversationRepo  repos.ConversationSessionRepo
	unlockedRepo      repos.UnlockedCustomizationRepo
	achievements      AchievementEvaluator
	notifier          ProgressNotifier

	// userLocks serializes ledger transactions per user. The unique
	// (user_id, session_id) index is the cross-instance backstop: if two
	// instances race past their local locks, the second commit fails on the
	// index and the vendor's retry then observes a clean duplicate.
	userLocks sync.Map
}

func NewProgressService(
	db *gorm.DB,
	log *logger.Logger,
	catalog *progression.Catalog,
	profileRepo repos.UserProfileRepo,
	speechSessionRepo repos.SpeechSessionRepo,
	conversationRepo repos.ConversationSessionRepo,
	unlockedRepo repos.UnlockedCustomizationRepo,
	achievements AchievementEvaluator,
	notifier ProgressNotifier,
) ProgressService {
	return &progressService{
		db:                db,
		log:               log.With("service", "ProgressService"),
		catalog:           catalog,
		profileRepo:       profileRepo,
		speechSessionRepo: speechSessionRepo,
		conversationRepo:  conversationRepo,
		unlockedRepo:      unlockedRepo,
		achievements:      achievements,
		notifier:          notifier,
	}
}

func (ps *progressService) lockFor(userID uuid.UUID) *sync.Mutex {
	mu, _ := ps.userLocks.LoadOrStore(userID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func (ps *progressService) GetProfile(ctx context.Context, userID uuid.UUID) (*types.UserProfile, error) {
	return ps.profileRepo.GetOrCreateByUserID(ctx, nil, userID)
}

func (ps *progressService) ApplyEvent(ctx context.Context, ev *ProgressEvent) (*ProgressResult, error) {
	if ev == nil {
		return nil, fmt.Errorf("%w: nil event", ErrInvalidPayload)
	}
	if ev.UserID == uuid.Nil {
		return nil, fmt.Errorf("%w: missing user id", ErrInvalidPayload)
	}
	if ev.IdempotencyKey == "" {
		return nil, fmt.Errorf("%w: missing idempotency key", ErrInvalidPayload)
	}
	if ev.ExperienceGained < 0 {
		return nil, fmt.Errorf("%w: negative xp delta", ErrInvalidPayload)
	}
	if ev.Duration < 0 {
		return nil, fmt.Errorf("%w: negative duration", ErrInvalidPayload)
	}

	res := &ProgressResult{}
	err := ps.applyLocked(ctx, ev, res)
	if err != nil {
		return nil, err
	}

	// The commit is durable at this point; the push runs outside the per-user
	// lock so a slow notification transport cannot stall the next event.
	if !res.Duplicate {
		ps.notifyAfterCommit(ev.UserID, res)
	}
	return res, nil
}

// applyLocked holds the per-user mutex only for the transaction itself.
func (ps *progressService) applyLocked(ctx context.Context, ev *ProgressEvent, res *ProgressResult) error {
	mu := ps.lockFor(ev.UserID)
	mu.Lock()
	defer mu.Unlock()

	return ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		duplicate, err := ps.eventExists(ctx, tx, ev)
		if err != nil {
			return err
		}
		profile, err := ps.profileRepo.GetOrCreateByUserID(ctx, tx, ev.UserID)
		if err != nil {
			return err
		}
		if duplicate {
			// No state change, no side effects. The profile snapshot lets
			// the caller answer with current totals.
			res.Duplicate = true
			res.OldLevel = profile.Level
			res.NewLevel = profile.Level
			res.TotalXP = profile.ExperiencePoints
			res.ImprovementScore = profile.ImprovementScore
			return nil
		}

		res.OldLevel = profile.Level

		sessionID, err := ps.appendSession(ctx, tx, ev)
		if err != nil {
			return err
		}
		res.SessionID = sessionID

		profile.ExperiencePoints += ev.ExperienceGained
		profile.TotalSpeakingTimeSeconds += int64(ev.Duration.Seconds())

		improvement, err := ps.recentAverageScore(ctx, tx, ev.UserID)
		if err != nil {
			return err
		}
		profile.ImprovementScore = improvement

		newLevel := progression.LevelForXP(profile.ExperiencePoints)
		if newLevel > profile.Level {
			unlocks, err := ps.grantUnlockRange(ctx, tx, ev.UserID, profile.Level, newLevel)
			if err != nil {
				return err
			}
			res.UnlockedItems = unlocks
		}
		profile.Level = newLevel

		earned, err := ps.achievements.EvaluateInTx(ctx, tx, profile, ev)
		if err != nil {
			return err
		}
		res.EarnedAchievements = earned

		// Achievement rewards may themselves cross a threshold; fold that in
		// before the profile is written so level never lags XP.
		if finalLevel := progression.LevelForXP(profile.ExperiencePoints); finalLevel > profile.Level {
			unlocks, err := ps.grantUnlockRange(ctx, tx, ev.UserID, profile.Level, finalLevel)
			if err != nil {
				return err
			}
			res.UnlockedItems = append(res.UnlockedItems, unlocks...)
			profile.Level = finalLevel
		}

		if derived := progression.LevelForXP(profile.ExperiencePoints); profile.Level != derived {
			// Should be unreachable: it means a write path bypassed the
			// ledger or the curve changed underneath stored data.
			ps.log.Error("Level invariant violation, correcting to derived value",
				"user_id", ev.UserID,
				"stored_level", profile.Level,
				"derived_level", derived,
				"xp", profile.ExperiencePoints)
			profile.Level = derived
		}

		if err := ps.profileRepo.Save(ctx, tx, profile); err != nil {
			return err
		}

		res.NewLevel = profile.Level
		res.LevelUp = res.NewLevel > res.OldLevel
		res.TotalXP = profile.ExperiencePoints
		res.ExperienceGained = ev.ExperienceGained
		res.ImprovementScore = profile.ImprovementScore
		return nil
	})
}

// eventExists checks for a prior session under the same idempotency key. It
// runs inside the same transaction as the append so both sit on one side of
// the per-user lock.
func (ps *progressService) eventExists(ctx context.Context, tx *gorm.DB, ev *ProgressEvent) (bool, error) {
	if ev.Source == EventSourceConversation {
		return ps.conversationRepo.ExistsByUserAndConversationID(ctx, tx, ev.UserID, ev.IdempotencyKey)
	}
	return ps.speechSessionRepo.ExistsByUserAndSessionID(ctx, tx, ev.UserID, ev.IdempotencyKey)
}

func (ps *progressService) appendSession(ctx context.Context, tx *gorm.DB, ev *ProgressEvent) (uuid.UUID, error) {
	if ev.Source == EventSourceConversation {
		session := &types.ConversationSession{
			UserID:           ev.UserID,
			ConversationID:   ev.IdempotencyKey,
			Transcript:       ev.Transcript,
			OverallAccuracy:  ev.OverallScore,
			WordsSpoken:      ev.WordsSpoken,
			DurationSeconds:  ev.Duration.Seconds(),
			ExperienceGained: ev.ExperienceGained,
			Summary:          ev.Summary,
		}
		if err := ps.conversationRepo.Create(ctx, tx, session); err != nil {
			return uuid.Nil, err
		}
		return session.ID, nil
	}

	source := ev.Source
	if source == "" {
		source = EventSourceLive
	}
	session := &types.SpeechSession{
		UserID:           ev.UserID,
		SessionID:        ev.IdempotencyKey,
		Source:           source,
		Phoneme:          ev.Phoneme,
		DurationSeconds:  ev.Duration.Seconds(),
		WordsSpoken:      ev.WordsSpoken,
		ClarityScore:     ev.ClarityScore,
		FluencyScore:     ev.FluencyScore,
		ConfidenceScore:  ev.ConfidenceScore,
		OverallScore:     ev.OverallScore,
		ExperienceGained: ev.ExperienceGained,
	}
	if err := ps.speechSessionRepo.Create(ctx, tx, session); err != nil {
		return uuid.Nil, err
	}
	return session.ID, nil
}

// recentAverageScore recomputes the rolling improvement score as the mean
// overall score across every session in the trailing window, straight from
// the source rows.
func (ps *progressService) recentAverageScore(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (float64, error) {
	since := time.Now().Add(-improvementWindow)
	speechCount, speechSum, err := ps.speechSessionRepo.ScoreAggregateSince(ctx, tx, userID, since)
	if err != nil {
		return 0, err
	}
	conversationCount, conversationSum, err := ps.conversationRepo.ScoreAggregateSince(ctx, tx, userID, since)
	if err != nil {
		return 0, err
	}
	total := speechCount + conversationCount
	if total == 0 {
		return 0, nil
	}
	return (speechSum + conversationSum) / float64(total), nil
}

func (ps *progressService) grantUnlockRange(ctx context.Context, tx *gorm.DB, userID uuid.UUID, oldLevel, newLevel int) ([]progression.Unlock, error) {
	unlocks := ps.catalog.UnlocksInRange(oldLevel, newLevel)
	for _, u := range unlocks {
		if _, err := ps.unlockedRepo.GrantIfAbsent(ctx, tx, userID, u.Type, u.Value, u.LevelRequired); err != nil {
			return nil, err
		}
	}
	return unlocks, nil
}

// notifyAfterCommit runs outside the lock and the transaction; the update is
// already durable and a lost notification costs nothing but freshness.
func (ps *progressService) notifyAfterCommit(userID uuid.UUID, res *ProgressResult) {
	if ps.notifier == nil {
		return
	}
	ps.notifier.ProgressUpdated(userID, map[string]any{
		"level":              res.NewLevel,
		"experience":         res.TotalXP,
		"experience_gained":  res.ExperienceGained,
		"improvement_score":  res.ImprovementScore,
		"level_up":           res.LevelUp,
		"unlocked_items":     res.UnlockedItems,
		"earned_achievements": res.EarnedAchievements,
	})
	if res.LevelUp {
		ps.notifier.LevelUp(userID, map[string]any{
			"old_level":      res.OldLevel,
			"new_level":      res.NewLevel,
			"unlocked_items": res.UnlockedItems,
		})
	}
	for _, a := range res.EarnedAchievements {
		ps.notifier.AchievementEarned(userID, map[string]any{
			"name":              a.Name,
			"icon":              a.Icon,
			"experience_reward": a.ExperienceReward,
		})
	}
}
