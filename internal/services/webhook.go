package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/yungbote/speechpal-backend/internal/logger"
	"github.com/yungbote/speechpal-backend/internal/progression"
	"github.com/yungbote/speechpal-backend/internal/repos"
)

// AwardXPPayload is the vendor's practice completion callback.
type AwardXPPayload struct {
	UserID     string  `json:"user_id" validate:"required,uuid"`
	SessionID  string  `json:"session_id" validate:"required"`
	Phoneme    string  `json:"phoneme"`
	Score      float64 `json:"score" validate:"gte=0,lte=100"`
	Difficulty string  `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
}

// ConversationAnalysis is the nested scoring block of the conversation
// completion callback.
type ConversationAnalysis struct {
	OverallAccuracy float64 `json:"overall_accuracy" validate:"gte=0,lte=100"`
	WordsSpoken     int     `json:"words_spoken" validate:"gte=0"`
	DurationMinutes float64 `json:"duration_minutes" validate:"gte=0"`
}

// ConversationEndPayload is the vendor's conversation completion callback.
// SessionID is the vendor's conversation id and doubles as the idempotency
// key.
type ConversationEndPayload struct {
	UserID           string               `json:"user_id" validate:"required,uuid"`
	SessionID        string               `json:"session_id" validate:"required"`
	Transcript       string               `json:"transcript"`
	Analysis         ConversationAnalysis `json:"analysis"`
	DynamicVariables map[string]any       `json:"dynamic_variables"`
}

// AwardXPResponse mirrors the shape the vendor's success branch expects.
type AwardXPResponse struct {
	Success   bool   `json:"success"`
	UserXP    int    `json:"user_xp"`
	UserLevel int    `json:"user_level"`
	XPEarned  int    `json:"xp_earned"`
	LevelUp   bool   `json:"level_up"`
	OldLevel  int    `json:"old_level"`
	NewLevel  int    `json:"new_level"`
	Duplicate bool   `json:"duplicate,omitempty"`
	Message   string `json:"message,omitempty"`
}

type ConversationEndResponse struct {
	AwardXPResponse
	Summary string `json:"summary,omitempty"`
}

// WebhookService parses, validates and applies inbound vendor callbacks.
type WebhookService interface {
	ProcessAwardXP(ctx context.Context, payload *AwardXPPayload) (*AwardXPResponse, error)
	ProcessConversationEnd(ctx context.Context, payload *ConversationEndPayload) (*ConversationEndResponse, error)
}

type webhookService struct {
	log      *logger.Logger
	validate *validator.Validate
	userRepo repos.UserRepo
	progress ProgressService
}

func NewWebhookService(log *logger.Logger, userRepo repos.UserRepo, progress ProgressService) WebhookService {
	return &webhookService{
		log:      log.With("service", "WebhookService"),
		validate: validator.New(validator.WithRequiredStructEnabled()),
		userRepo: userRepo,
		progress: progress,
	}
}

func (ws *webhookService) ProcessAwardXP(ctx context.Context, payload *AwardXPPayload) (*AwardXPResponse, error) {
	if err := ws.validate.Struct(payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	userID, err := ws.resolveUser(ctx, payload.UserID)
	if err != nil {
		return nil, err
	}

	difficulty := payload.Difficulty
	if difficulty == "" {
		difficulty = progression.DifficultyMedium
	}
	xp := progression.PracticeXP(difficulty, payload.Score)

	res, err := ws.progress.ApplyEvent(ctx, &ProgressEvent{
		UserID:           userID,
		IdempotencyKey:   payload.SessionID,
		Source:           EventSourcePractice,
		ExperienceGained: xp,
		Phoneme:          payload.Phoneme,
		WordsSpoken:      0,
		ClarityScore:     payload.Score,
		FluencyScore:     payload.Score,
		ConfidenceScore:  payload.Score,
		OverallScore:     payload.Score,
	})
	if err != nil {
		return nil, err
	}

	resp := responseFromResult(res)
	if res.Duplicate {
		resp.Message = "session already processed"
	}
	ws.log.Info("Processed award_xp webhook",
		"user_id", userID,
		"session_id", payload.SessionID,
		"xp_earned", resp.XPEarned,
		"duplicate", res.Duplicate)
	return resp, nil
}

func (ws *webhookService) ProcessConversationEnd(ctx context.Context, payload *ConversationEndPayload) (*ConversationEndResponse, error) {
	if err := ws.validate.Struct(payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	userID, err := ws.resolveUser(ctx, payload.UserID)
	if err != nil {
		return nil, err
	}

	xp := progression.ConversationXP(payload.Analysis.OverallAccuracy, payload.Analysis.WordsSpoken, payload.Analysis.DurationMinutes)
	summary := conversationSummary(payload.Analysis, xp)

	res, err := ws.progress.ApplyEvent(ctx, &ProgressEvent{
		UserID:           userID,
		IdempotencyKey:   payload.SessionID,
		Source:           EventSourceConversation,
		ExperienceGained: xp,
		Duration:         time.Duration(math.Round(payload.Analysis.DurationMinutes * float64(time.Minute))),
		WordsSpoken:      payload.Analysis.WordsSpoken,
		OverallScore:     payload.Analysis.OverallAccuracy,
		Transcript:       payload.Transcript,
		Summary:          summary,
	})
	if err != nil {
		return nil, err
	}

	resp := &ConversationEndResponse{
		AwardXPResponse: *responseFromResult(res),
		Summary:         summary,
	}
	if res.Duplicate {
		resp.Message = "conversation already processed"
	}
	ws.log.Info("Processed conversation_end webhook",
		"user_id", userID,
		"session_id", payload.SessionID,
		"xp_earned", resp.XPEarned,
		"duplicate", res.Duplicate)
	return resp, nil
}

func (ws *webhookService) resolveUser(ctx context.Context, raw string) (uuid.UUID, error) {
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: malformed user id %q", ErrInvalidPayload, raw)
	}
	user, err := ws.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		return uuid.Nil, err
	}
	if user == nil {
		return uuid.Nil, fmt.Errorf("%w: %s", ErrUserNotFound, userID)
	}
	return userID, nil
}

// conversationSummary renders the child-facing recap the vendor reads back
// at the end of a conversation.
func conversationSummary(a ConversationAnalysis, xp int) string {
	return fmt.Sprintf(
		"Great conversation! You spoke %d words over %.0f minutes with %.0f%% accuracy and earned %d XP.",
		a.WordsSpoken, a.DurationMinutes, a.OverallAccuracy, xp)
}

func responseFromResult(res *ProgressResult) *AwardXPResponse {
	return &AwardXPResponse{
		Success:   true,
		UserXP:    res.TotalXP,
		UserLevel: res.NewLevel,
		XPEarned:  res.ExperienceGained,
		LevelUp:   res.LevelUp,
		OldLevel:  res.OldLevel,
		NewLevel:  res.NewLevel,
		Duplicate: res.Duplicate,
	}
}
