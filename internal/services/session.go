package services

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/speechpal-backend/internal/logger"
	"github.com/yungbote/speechpal-backend/internal/repos"
	"github.com/yungbote/speechpal-backend/internal/types"
)

// AnalyzeInput is one utterance submitted over REST rather than the socket.
type AnalyzeInput struct {
	Text      string  `json:"text"`
	Timestamp float64 `json:"timestamp"`
	Duration  float64 `json:"duration"`
}

// AnalyzeResult pairs the scoring detail with the ledger consequences.
type AnalyzeResult struct {
	Analysis *SpeechAnalysis `json:"analysis"`
	Progress *ProgressResult `json:"progress"`
}

type SessionService interface {
	Analyze(ctx context.Context, userID uuid.UUID, input *AnalyzeInput) (*AnalyzeResult, error)
	ListRecentSessions(ctx context.Context, userID uuid.UUID, limit int) ([]*types.SpeechSession, error)
	ListRecentConversations(ctx context.Context, userID uuid.UUID, limit int) ([]*types.ConversationSession, error)
}

type sessionService struct {
	db                *gorm.DB
	log               *logger.Logger
	analyzer          SpeechAnalyzer
	progress          ProgressService
	speechSessionRepo repos.SpeechSessionRepo
	conversationRepo  repos.ConversationSessionRepo
}

func NewSessionService(
	db *gorm.DB,
	log *logger.Logger,
	analyzer SpeechAnalyzer,
	progress ProgressService,
	speechSessionRepo repos.SpeechSessionRepo,
	conversationRepo repos.ConversationSessionRepo,
) SessionService {
	return &sessionService{
		db:                db,
		log:               log.With("service", "SessionService"),
		analyzer:          analyzer,
		progress:          progress,
		speechSessionRepo: speechSessionRepo,
		conversationRepo:  conversationRepo,
	}
}

func (ss *sessionService) Analyze(ctx context.Context, userID uuid.UUID, input *AnalyzeInput) (*AnalyzeResult, error) {
	if input == nil || strings.TrimSpace(input.Text) == "" {
		return nil, fmt.Errorf("%w: no speech text provided", ErrInvalidPayload)
	}
	text := strings.TrimSpace(input.Text)
	timestamp := input.Timestamp
	if timestamp == 0 {
		// Clients that omit the timestamp must not all collapse onto one
		// derived key; stamp with server time in milliseconds.
		timestamp = NowMillis()
	}

	analysis, err := ss.analyzer.Analyze(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("Speech analysis failed: %w", err)
	}
	res, err := ss.progress.ApplyEvent(ctx, &ProgressEvent{
		UserID:           userID,
		IdempotencyKey:   DeriveUtteranceKey(userID, text, timestamp),
		Source:           EventSourceLive,
		ExperienceGained: analysis.ExperienceGained,
		Duration:         time.Duration(input.Duration * float64(time.Second)),
		WordsSpoken:      analysis.WordCount,
		ClarityScore:     analysis.ClarityScore,
		FluencyScore:     analysis.FluencyScore,
		ConfidenceScore:  analysis.ConfidenceScore,
		OverallScore:     analysis.OverallScore,
	})
	if err != nil {
		return nil, err
	}
	return &AnalyzeResult{Analysis: analysis, Progress: res}, nil
}

func (ss *sessionService) ListRecentSessions(ctx context.Context, userID uuid.UUID, limit int) ([]*types.SpeechSession, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return ss.speechSessionRepo.GetRecentByUserID(ctx, nil, userID, limit)
}

func (ss *sessionService) ListRecentConversations(ctx context.Context, userID uuid.UUID, limit int) ([]*types.ConversationSession, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return ss.conversationRepo.GetRecentByUserID(ctx, nil, userID, limit)
}

// DeriveUtteranceKey builds the deterministic idempotency key for utterances
// that arrive without a vendor session id. Retrying the same text with the
// same client timestamp maps to the same key.
func DeriveUtteranceKey(userID uuid.UUID, text string, timestamp float64) string {
	sum := sha256.Sum256(fmt.Appendf(nil, "%s|%s|%.3f", userID, text, timestamp))
	return fmt.Sprintf("ws-%x", sum[:16])
}

// NowMillis returns server time as fractional milliseconds, the same unit
// clients send, with enough resolution that back-to-back stamps differ.
func NowMillis() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Millisecond)
}
