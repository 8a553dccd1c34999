package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/yungbote/speechpal-backend/internal/logger"
	"github.com/yungbote/speechpal-backend/internal/services"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 64 * 1024
)

type inboundMessage struct {
	Type      string  `json:"type"`
	Text      string  `json:"text,omitempty"`
	Timestamp float64 `json:"timestamp,omitempty"`
	Duration  float64 `json:"duration,omitempty"`
	Word      string  `json:"word,omitempty"`
}

// SpeechSocket upgrades authenticated connections and scores each utterance
// as it arrives. One goroutine per connection; messages on a connection are
// handled in order.
type SpeechSocket struct {
	log      *logger.Logger
	analyzer services.SpeechAnalyzer
	progress services.ProgressService
	upgrader websocket.Upgrader
}

func NewSpeechSocket(log *logger.Logger, analyzer services.SpeechAnalyzer, progress services.ProgressService) *SpeechSocket {
	return &SpeechSocket{
		log:      log.With("component", "SpeechSocket"),
		analyzer: analyzer,
		progress: progress,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Serve runs the read loop for one authenticated user until the client goes
// away. The caller resolves the user before upgrading.
func (s *SpeechSocket) Serve(ctx context.Context, w http.ResponseWriter, r *http.Request, userID uuid.UUID) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("Websocket upgrade failed", "user_id", userID, "error", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxMessageSize)

	s.log.Info("Speech socket connected", "user_id", userID)
	defer s.log.Info("Speech socket disconnected", "user_id", userID)

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg inboundMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			s.writeJSON(conn, map[string]any{"type": "error", "message": "invalid json"})
			continue
		}
		switch msg.Type {
		case "ping":
			s.writeJSON(conn, map[string]any{"type": "pong"})
		case "analyze_speech":
			s.handleAnalyze(ctx, conn, userID, &msg)
		case "get_pronunciation_help":
			s.handlePronunciationHelp(conn, msg.Word)
		default:
			s.writeJSON(conn, map[string]any{"type": "error", "message": fmt.Sprintf("unknown message type %q", msg.Type)})
		}
	}
}

func (s *SpeechSocket) handleAnalyze(ctx context.Context, conn *websocket.Conn, userID uuid.UUID, msg *inboundMessage) {
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		s.writeJSON(conn, map[string]any{"type": "error", "message": "no speech text provided"})
		return
	}

	timestamp := msg.Timestamp
	if timestamp == 0 {
		// A missing client timestamp must not pin every repeat of the same
		// phrase to one derived key; stamp with server time instead.
		timestamp = services.NowMillis()
	}

	s.writeJSON(conn, map[string]any{"type": "analysis_started"})

	analysis, err := s.analyzer.Analyze(ctx, text)
	if err != nil {
		s.log.Error("Speech analysis failed", "user_id", userID, "error", err)
		s.writeJSON(conn, map[string]any{"type": "error", "message": "analysis failed, please try again"})
		return
	}
	res, err := s.progress.ApplyEvent(ctx, &services.ProgressEvent{
		UserID:           userID,
		IdempotencyKey:   services.DeriveUtteranceKey(userID, text, timestamp),
		Source:           services.EventSourceLive,
		ExperienceGained: analysis.ExperienceGained,
		Duration:         time.Duration(msg.Duration * float64(time.Second)),
		WordsSpoken:      analysis.WordCount,
		ClarityScore:     analysis.ClarityScore,
		FluencyScore:     analysis.FluencyScore,
		ConfidenceScore:  analysis.ConfidenceScore,
		OverallScore:     analysis.OverallScore,
	})
	if err != nil {
		s.log.Error("Failed to apply speech event", "user_id", userID, "error", err)
		s.writeJSON(conn, map[string]any{"type": "error", "message": "analysis failed, please try again"})
		return
	}

	s.writeJSON(conn, map[string]any{
		"type":                "analysis_complete",
		"analysis":            analysis,
		"duplicate":           res.Duplicate,
		"experience_gained":   res.ExperienceGained,
		"total_xp":            res.TotalXP,
		"level":               res.NewLevel,
		"level_up":            res.LevelUp,
		"improvement_score":   res.ImprovementScore,
		"unlocked_items":      res.UnlockedItems,
		"earned_achievements": res.EarnedAchievements,
	})
}

func (s *SpeechSocket) handlePronunciationHelp(conn *websocket.Conn, word string) {
	word = strings.TrimSpace(word)
	if word == "" {
		s.writeJSON(conn, map[string]any{"type": "error", "message": "no word provided"})
		return
	}
	s.writeJSON(conn, map[string]any{
		"type": "pronunciation_help",
		"word": word,
		"tips": []string{
			fmt.Sprintf("Say %q slowly, one sound at a time", word),
			"Watch your mouth in a mirror while you practice",
			"Clap once for each part of the word",
		},
	})
}

func (s *SpeechSocket) writeJSON(conn *websocket.Conn, v any) {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(v); err != nil {
		s.log.Debug("Websocket write failed", "error", err)
	}
}
