package services

import (
	"context"
	"strings"

	"github.com/yungbote/speechpal-backend/internal/logger"
)

// SpeechAnalysis is the scoring oracle's verdict on one utterance.
type SpeechAnalysis struct {
	ClarityScore        float64  `json:"clarity_score"`
	FluencyScore        float64  `json:"fluency_score"`
	ConfidenceScore     float64  `json:"confidence_score"`
	OverallScore        float64  `json:"overall_score"`
	ExperienceGained    int      `json:"experience_gained"`
	WordCount           int      `json:"word_count"`
	FeedbackText        string   `json:"feedback_text"`
	Strengths           []string `json:"strengths"`
	AreasForImprovement []string `json:"areas_for_improvement"`
}

// SpeechAnalyzer scores spoken text. The real model lives behind this
// interface; the heuristic implementation below mirrors the fallback scorer
// and keeps the progress pipeline fully exercisable without it.
type SpeechAnalyzer interface {
	Analyze(ctx context.Context, text string) (*SpeechAnalysis, error)
}

type heuristicAnalyzer struct {
	log *logger.Logger
}

func NewHeuristicAnalyzer(log *logger.Logger) SpeechAnalyzer {
	return &heuristicAnalyzer{log: log.With("service", "HeuristicAnalyzer")}
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func (a *heuristicAnalyzer) Analyze(ctx context.Context, text string) (*SpeechAnalysis, error) {
	wordCount := len(strings.Fields(text))

	clarity := clampScore(70 + float64(wordCount)*2)
	fluency := clampScore(60 + float64(wordCount)*3)
	confidence := clampScore(65 + float64(wordCount)*2.5)
	overall := (clarity + fluency + confidence) / 3

	baseXP := 10
	bonusXP := int((clarity + fluency + confidence) / 30)

	var feedback, strengths, improvements []string
	if clarity < 70 {
		improvements = append(improvements, "Try to speak more clearly")
		feedback = append(feedback, "Focus on pronouncing each word clearly. Take your time!")
	} else {
		strengths = append(strengths, "Great clarity in your speech!")
	}
	if fluency < 70 {
		improvements = append(improvements, "Work on speaking more smoothly")
		feedback = append(feedback, "Try to speak without too many pauses. Keep practicing!")
	} else {
		strengths = append(strengths, "Excellent fluency!")
	}
	if confidence < 70 {
		improvements = append(improvements, "Build confidence by practicing more")
		feedback = append(feedback, "You're doing great! Keep practicing to build confidence.")
	} else {
		strengths = append(strengths, "Very confident delivery!")
	}
	if len(strengths) == 0 {
		strengths = append(strengths, "Keep practicing - you're improving!")
	}

	return &SpeechAnalysis{
		ClarityScore:        clarity,
		FluencyScore:        fluency,
		ConfidenceScore:     confidence,
		OverallScore:        overall,
		ExperienceGained:    baseXP + bonusXP,
		WordCount:           wordCount,
		FeedbackText:        strings.Join(feedback, " "),
		Strengths:           strengths,
		AreasForImprovement: improvements,
	}, nil
}
