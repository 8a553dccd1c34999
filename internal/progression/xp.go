package progression

import "math"

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

func difficultyBase(difficulty string) int {
	switch difficulty {
	case DifficultyMedium:
		return 10
	case DifficultyHard:
		return 15
	default:
		return 5
	}
}

// PracticeXP computes the award for a single phoneme practice result:
// base scaled by the score, truncated, plus a flat accuracy bonus.
func PracticeXP(difficulty string, score float64) int {
	base := difficultyBase(difficulty)
	xp := int(float64(base) * score / 100.0)
	switch {
	case score >= 80:
		xp += 10
	case score >= 60:
		xp += 5
	}
	return xp
}

// ConversationXP computes the award for a completed conversation. Word and
// duration bonuses are capped so a marathon session cannot farm XP.
func ConversationXP(accuracy float64, wordsSpoken int, durationMinutes float64) int {
	xp := 20 + int(math.Round(accuracy*0.5))
	wordBonus := wordsSpoken * 2
	if wordBonus > 50 {
		wordBonus = 50
	}
	durationBonus := int(math.Round(durationMinutes * 5))
	if durationBonus > 30 {
		durationBonus = 30
	}
	return xp + wordBonus + durationBonus
}
