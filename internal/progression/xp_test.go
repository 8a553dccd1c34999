package progression

import "testing"

func TestPracticeXP(t *testing.T) {
	cases := []struct {
		name       string
		difficulty string
		score      float64
		want       int
	}{
		{"hard_high_score", DifficultyHard, 90, 23}, // 15*0.9 truncated to 13, +10 bonus
		{"easy_perfect", DifficultyEasy, 100, 15},
		{"medium_mid", DifficultyMedium, 70, 12}, // 7 + 5 bonus
		{"medium_low", DifficultyMedium, 50, 5},
		{"hard_zero", DifficultyHard, 0, 0},
		{"bonus_boundary_80", DifficultyEasy, 80, 14},
		{"bonus_boundary_60", DifficultyEasy, 60, 8},
		{"unknown_difficulty_falls_back_to_easy", "extreme", 100, 15},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := PracticeXP(tc.difficulty, tc.score); got != tc.want {
				t.Fatalf("PracticeXP(%q, %v)=%d, want %d", tc.difficulty, tc.score, got, tc.want)
			}
		})
	}
}

func TestConversationXP(t *testing.T) {
	cases := []struct {
		name            string
		accuracy        float64
		words           int
		durationMinutes float64
		want            int
	}{
		{"typical", 80, 10, 2, 90},       // 20 + 40 + 20 + 10
		{"word_bonus_capped", 100, 100, 1, 125}, // 20 + 50 + 50 + 5
		{"duration_bonus_capped", 0, 0, 20, 50}, // 20 + 0 + 0 + 30
		{"empty_conversation", 0, 0, 0, 20},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ConversationXP(tc.accuracy, tc.words, tc.durationMinutes); got != tc.want {
				t.Fatalf("ConversationXP(%v, %d, %v)=%d, want %d", tc.accuracy, tc.words, tc.durationMinutes, got, tc.want)
			}
		})
	}
}
