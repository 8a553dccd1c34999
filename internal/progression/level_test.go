package progression

import "testing"

func TestThresholdForLevel(t *testing.T) {
	cases := []struct {
		level int
		want  int
	}{
		{1, 0},
		{2, 100},
		{3, 200},
		{4, 300},
		{5, 400},
		{6, 550},
		{7, 750},
		{8, 1000},
		{9, 1300},
		{10, 1650},
	}
	for _, tc := range cases {
		if got := ThresholdForLevel(tc.level); got != tc.want {
			t.Fatalf("ThresholdForLevel(%d)=%d, want %d", tc.level, got, tc.want)
		}
	}
}

func TestLevelForXP(t *testing.T) {
	cases := []struct {
		name string
		xp   int
		want int
	}{
		{"zero", 0, 1},
		{"just_below_level_2", 99, 1},
		{"exact_level_2", 100, 2},
		{"mid_level_2", 150, 2},
		{"exact_level_5", 400, 5},
		{"just_below_level_6", 549, 5},
		{"exact_level_6", 550, 6},
		{"multi_level_jump_total", 800, 7},
		{"deep_curve", 1650, 10},
		{"negative_clamped", -5, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := LevelForXP(tc.xp); got != tc.want {
				t.Fatalf("LevelForXP(%d)=%d, want %d", tc.xp, got, tc.want)
			}
		})
	}
}

func TestLevelForXPMatchesThresholds(t *testing.T) {
	// Round-tripping the curve: at every threshold the level ticks over, one
	// XP short of it the level is one lower.
	for level := 2; level <= 40; level++ {
		threshold := ThresholdForLevel(level)
		if got := LevelForXP(threshold); got != level {
			t.Fatalf("LevelForXP(threshold(%d)=%d)=%d, want %d", level, threshold, got, level)
		}
		if got := LevelForXP(threshold - 1); got != level-1 {
			t.Fatalf("LevelForXP(threshold(%d)-1)=%d, want %d", level, got, level-1)
		}
	}
}

func TestXPToNextLevel(t *testing.T) {
	if got := XPToNextLevel(0); got != 100 {
		t.Fatalf("XPToNextLevel(0)=%d, want 100", got)
	}
	if got := XPToNextLevel(150); got != 50 {
		t.Fatalf("XPToNextLevel(150)=%d, want 50", got)
	}
	if got := XPToNextLevel(400); got != 150 {
		t.Fatalf("XPToNextLevel(400)=%d, want 150", got)
	}
}
