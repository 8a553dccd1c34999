// Package progression holds the pure rules of the gamification engine: the
// level curve, the cosmetic reward catalog and the webhook XP formulas. No
// I/O happens here; the ledger service applies these rules transactionally.
package progression

// ThresholdForLevel returns the total XP required to hold the given level.
// Levels 1-5 use a flat 100 XP step; above level 5 the step widens by 50 XP
// per level (150, 200, 250, ...).
func ThresholdForLevel(level int) int {
	if level <= 1 {
		return 0
	}
	if level <= 5 {
		return (level - 1) * 100
	}
	n := level - 5
	return 400 + n*150 + n*(n-1)*25
}

// LevelForXP returns the largest level whose threshold does not exceed xp.
// It iterates rather than incrementing once so a single large grant can cross
// several levels in one commit.
func LevelForXP(xp int) int {
	if xp < 0 {
		xp = 0
	}
	level := 1
	for ThresholdForLevel(level+1) <= xp {
		level++
	}
	return level
}

// XPToNextLevel returns how much XP is still missing for the next level.
func XPToNextLevel(xp int) int {
	return ThresholdForLevel(LevelForXP(xp)+1) - xp
}
