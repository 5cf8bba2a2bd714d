// Package progression converts accumulated experience into levels and quest
// categories into rewards.  Everything here is pure and deterministic.
package progression

import "github.com/iliyamo/questboard/internal/model"

// thresholds[i] is the experience required to reach level i+1.  The table is
// strictly ascending and starts at 0 so every user is at least level 1.
var thresholds = []int{
	0, 100, 250, 450, 700, 1000, 1350, 1750, 2200, 2700,
	3250, 3850, 4500, 5200, 6000,
}

// MaxLevel is the highest reachable level.
var MaxLevel = len(thresholds)

// Threshold returns the experience needed for level (1-based).  Levels outside
// [1, MaxLevel] are clamped.
func Threshold(level int) int {
	if level < 1 {
		level = 1
	}
	if level > MaxLevel {
		level = MaxLevel
	}
	return thresholds[level-1]
}

// LevelForExperience is the highest level whose threshold xp has reached,
// capped at MaxLevel.
func LevelForExperience(xp int) int {
	level := 1
	for i, t := range thresholds {
		if xp < t {
			break
		}
		level = i + 1
	}
	return level
}

// ProgressToNextLevel returns how far xp has moved from level's threshold
// towards the next one, as a floored percentage in [0, 100].  The max level
// always reports 100.
func ProgressToNextLevel(xp, level int) int {
	if level >= MaxLevel {
		return 100
	}
	if level < 1 {
		level = 1
	}
	lo, hi := thresholds[level-1], thresholds[level]
	pct := 100 * (xp - lo) / (hi - lo)
	if xp < lo {
		pct = 0
	}
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// Snapshot builds the presentation read model from a stats row.  The current
// streak is taken as-is; callers decide whether a lapsed streak reads as 0.
func Snapshot(s model.UserStats) model.StatsSnapshot {
	level := LevelForExperience(s.Experience)
	return model.StatsSnapshot{
		Experience:      s.Experience,
		Coins:           s.Coins,
		Level:           level,
		ProgressPercent: ProgressToNextLevel(s.Experience, level),
		CurrentStreak:   s.CurrentStreak,
		LongestStreak:   s.LongestStreak,
	}
}
