// Package badge decides which catalog badges a user has newly unlocked and
// records them.  Evaluation is safe to repeat: an earned badge is never
// offered again, and the store's uniqueness constraint absorbs races.
package badge

import (
	"github.com/iliyamo/questboard/internal/model"
	"github.com/iliyamo/questboard/internal/progression"
)

// Input is everything the rules look at.
type Input struct {
	Stats                model.UserStats
	CompletedQuestCount  int
	WeeklyCompletedCount int
	Earned               map[uint64]struct{}
}

// Satisfied reports whether b's threshold is met by in, ignoring whether it
// was already earned.  Unknown kinds never match.
func Satisfied(b model.Badge, in Input) bool {
	switch b.Kind {
	case model.BadgeKindQuestCount:
		return in.CompletedQuestCount >= b.Threshold
	case model.BadgeKindStreak:
		return in.Stats.CurrentStreak >= b.Threshold
	case model.BadgeKindLevel:
		return progression.LevelForExperience(in.Stats.Experience) >= b.Threshold
	case model.BadgeKindWeekly:
		return in.WeeklyCompletedCount >= b.Threshold
	}
	return false
}

// Evaluate returns the unearned catalog badges whose thresholds are now met,
// in catalog order.
func Evaluate(catalog []model.Badge, in Input) []model.Badge {
	var out []model.Badge
	for _, b := range catalog {
		if _, ok := in.Earned[b.ID]; ok {
			continue
		}
		if Satisfied(b, in) {
			out = append(out, b)
		}
	}
	return out
}
