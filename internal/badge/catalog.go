package badge

import "github.com/iliyamo/questboard/internal/model"

// DefaultCatalog is seeded into an empty `badges` table.  Names are unique
// and act as the natural key during seeding.
var DefaultCatalog = []model.Badge{
	{Name: "First Steps", Description: "Complete your first quest.", Icon: "👣", Kind: model.BadgeKindQuestCount, Threshold: 1},
	{Name: "Getting Things Done", Description: "Complete 10 quests.", Icon: "✅", Kind: model.BadgeKindQuestCount, Threshold: 10},
	{Name: "Quest Master", Description: "Complete 50 quests.", Icon: "🗡️", Kind: model.BadgeKindQuestCount, Threshold: 50},
	{Name: "Centurion", Description: "Complete 100 quests.", Icon: "💯", Kind: model.BadgeKindQuestCount, Threshold: 100},
	{Name: "Warming Up", Description: "Keep a 3 day streak.", Icon: "🌤️", Kind: model.BadgeKindStreak, Threshold: 3},
	{Name: "On Fire", Description: "Keep a 7 day streak.", Icon: "🔥", Kind: model.BadgeKindStreak, Threshold: 7},
	{Name: "Unstoppable", Description: "Keep a 30 day streak.", Icon: "⚡", Kind: model.BadgeKindStreak, Threshold: 30},
	{Name: "Busy Week", Description: "Complete 10 quests within 7 days.", Icon: "📅", Kind: model.BadgeKindWeekly, Threshold: 10},
	{Name: "Rising Star", Description: "Reach level 5.", Icon: "⭐", Kind: model.BadgeKindLevel, Threshold: 5},
	{Name: "Veteran", Description: "Reach level 10.", Icon: "🏅", Kind: model.BadgeKindLevel, Threshold: 10},
}
